package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/auth"
)

// Client talks to the wallet host bridge (the World App mini-app runtime)
// that exposes install detection and wallet sign-in over HTTP.
type Client struct {
	baseURL string
	appID   string
	http    *http.Client
}

// NewClient returns a bridge client. An empty baseURL yields a client that
// always reports the host as unavailable.
func NewClient(baseURL, appID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL: baseURL,
		appID:   appID,
		http:    httpClient,
	}
}

var _ auth.Wallet = (*Client)(nil)

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.appID != "" {
		req.Header.Set("X-App-Id", c.appID)
	}
	return req, nil
}

// IsAvailable asks the bridge whether the wallet host is installed.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := c.newRequest(ctx, http.MethodGet, "/api/minikit/installed", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var data struct {
		Installed bool `json:"installed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false
	}
	return data.Installed
}

// WalletAuth forwards a sign-in request and returns the host's final payload.
// A response without a finalPayload yields (nil, nil).
func (c *Client) WalletAuth(ctx context.Context, in auth.WalletAuthRequest) (*auth.WalletAuthPayload, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/minikit/wallet-auth", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	var data struct {
		FinalPayload *auth.WalletAuthPayload `json:"finalPayload"`
		Error        string                  `json:"error"`
	}
	if err := json.Unmarshal(respBody, &data); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("bridge: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge: %d %s", resp.StatusCode, data.Error)
	}
	return data.FinalPayload, nil
}
