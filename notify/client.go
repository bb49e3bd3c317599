package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/spin"
)

// Client reports revealed spins to an external endpoint. Parameters go in the
// query string and are signed with HMAC-SHA256 over the sorted values.
type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

func NewClient(endpoint, secret string) *Client {
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) call(ctx context.Context, params map[string]string) error {
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	if c.secret != "" {
		values.Set("signature", Sign(c.secret, values))
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return err
	}
	u.RawQuery = values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: %s", resp.Status)
	}
	return nil
}

// Sign concatenates the values of all keys except "action" and "signature",
// in key order, and returns the hex HMAC-SHA256 under secret.
func Sign(secret string, v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		if k == "action" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf := make([]byte, 0, 256)
	for _, k := range keys {
		buf = append(buf, v.Get(k)...)
	}
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(buf)
	return hex.EncodeToString(m.Sum(nil))
}

// SpinResult reports one revealed spin.
func (c *Client) SpinResult(ctx context.Context, r spin.Record) error {
	return c.call(ctx, map[string]string{
		"action":         "spin_result",
		"spin_id":        r.SpinID,
		"selected_index": strconv.Itoa(r.SelectedIndex),
		"item_name":      r.ItemName,
		"item_weight":    strconv.Itoa(r.ItemWeight),
		"total_weight":   strconv.Itoa(r.TotalWeight),
		"address":        r.Address,
		"revealed_at":    strconv.FormatInt(r.RevealedAt.UnixMilli(), 10),
	})
}
