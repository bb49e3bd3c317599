package auth

import (
	"context"
	"time"
)

// WalletAuthRequest is sent to the wallet host to ask for a signed sign-in message.
type WalletAuthRequest struct {
	Nonce          string    `json:"nonce"`
	Statement      string    `json:"statement"`
	ExpirationTime time.Time `json:"expirationTime"`
}

// WalletAuthPayload is the host's final answer.
type WalletAuthPayload struct {
	Status    string `json:"status"`
	Address   string `json:"address,omitempty"`
	Message   string `json:"message,omitempty"`
	Signature string `json:"signature,omitempty"`
	Version   int    `json:"version,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Wallet is the host capability that can sign a user in.
// IsAvailable must be checked before WalletAuth.
type Wallet interface {
	IsAvailable(ctx context.Context) bool
	// WalletAuth returns a nil payload when the host gave no answer.
	WalletAuth(ctx context.Context, req WalletAuthRequest) (*WalletAuthPayload, error)
}
