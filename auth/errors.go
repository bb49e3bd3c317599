package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrWalletUnavailable means the service is not running inside the wallet
	// host. Retrying does not help.
	ErrWalletUnavailable = errors.New("wallet host not available")
	ErrNoResponse        = errors.New("no response from World App. Please try again")
	ErrNoSession         = errors.New("no saved session")
)

// AuthError is a recoverable sign-in failure reported by the wallet.
type AuthError struct {
	Code    string
	Details string
	// Unexpected is set when the payload had neither success nor error status.
	Unexpected bool
	Raw        string
	Err        error
}

func (e *AuthError) Error() string {
	switch {
	case e.Err != nil:
		return "Authentication failed: " + e.Err.Error()
	case e.Unexpected:
		return "Unexpected response format: " + e.Raw
	case e.Details != "":
		return fmt.Sprintf("Authentication error: %s - %s", e.Code, e.Details)
	default:
		return "Authentication error: " + e.Code
	}
}

func (e *AuthError) Unwrap() error { return e.Err }
