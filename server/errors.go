package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIError is the error body of every non-2xx JSON response.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	codeAuthRequired      = "AUTH_REQUIRED"
	codeAuthFailed        = "AUTH_FAILED"
	codeWalletUnavailable = "WALLET_UNAVAILABLE"
	codeNoResponse        = "NO_RESPONSE"
	codeBadRequest        = "BAD_REQUEST"
	codeInvalidItems      = "INVALID_ITEMS"
	codeIndexOutOfRange   = "INDEX_OUT_OF_RANGE"
	codeTooFewItems       = "TOO_FEW_ITEMS"
	codeSpinInProgress    = "SPIN_IN_PROGRESS"
	codePresetNotFound    = "PRESET_NOT_FOUND"
	codeInvalidPreset     = "INVALID_PRESET"
	codeInternal          = "INTERNAL"
)

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, APIError{
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
