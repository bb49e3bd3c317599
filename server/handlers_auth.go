package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/auth"
)

const walletUnavailableMessage = "Please open this page inside World App to sign in."

type sessionKey struct{}

type authStatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	Available     bool       `json:"available"`
	Address       string     `json:"address,omitempty"`
	SignedInAt    *time.Time `json:"signedInAt,omitempty"`
	AppID         string     `json:"appId,omitempty"`
}

// requireSession rejects requests with 401 until a wallet session is saved.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.gate.Session()
		if !ok {
			writeError(w, http.StatusUnauthorized, "sign in with your wallet to continue", codeAuthRequired)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	}
}

func sessionFrom(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(auth.Session)
	return sess, ok
}

func (s *Server) statusFor(ctx context.Context) authStatusResponse {
	resp := authStatusResponse{
		Available: s.gate.IsAvailable(ctx),
		AppID:     s.cfg.AppID,
	}
	if sess, ok := s.gate.Session(); ok {
		resp.Authenticated = true
		resp.Address = sess.Address
		if sess.Timestamp > 0 {
			t := sess.IssuedAt().UTC()
			resp.SignedInAt = &t
		}
	}
	return resp
}

func (s *Server) authStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statusFor(r.Context()))
}

// signIn runs one wallet sign-in. Failures other than a missing wallet host
// leave the caller free to retry.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	_, err := s.gate.Authenticate(r.Context())
	if err != nil {
		var authErr *auth.AuthError
		switch {
		case errors.Is(err, auth.ErrWalletUnavailable):
			writeError(w, http.StatusServiceUnavailable, walletUnavailableMessage, codeWalletUnavailable)
		case errors.Is(err, auth.ErrNoResponse):
			writeError(w, http.StatusBadGateway, err.Error(), codeNoResponse)
		case errors.As(err, &authErr):
			writeError(w, http.StatusUnauthorized, authErr.Error(), codeAuthFailed)
		default:
			s.logger.Error("sign-in failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not save session", codeInternal)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.statusFor(r.Context()))
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.SignOut(); err != nil {
		s.logger.Error("sign-out failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear session", codeInternal)
		return
	}
	writeJSON(w, http.StatusOK, s.statusFor(r.Context()))
}
