package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultStatement = "Sign in to Simple Roulette"
	// DefaultExpiry is the expiration claimed in the signed message.
	DefaultExpiry = 7 * 24 * time.Hour
)

// GateConfig tunes a Gate. Zero values fall back to the defaults above.
type GateConfig struct {
	Statement string
	Expiry    time.Duration
	// MaxAge, when positive, rejects saved sessions older than this.
	// Zero keeps sessions until they are cleared.
	MaxAge time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

// Gate decides whether the wheel is reachable: a saved session is required,
// and signing in requires the wallet host.
type Gate struct {
	authMu    sync.Mutex
	wallet    Wallet
	sessions  *SessionStore
	statement string
	expiry    time.Duration
	maxAge    time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewGate(wallet Wallet, sessions *SessionStore, cfg GateConfig) *Gate {
	g := &Gate{
		wallet:    wallet,
		sessions:  sessions,
		statement: cfg.Statement,
		expiry:    cfg.Expiry,
		maxAge:    cfg.MaxAge,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
	if g.statement == "" {
		g.statement = DefaultStatement
	}
	if g.expiry <= 0 {
		g.expiry = DefaultExpiry
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Session returns the saved session, if any.
func (g *Gate) Session() (Session, bool) {
	sess, err := g.sessions.Load()
	if err != nil {
		// a wrapped ErrNoSession means a bad record was found and removed
		if err != ErrNoSession {
			g.logger.Warn("discarded saved session", "error", err)
		}
		return Session{}, false
	}
	if g.maxAge > 0 && g.now().Sub(sess.IssuedAt()) > g.maxAge {
		g.logger.Info("saved session older than max age", "address", sess.Address)
		_ = g.sessions.Clear()
		return Session{}, false
	}
	return sess, true
}

func (g *Gate) IsAuthenticated() bool {
	_, ok := g.Session()
	return ok
}

// IsAvailable reports whether the wallet host is present.
func (g *Gate) IsAvailable(ctx context.Context) bool {
	if g.wallet == nil {
		return false
	}
	return g.wallet.IsAvailable(ctx)
}

// Authenticate runs one wallet sign-in and saves the session on success.
// ErrWalletUnavailable is terminal; every other failure may be retried.
// Concurrent calls run one at a time.
func (g *Gate) Authenticate(ctx context.Context) (Session, error) {
	g.authMu.Lock()
	defer g.authMu.Unlock()

	if !g.IsAvailable(ctx) {
		return Session{}, ErrWalletUnavailable
	}
	req := WalletAuthRequest{
		Nonce:          NewNonce(),
		Statement:      g.statement,
		ExpirationTime: g.now().Add(g.expiry),
	}
	g.logger.Debug("starting wallet auth", "nonce", req.Nonce)

	payload, err := g.wallet.WalletAuth(ctx, req)
	if err != nil {
		g.logger.Error("wallet auth failed", "error", err)
		return Session{}, &AuthError{Err: err}
	}
	if payload == nil {
		g.logger.Error("wallet auth returned no payload")
		return Session{}, ErrNoResponse
	}

	switch payload.Status {
	case StatusSuccess:
		sess := Session{
			Address:   payload.Address,
			Message:   payload.Message,
			Signature: payload.Signature,
			Timestamp: g.now().UnixMilli(),
		}
		if err := g.sessions.Save(sess); err != nil {
			return Session{}, err
		}
		g.logger.Info("wallet auth succeeded", "address", sess.Address)
		return sess, nil
	case StatusError:
		code := payload.ErrorCode
		if code == "" {
			code = "unknown_error"
		}
		g.logger.Warn("wallet auth rejected", "error_code", code, "details", payload.Details)
		return Session{}, &AuthError{Code: code, Details: payload.Details}
	default:
		raw, _ := json.Marshal(payload)
		g.logger.Error("unexpected wallet auth payload", "payload", string(raw))
		return Session{}, &AuthError{Unexpected: true, Raw: string(raw)}
	}
}

// SignOut forgets the saved session.
func (g *Gate) SignOut() error {
	return g.sessions.Clear()
}

// NewNonce returns a random alphanumeric nonce.
func NewNonce() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
