package auth

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionKey is the fixed storage key of the saved session.
const SessionKey = "wallet_auth"

// Session is the locally saved proof of a completed wallet sign-in.
type Session struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
	// Timestamp is milliseconds since the epoch at sign-in.
	Timestamp int64 `json:"timestamp"`
}

func (s Session) IssuedAt() time.Time { return time.UnixMilli(s.Timestamp) }

// SessionStore reads and writes the session record in a KV.
type SessionStore struct {
	kv *KV
}

func NewSessionStore(kv *KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Load returns the saved session. A record that does not parse is deleted and
// reported as ErrNoSession wrapped with the parse error.
func (s *SessionStore) Load() (Session, error) {
	raw, ok, err := s.kv.Get(SessionKey)
	if err != nil {
		// an unreadable store counts as no session; clear it so the next save works
		_ = s.kv.Remove(SessionKey)
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	if !json.Valid([]byte(raw)) {
		_ = s.kv.Remove(SessionKey)
		return Session{}, fmt.Errorf("%w: malformed record", ErrNoSession)
	}
	// any parseable JSON counts; fields that do not fit the shape stay empty
	var sess Session
	_ = json.Unmarshal([]byte(raw), &sess)
	return sess, nil
}

func (s *SessionStore) Save(sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(SessionKey, string(raw))
}

func (s *SessionStore) Clear() error {
	return s.kv.Remove(SessionKey)
}
