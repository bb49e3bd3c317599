package auth

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// KV is a string key-value store persisted as one JSON object on disk,
// playing the role of browser local storage for the service.
type KV struct {
	mu   sync.Mutex
	path string
}

func NewKV(dataDir string) *KV {
	if dataDir == "" {
		dataDir = "data"
	}
	return &KV{path: filepath.Join(dataDir, "local_storage.json")}
}

// Get returns the raw value for key and whether it exists.
func (kv *KV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m, err := kv.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (kv *KV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m, err := kv.readLocked()
	if err != nil {
		m = map[string]string{}
	}
	m[key] = value
	return kv.writeLocked(m)
}

func (kv *KV) Remove(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m, err := kv.readLocked()
	if err != nil {
		return kv.writeLocked(map[string]string{})
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return kv.writeLocked(m)
}

func (kv *KV) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(kv.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (kv *KV) writeLocked(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(kv.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(kv.path, data, 0600)
}
