package wheel

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSavedItems is returned by Load when nothing has been saved yet.
var ErrNoSavedItems = errors.New("no saved wheel items")

// Store persists the wheel's item list.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// FileStore keeps the item list in <dataDir>/wheel_items.json.
type FileStore struct {
	mu      sync.RWMutex
	dataDir string
}

func NewFileStore(dataDir string) *FileStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &FileStore{dataDir: dataDir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dataDir, "wheel_items.json")
}

func (s *FileStore) Load(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSavedItems
	}
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *FileStore) Save(_ context.Context, items []Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}
