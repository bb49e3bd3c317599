package wheel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps the item list as one JSON row in wheel_items. Works on both
// Postgres and SQLite.
type SQLStore struct {
	db *sql.DB
	id string
}

// NewSQLStore stores the list under row id; an empty id means "default".
func NewSQLStore(db *sql.DB, id string) *SQLStore {
	if id == "" {
		id = "default"
	}
	return &SQLStore{db: db, id: id}
}

func (s *SQLStore) Load(ctx context.Context) ([]Item, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT items FROM wheel_items WHERE id = $1`, s.id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSavedItems
	}
	if err != nil {
		return nil, fmt.Errorf("load wheel items: %w", err)
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode wheel items: %w", err)
	}
	return items, nil
}

func (s *SQLStore) Save(ctx context.Context, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wheel_items (id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET items = EXCLUDED.items,
		    updated_at = EXCLUDED.updated_at
	`, s.id, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save wheel items: %w", err)
	}
	return nil
}
