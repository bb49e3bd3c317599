package spin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

// Record is one revealed spin, kept for audit and replay.
type Record struct {
	SpinID        string    `json:"spinId"`
	SelectedIndex int       `json:"selectedIndex"`
	ItemName      string    `json:"itemName"`
	ItemWeight    int       `json:"itemWeight"`
	TotalWeight   int       `json:"totalWeight"`
	TargetAngle   float64   `json:"targetAngle"`
	Rotation      float64   `json:"rotation"`
	Address       string    `json:"address,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	RevealedAt    time.Time `json:"revealedAt"`
}

func RecordFromOutcome(o Outcome) Record {
	return Record{
		SpinID:        o.SpinID,
		SelectedIndex: o.SelectedIndex,
		ItemName:      o.Selected.Name,
		ItemWeight:    o.Selected.Weight,
		TotalWeight:   wheel.TotalWeight(o.Items),
		TargetAngle:   o.TargetAngle,
		Rotation:      o.Rotation,
		Address:       o.Address,
		StartedAt:     o.StartedAt,
		RevealedAt:    o.RevealedAt,
	}
}

// History stores revealed spins. List returns the newest first.
type History interface {
	Append(ctx context.Context, r Record) error
	List(ctx context.Context, limit int) ([]Record, error)
}

// ResultsStore appends revealed spins to <dataDir>/spin_results.json.
type ResultsStore struct {
	mu      sync.Mutex
	dataDir string
}

func NewResultsStore(dataDir string) *ResultsStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &ResultsStore{dataDir: dataDir}
}

func (rs *ResultsStore) path() string {
	return filepath.Join(rs.dataDir, "spin_results.json")
}

func (rs *ResultsStore) readLocked() ([]Record, error) {
	data, err := os.ReadFile(rs.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []Record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (rs *ResultsStore) Append(_ context.Context, r Record) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err := os.MkdirAll(rs.dataDir, 0755); err != nil {
		return err
	}
	list, err := rs.readLocked()
	if err != nil {
		// a corrupt log is started over rather than blocking new results
		list = nil
	}
	list = append(list, r)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rs.path(), data, 0644)
}

func (rs *ResultsStore) List(_ context.Context, limit int) ([]Record, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.readLocked()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}

// SQLHistory stores revealed spins in the spin_results table.
type SQLHistory struct {
	db *sql.DB
}

func NewSQLHistory(db *sql.DB) *SQLHistory {
	return &SQLHistory{db: db}
}

func (h *SQLHistory) Append(ctx context.Context, r Record) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO spin_results (
			spin_id, selected_index, item_name, item_weight, total_weight,
			target_angle, rotation, address, started_at, revealed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (spin_id) DO NOTHING
	`,
		r.SpinID, r.SelectedIndex, r.ItemName, r.ItemWeight, r.TotalWeight,
		r.TargetAngle, r.Rotation, r.Address, r.StartedAt.UnixMilli(), r.RevealedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append spin result: %w", err)
	}
	return nil
}

func (h *SQLHistory) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT spin_id, selected_index, item_name, item_weight, total_weight,
		       target_angle, rotation, address, started_at, revealed_at
		FROM spin_results
		ORDER BY revealed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list spin results: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		var started, revealed int64
		if err := rows.Scan(&r.SpinID, &r.SelectedIndex, &r.ItemName, &r.ItemWeight, &r.TotalWeight,
			&r.TargetAngle, &r.Rotation, &r.Address, &started, &revealed); err != nil {
			return nil, fmt.Errorf("scan spin result: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.RevealedAt = time.UnixMilli(revealed).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
