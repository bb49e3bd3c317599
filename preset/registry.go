package preset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

// DefaultName is the built-in preset holding the eight default options.
const DefaultName = "default"

var (
	ErrInvalid  = errors.New("invalid preset")
	ErrNotFound = errors.New("preset not found")
)

type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewRegistry returns a registry holding only the built-in default preset.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Preset)}
	r.Register(Preset{Name: DefaultName, Title: "Default", Items: wheel.DefaultItems()})
	return r
}

func (r *Registry) Register(p Preset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]wheel.Item, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	r.presets[p.Name] = p
}

func (r *Registry) Get(name string) (Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	items := make([]wheel.Item, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p, nil
}

// List returns all presets ordered by name.
func (r *Registry) List() []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadDir registers every *.yaml and *.yml file in dir. A missing dir is not
// an error. Files that fail validation are skipped and reported together.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	var errs []error
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p, err := Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		r.Register(p)
		n++
	}
	return n, errors.Join(errs...)
}

// LoadDB registers every enabled preset stored in the wheel_presets table.
func (r *Registry) LoadDB(ctx context.Context, db *sql.DB) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, document FROM wheel_presets WHERE enabled = TRUE ORDER BY name`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var errs []error
	n := 0
	for rows.Next() {
		var name, doc string
		if err := rows.Scan(&name, &doc); err != nil {
			return n, err
		}
		p, err := Parse([]byte(doc))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		r.Register(p)
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	return n, errors.Join(errs...)
}

// Upsert stores p in the wheel_presets table, enabling it.
func Upsert(ctx context.Context, db *sql.DB, p Preset) error {
	doc, err := Marshal(p)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO wheel_presets (name, document, enabled, updated_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (name) DO UPDATE SET document = excluded.document, enabled = TRUE, updated_at = excluded.updated_at`,
		p.Name, string(doc), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert preset %s: %w", p.Name, err)
	}
	return nil
}
