package preset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	roulette "github.com/Ashenafi-pixel/simple-roulette"
	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestParse(t *testing.T) {
	p, err := Parse(readTestdata(t, "lunch.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "lunch" || p.Title != "What's for lunch?" || len(p.Items) != 3 {
		t.Fatalf("preset %+v", p)
	}
	if p.Items[0].Name != "Pizza" || p.Items[0].Weight != 3 || p.Items[0].Color.Hex() != "#FF6B6B" {
		t.Errorf("first item %+v", p.Items[0])
	}
	// no color given: palette by position
	if p.Items[2].Color != wheel.Palette[2] {
		t.Errorf("Salad color %s, want %s", p.Items[2].Color.Hex(), wheel.Palette[2].Hex())
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"weights out of range": string(readTestdata(t, "bad_weight.yaml")),
		"one item":             "name: one\nitems:\n  - name: A\n    weight: 1\n",
		"missing name":         "items:\n  - {name: A, weight: 1}\n  - {name: B, weight: 1}\n",
		"bad preset name":      "name: Has Spaces\nitems:\n  - {name: A, weight: 1}\n  - {name: B, weight: 1}\n",
		"bad color":            "name: c\nitems:\n  - {name: A, weight: 1, color: red}\n  - {name: B, weight: 1}\n",
		"fractional weight":    "name: f\nitems:\n  - {name: A, weight: 1.5}\n  - {name: B, weight: 1}\n",
		"unknown field":        "name: u\nitems:\n  - {name: A, weight: 1, icon: x}\n  - {name: B, weight: 1}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
	if _, err := Parse([]byte("name: [unterminated")); err == nil {
		t.Error("broken YAML should fail")
	}
}

func TestParseItems(t *testing.T) {
	items, err := ParseItems([]byte(`[{"name":"Yes","color":"#6BCB77","weight":2},{"name":"No","weight":1}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Weight != 2 || items[1].Color != wheel.Palette[1] {
		t.Errorf("items %+v", items)
	}
	for _, bad := range []string{
		`[]`,
		`[{"name":"A","weight":1}]`,
		`[{"name":"A","weight":0},{"name":"B","weight":1}]`,
		`{"name":"A"}`,
	} {
		if _, err := ParseItems([]byte(bad)); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseItems(%s) err = %v", bad, err)
		}
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	p, err := Parse(readTestdata(t, "lunch.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(b)
	if err != nil {
		t.Fatalf("re-parse %s: %v", b, err)
	}
	if back.Name != p.Name || back.Title != p.Title || len(back.Items) != len(p.Items) {
		t.Fatalf("round trip %+v", back)
	}
	for i := range p.Items {
		if back.Items[i] != p.Items[i] {
			t.Errorf("item %d: %+v != %+v", i, back.Items[i], p.Items[i])
		}
	}
}

func TestRegistry_DefaultAndLoadDir(t *testing.T) {
	r := NewRegistry()
	def, err := r.Get(DefaultName)
	if err != nil {
		t.Fatal(err)
	}
	if len(def.Items) != 8 {
		t.Errorf("default preset has %d items", len(def.Items))
	}

	n, err := r.LoadDir("testdata")
	if n != 1 {
		t.Errorf("loaded %d presets, want 1", n)
	}
	if err == nil {
		t.Error("the invalid testdata file should be reported")
	}
	if _, err := r.Get("lunch"); err != nil {
		t.Error(err)
	}
	if _, err := r.Get("bad"); !errors.Is(err, ErrNotFound) {
		t.Errorf("invalid preset registered: %v", err)
	}

	list := r.List()
	if len(list) != 2 || list[0].Name != "default" || list[1].Name != "lunch" {
		t.Errorf("List = %+v", list)
	}

	if n, err := r.LoadDir(filepath.Join(t.TempDir(), "missing")); n != 0 || err != nil {
		t.Errorf("missing dir: %d %v", n, err)
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	p, _ := r.Get(DefaultName)
	p.Items[0].Name = "mutated"
	again, _ := r.Get(DefaultName)
	if again.Items[0].Name != "Option 1" {
		t.Error("caller mutated the registry")
	}
}

func TestUpsertAndLoadDB(t *testing.T) {
	db, err := roulette.OpenDB("sqlite:" + filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := roulette.Migrate(db); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	p, err := Parse(readTestdata(t, "lunch.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := Upsert(ctx, db, p); err != nil {
		t.Fatal(err)
	}
	p.Title = "Lunch, again"
	if err := Upsert(ctx, db, p); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO wheel_presets (name, document, enabled, updated_at) VALUES ('off', 'name: off', FALSE, 0)`); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	n, err := r.LoadDB(ctx, db)
	if err != nil || n != 1 {
		t.Fatalf("LoadDB = %d, %v", n, err)
	}
	got, err := r.Get("lunch")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Lunch, again" || len(got.Items) != 3 {
		t.Errorf("stored preset %+v", got)
	}
}
