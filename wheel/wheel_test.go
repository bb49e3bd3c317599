package wheel

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNew_DefaultsWhenEmpty(t *testing.T) {
	w := New(nil)
	items := w.Snapshot()
	if len(items) != 8 {
		t.Fatalf("len = %d, want 8", len(items))
	}
	for i, it := range items {
		if it.Weight != 1 || it.Color != Palette[i] {
			t.Errorf("item %d = %+v", i, it)
		}
	}
	if items[0].Name != "Option 1" || items[7].Name != "Option 8" {
		t.Errorf("names %q .. %q", items[0].Name, items[7].Name)
	}
}

func TestAdd_CyclesPalette(t *testing.T) {
	w := New(nil)
	it := w.Add()
	if it.Name != "Option 9" || it.Color != Palette[8] || it.Weight != 1 {
		t.Errorf("Add = %+v", it)
	}
	w.Add()
	it = w.Add()
	if it.Name != "Option 11" || it.Color != Palette[0] {
		t.Errorf("third Add = %+v, want palette wrap", it)
	}
	if w.Len() != 11 {
		t.Errorf("Len = %d, want 11", w.Len())
	}
}

func TestRemove_KeepsAtLeastTwo(t *testing.T) {
	w := New(weighted(1, 2, 3))
	if err := w.Remove(0); err != nil {
		t.Fatal(err)
	}
	if got := w.Snapshot(); len(got) != 2 || got[0].Weight != 2 || got[1].Weight != 3 {
		t.Fatalf("after remove: %+v", got)
	}
	if err := w.Remove(1); !errors.Is(err, ErrTooFewItems) {
		t.Errorf("Remove at 2 items: err = %v, want ErrTooFewItems", err)
	}
	if w.Len() != 2 {
		t.Errorf("Len = %d, want 2", w.Len())
	}
}

func TestRemove_IndexOutOfRange(t *testing.T) {
	w := New(nil)
	for _, idx := range []int{-1, 8, 100} {
		if err := w.Remove(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d) err = %v", idx, err)
		}
	}
	if w.Len() != 8 {
		t.Errorf("Len = %d, want 8", w.Len())
	}
}

func TestUpdateWeight_Clamps(t *testing.T) {
	w := New(weighted(1, 50, 10))
	if it, _ := w.UpdateWeight(0, -1); it.Weight != 1 {
		t.Errorf("1 - 1 = %d, want 1", it.Weight)
	}
	if it, _ := w.UpdateWeight(1, 1); it.Weight != 50 {
		t.Errorf("50 + 1 = %d, want 50", it.Weight)
	}
	if it, _ := w.UpdateWeight(2, 5); it.Weight != 15 {
		t.Errorf("10 + 5 = %d, want 15", it.Weight)
	}
	if it, _ := w.UpdateWeight(2, math.MaxInt); it.Weight != 50 {
		t.Errorf("huge delta = %d, want 50", it.Weight)
	}
	if it, _ := w.UpdateWeight(2, math.MinInt); it.Weight != 1 {
		t.Errorf("huge negative delta = %d, want 1", it.Weight)
	}
	if _, err := w.UpdateWeight(3, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v", err)
	}
}

func TestSetWeight_Clamps(t *testing.T) {
	w := New(nil)
	cases := map[int]int{0: 1, -4: 1, 1: 1, 25: 25, 50: 50, 51: 50, 999: 50}
	for in, want := range cases {
		it, err := w.SetWeight(3, in)
		if err != nil {
			t.Fatal(err)
		}
		if it.Weight != want {
			t.Errorf("SetWeight(%d) = %d, want %d", in, it.Weight, want)
		}
	}
}

func TestUpdateName(t *testing.T) {
	w := New(nil)
	it, err := w.UpdateName(2, "Pizza night with friends")
	if err != nil {
		t.Fatal(err)
	}
	if it.Name != "Pizza night with friends" {
		t.Errorf("name = %q", it.Name)
	}
	if it.Label() != "Pizza nigh..." {
		t.Errorf("label = %q", it.Label())
	}
	if got := w.Snapshot()[2].Name; got != it.Name {
		t.Errorf("stored name = %q", got)
	}
}

func TestReplace(t *testing.T) {
	w := New(nil)
	if err := w.Replace(weighted(5)); !errors.Is(err, ErrTooFewItems) {
		t.Errorf("Replace 1 item: err = %v", err)
	}
	if w.Len() != 8 {
		t.Errorf("failed Replace changed the wheel")
	}
	err := w.Replace([]Item{{Name: "A", Weight: 0}, {Name: "B", Weight: 80, Color: Palette[5]}})
	if err != nil {
		t.Fatal(err)
	}
	got := w.Snapshot()
	if got[0].Weight != 1 || got[1].Weight != 50 {
		t.Errorf("weights not clamped: %+v", got)
	}
	if got[0].Color != Palette[0] || got[1].Color != Palette[5] {
		t.Errorf("colors = %v %v", got[0].Color, got[1].Color)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	w := New(nil)
	snap := w.Snapshot()
	snap[0].Name = "changed"
	if w.Snapshot()[0].Name != "Option 1" {
		t.Error("mutating a snapshot changed the wheel")
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"Short":       "Short",
		"Exactly10!":  "Exactly10!",
		"Eleven char": "Eleven cha...",
		"ÉÉÉÉÉÉÉÉÉÉÉ": "ÉÉÉÉÉÉÉÉÉÉ...",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#ff6b6b")
	if err != nil {
		t.Fatal(err)
	}
	if c != (Color{R: 0xFF, G: 0x6B, B: 0x6B}) || c.Hex() != "#FF6B6B" {
		t.Errorf("ParseColor = %+v (%s)", c, c.Hex())
	}
	if _, err := ParseColor("4ECDC4"); err != nil {
		t.Errorf("without '#': %v", err)
	}
	for _, bad := range []string{"", "#12345", "#GGGGGG", "#1234567"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}

	b, err := json.Marshal(Item{Name: "A", Color: c, Weight: 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"name":"A","color":"#FF6B6B","weight":3}` {
		t.Errorf("json = %s", b)
	}
	var back Item
	if err := json.Unmarshal(b, &back); err != nil || back.Color != c {
		t.Errorf("unmarshal = %+v, %v", back, err)
	}
}
