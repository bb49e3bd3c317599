package wheel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinWeight = 1
	MaxWeight = 50

	// MinItems is the smallest wheel that can be spun.
	MinItems = 2

	// maxLabelRunes is how many characters of a name fit on a segment.
	maxLabelRunes = 10
)

// Color is a fixed RGB value. Serialized as "#RRGGBB".
type Color struct {
	R, G, B uint8
}

// ParseColor parses "#RRGGBB" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func mustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) IsZero() bool { return c == Color{} }

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

func (c *Color) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Palette is cycled through when items are added.
var Palette = []Color{
	mustColor("#FF6B6B"),
	mustColor("#FFD93D"),
	mustColor("#6BCB77"),
	mustColor("#FFB84D"),
	mustColor("#FF69B4"),
	mustColor("#A78BFA"),
	mustColor("#4ECDC4"),
	mustColor("#60A5FA"),
	mustColor("#F97316"),
	mustColor("#10B981"),
}

// Item is one entry on the wheel.
type Item struct {
	Name   string `json:"name"`
	Color  Color  `json:"color"`
	Weight int    `json:"weight"`
}

// Label is the name as drawn on the wheel.
func (it Item) Label() string { return DisplayName(it.Name) }

// DisplayName truncates names longer than 10 characters and appends "...".
func DisplayName(name string) string {
	r := []rune(name)
	if len(r) > maxLabelRunes {
		return string(r[:maxLabelRunes]) + "..."
	}
	return name
}

// ClampWeight forces w into [MinWeight, MaxWeight].
func ClampWeight(w int) int {
	return max(MinWeight, min(MaxWeight, w))
}

// DefaultItems returns the eight-option wheel shown on first load.
func DefaultItems() []Item {
	items := make([]Item, 8)
	for i := range items {
		items[i] = Item{
			Name:   "Option " + strconv.Itoa(i+1),
			Color:  Palette[i],
			Weight: 1,
		}
	}
	return items
}
