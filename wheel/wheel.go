package wheel

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

var (
	ErrTooFewItems     = errors.New("wheel needs at least 2 items")
	ErrIndexOutOfRange = errors.New("item index out of range")
)

// Wheel is the ordered, editable item list. Items are addressed by position;
// removing an item shifts the ones after it.
type Wheel struct {
	mu    sync.RWMutex
	items []Item
}

// New builds a wheel from items, falling back to DefaultItems when fewer
// than MinItems are given.
func New(items []Item) *Wheel {
	w := &Wheel{}
	if err := w.Replace(items); err != nil {
		w.items = DefaultItems()
	}
	return w
}

// Snapshot returns a copy of the current items.
func (w *Wheel) Snapshot() []Item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Item, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Wheel) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.items)
}

// Add appends "Option N" with the next palette color and weight 1.
func (w *Wheel) Add() Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.items)
	it := Item{
		Name:   "Option " + strconv.Itoa(n+1),
		Color:  Palette[n%len(Palette)],
		Weight: 1,
	}
	w.items = append(w.items, it)
	return it
}

// Remove deletes the item at index. With MinItems left the wheel is
// unchanged and ErrTooFewItems is returned.
func (w *Wheel) Remove(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIndex(index); err != nil {
		return err
	}
	if len(w.items) <= MinItems {
		return ErrTooFewItems
	}
	w.items = append(w.items[:index:index], w.items[index+1:]...)
	return nil
}

func (w *Wheel) UpdateName(index int, name string) (Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIndex(index); err != nil {
		return Item{}, err
	}
	w.items[index].Name = name
	return w.items[index], nil
}

// UpdateWeight adds delta to the item's weight and clamps to [MinWeight, MaxWeight].
func (w *Wheel) UpdateWeight(index, delta int) (Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIndex(index); err != nil {
		return Item{}, err
	}
	cur := w.items[index].Weight
	// saturate before adding so huge deltas cannot overflow
	switch {
	case delta >= MaxWeight:
		w.items[index].Weight = MaxWeight
	case delta <= -MaxWeight:
		w.items[index].Weight = MinWeight
	default:
		w.items[index].Weight = ClampWeight(cur + delta)
	}
	return w.items[index], nil
}

// SetWeight sets the weight directly (slider), clamped.
func (w *Wheel) SetWeight(index, weight int) (Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkIndex(index); err != nil {
		return Item{}, err
	}
	w.items[index].Weight = ClampWeight(weight)
	return w.items[index], nil
}

// Replace swaps in a whole new item list. Weights are clamped and missing
// colors are filled from the palette.
func (w *Wheel) Replace(items []Item) error {
	if len(items) < MinItems {
		return ErrTooFewItems
	}
	next := make([]Item, len(items))
	for i, it := range items {
		it.Weight = ClampWeight(it.Weight)
		if it.Color.IsZero() {
			it.Color = Palette[i%len(Palette)]
		}
		next[i] = it
	}
	w.mu.Lock()
	w.items = next
	w.mu.Unlock()
	return nil
}

func (w *Wheel) checkIndex(index int) error {
	if index < 0 || index >= len(w.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(w.items))
	}
	return nil
}
