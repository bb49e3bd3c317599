package spin_test

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/spin"
	"github.com/Ashenafi-pixel/simple-roulette/spin/spintest"
	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

// sequence replays the given draws, then repeats the last one.
func sequence(draws ...float64) wheel.Source {
	var mu sync.Mutex
	i := 0
	return wheel.SourceFunc(func() float64 {
		mu.Lock()
		defer mu.Unlock()
		u := draws[min(i, len(draws)-1)]
		i++
		return u
	})
}

func fourEqual() *wheel.Wheel {
	return wheel.New([]wheel.Item{
		{Name: "A", Weight: 1}, {Name: "B", Weight: 1}, {Name: "C", Weight: 1}, {Name: "D", Weight: 1},
	})
}

type recorder struct {
	mu     sync.Mutex
	events []spin.Event
}

func (r *recorder) listen(ev spin.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []spin.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]spin.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newSpinner(w *wheel.Wheel, src wheel.Source) (*spin.Spinner, *spintest.Clock) {
	clock := spintest.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	return spin.NewSpinner(w, src, clock, spin.DefaultPolicy(), nil), clock
}

func TestSpin_Lifecycle(t *testing.T) {
	// 0.6 * 4 = 2.4 selects index 2; 0.0 draws 5 turns
	s, clock := newSpinner(fourEqual(), sequence(0.6, 0.0))
	var rec recorder
	s.OnEvent(rec.listen)

	if got := s.Snapshot(); got.State != spin.StateIdle || got.Rotation != 0 || !got.Sound {
		t.Fatalf("initial snapshot %+v", got)
	}

	out, err := s.Spin("0xabc")
	if err != nil {
		t.Fatal(err)
	}
	if out.SelectedIndex != 2 || out.Selected.Name != "C" {
		t.Errorf("selected %d %q, want 2 C", out.SelectedIndex, out.Selected.Name)
	}
	if out.TargetAngle != 225 || out.Turns != 5 {
		t.Errorf("target %v turns %d", out.TargetAngle, out.Turns)
	}
	if out.Rotation != 1935 {
		t.Errorf("rotation = %v, want 1935", out.Rotation)
	}
	if out.Address != "0xabc" || out.SpinID == "" {
		t.Errorf("outcome %+v", out)
	}
	if want := out.StartedAt.Add(5500 * time.Millisecond); !out.RevealAt.Equal(want) {
		t.Errorf("reveal at %v, want %v", out.RevealAt, want)
	}

	snap := s.Snapshot()
	if snap.State != spin.StateSpinning || snap.Result != nil || snap.Confetti {
		t.Errorf("spinning snapshot %+v", snap)
	}
	if snap.TransitionMS != 6000 {
		t.Errorf("transition = %d ms", snap.TransitionMS)
	}

	clock.Advance(5499 * time.Millisecond)
	if s.Snapshot().State != spin.StateSpinning {
		t.Fatal("revealed before the delay elapsed")
	}
	clock.Advance(time.Millisecond)
	snap = s.Snapshot()
	if snap.State != spin.StateRevealed || !snap.Confetti {
		t.Fatalf("after delay: %+v", snap)
	}
	if snap.Result == nil || snap.Result.SelectedIndex != 2 || snap.Result.Item.Name != "C" || snap.Result.SpinID != out.SpinID {
		t.Errorf("result %+v", snap.Result)
	}

	clock.Advance(2 * time.Second)
	snap = s.Snapshot()
	if snap.State != spin.StateIdle || snap.Confetti {
		t.Errorf("after confetti: %+v", snap)
	}
	if snap.Result == nil {
		t.Error("result should stay visible after the confetti clears")
	}

	want := []spin.EventType{spin.EventSpinStarted, spin.EventSpinRevealed, spin.EventConfettiCleared}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if rec.events[1].Outcome == nil || rec.events[1].Outcome.RevealedAt.IsZero() {
		t.Error("reveal event should carry the revealed outcome")
	}
}

func TestSpin_RejectedWhileSpinning(t *testing.T) {
	s, clock := newSpinner(fourEqual(), sequence(0.1, 0.5))
	first, err := s.Spin("")
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	if _, err := s.Spin(""); !errors.Is(err, spin.ErrSpinInProgress) {
		t.Fatalf("second spin err = %v, want ErrSpinInProgress", err)
	}
	cur, ok := s.Current()
	if !ok || cur.SpinID != first.SpinID || s.Snapshot().Rotation != first.Rotation {
		t.Error("rejected spin changed the in-flight outcome")
	}
}

func TestSpin_AgainFromRevealedClearsResult(t *testing.T) {
	s, clock := newSpinner(fourEqual(), sequence(0.1, 0.5))
	if _, err := s.Spin(""); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5500 * time.Millisecond)
	if s.Snapshot().State != spin.StateRevealed {
		t.Fatal("not revealed")
	}
	if _, err := s.Spin(""); err != nil {
		t.Fatalf("spin from revealed: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != spin.StateSpinning || snap.Result != nil || snap.Confetti {
		t.Errorf("snapshot %+v", snap)
	}
	// only the new reveal timer is left; the confetti timer was stopped
	if n := clock.Pending(); n != 1 {
		t.Errorf("pending timers = %d, want 1", n)
	}
	clock.Advance(2 * time.Second)
	if s.Snapshot().State != spin.StateSpinning {
		t.Error("stale confetti timer ended the new spin")
	}
}

func TestSpin_UsesSnapshotOfItems(t *testing.T) {
	w := fourEqual()
	s, clock := newSpinner(w, sequence(0.9, 0.0))
	out, err := s.Spin("")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Replace([]wheel.Item{{Name: "X", Weight: 1}, {Name: "Y", Weight: 1}}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5500 * time.Millisecond)
	res := s.Snapshot().Result
	if res == nil || res.SelectedIndex != 3 || res.Item.Name != "D" {
		t.Errorf("result %+v, want index 3 D from the spin-time items", res)
	}
	if len(out.Items) != 4 {
		t.Errorf("outcome items %d, want 4", len(out.Items))
	}
}

func TestSpin_RotationLandsOnTarget(t *testing.T) {
	w := wheel.New([]wheel.Item{{Name: "A", Weight: 7}, {Name: "B", Weight: 1}, {Name: "C", Weight: 30}, {Name: "D", Weight: 2}})
	s, clock := newSpinner(w, wheel.NewSeededSource(99))
	prev := 0.0
	for i := 0; i < 50; i++ {
		out, err := s.Spin("")
		if err != nil {
			t.Fatal(err)
		}
		if out.Turns < 5 || out.Turns > 7 {
			t.Errorf("turns = %d", out.Turns)
		}
		if out.Rotation-prev < float64(360*out.Turns) {
			t.Errorf("spin %d moved %v, less than %d turns", i, out.Rotation-prev, out.Turns)
		}
		// the target midpoint ends up under the pointer
		if m := math.Mod(out.Rotation+out.TargetAngle, 360); m > 1e-6 && 360-m > 1e-6 {
			t.Errorf("spin %d: rotation %v target %v leaves offset %v", i, out.Rotation, out.TargetAngle, m)
		}
		prev = out.Rotation
		clock.Advance(8 * time.Second)
	}
}

func TestSpin_ReplayWithSameSeed(t *testing.T) {
	a, ca := newSpinner(fourEqual(), wheel.NewSeededSource(5))
	b, cb := newSpinner(fourEqual(), wheel.NewSeededSource(5))
	for i := 0; i < 20; i++ {
		x, err := a.Spin("")
		if err != nil {
			t.Fatal(err)
		}
		y, err := b.Spin("")
		if err != nil {
			t.Fatal(err)
		}
		if x.SelectedIndex != y.SelectedIndex || x.Rotation != y.Rotation {
			t.Fatalf("spin %d diverged: %d/%v vs %d/%v", i, x.SelectedIndex, x.Rotation, y.SelectedIndex, y.Rotation)
		}
		ca.Advance(10 * time.Second)
		cb.Advance(10 * time.Second)
	}
}

func TestClose_CancelsPendingTimers(t *testing.T) {
	s, clock := newSpinner(fourEqual(), sequence(0.3, 0.3))
	var rec recorder
	s.OnEvent(rec.listen)
	if _, err := s.Spin(""); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if n := clock.Pending(); n != 0 {
		t.Errorf("pending timers after Close = %d", n)
	}
	clock.Advance(time.Minute)
	if got := rec.types(); len(got) != 1 {
		t.Errorf("events after Close: %v", got)
	}
	if _, err := s.Spin(""); !errors.Is(err, spin.ErrClosed) {
		t.Errorf("Spin after Close err = %v", err)
	}
}

func TestSetSound(t *testing.T) {
	s, _ := newSpinner(fourEqual(), nil)
	var rec recorder
	s.OnEvent(rec.listen)
	if snap := s.SetSound(false); snap.Sound {
		t.Error("sound still on")
	}
	if s.Snapshot().Sound {
		t.Error("snapshot disagrees")
	}
	if got := rec.types(); len(got) != 1 || got[0] != spin.EventSoundToggled {
		t.Errorf("events %v", got)
	}
}

func TestPolicy_Turns(t *testing.T) {
	p := spin.DefaultPolicy()
	cases := map[float64]int{0: 5, 0.3: 5, 0.34: 6, 0.67: 7, 0.9999: 7, 1: 7}
	for u, want := range cases {
		if got := p.Turns(sequence(u)); got != want {
			t.Errorf("Turns(%v) = %d, want %d", u, got, want)
		}
	}
	fixedTurns := spin.Policy{MinTurns: 3, MaxTurns: 3}
	if got := fixedTurns.Turns(sequence(0.8)); got != 3 {
		t.Errorf("empty range Turns = %d, want 3", got)
	}
}

func TestNextRotation(t *testing.T) {
	if got := spin.NextRotation(0, 5, 225); got != 1935 {
		t.Errorf("NextRotation(0, 5, 225) = %v", got)
	}
	// 1935 rounds up to 2160 before adding turns
	if got := spin.NextRotation(1935, 6, 45); got != 2160+2160+315 {
		t.Errorf("NextRotation(1935, 6, 45) = %v", got)
	}
	// an exact multiple of 360 is kept as the base
	if got := spin.NextRotation(720, 5, 180); got != 720+1800+180 {
		t.Errorf("NextRotation(720, 5, 180) = %v", got)
	}
}
