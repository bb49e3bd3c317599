package spin

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

var (
	ErrSpinInProgress = errors.New("spin already in progress")
	ErrClosed         = errors.New("spinner closed")
)

// State is the presentation state of the wheel.
type State string

const (
	StateIdle     State = "idle"
	StateSpinning State = "spinning"
	StateRevealed State = "revealed"
)

// Outcome is everything decided at spin start. Items is the snapshot the
// selection was made from, so later edits do not change what was won.
type Outcome struct {
	SpinID        string       `json:"spinId"`
	Items         []wheel.Item `json:"items"`
	SelectedIndex int          `json:"selectedIndex"`
	Selected      wheel.Item   `json:"selected"`
	TargetAngle   float64      `json:"targetAngle"`
	Turns         int          `json:"turns"`
	Rotation      float64      `json:"rotation"`
	Address       string       `json:"address,omitempty"`
	StartedAt     time.Time    `json:"startedAt"`
	RevealAt      time.Time    `json:"revealAt"`
	RevealedAt    time.Time    `json:"revealedAt,omitempty"`
}

// Result is the revealed part of an outcome.
type Result struct {
	SpinID        string     `json:"spinId"`
	SelectedIndex int        `json:"selectedIndex"`
	Item          wheel.Item `json:"item"`
}

// Snapshot is what a client needs to draw the wheel right now.
type Snapshot struct {
	State        State   `json:"state"`
	Rotation     float64 `json:"rotation"`
	TransitionMS int64   `json:"transitionMs"`
	Result       *Result `json:"result,omitempty"`
	Confetti     bool    `json:"confetti"`
	Sound        bool    `json:"sound"`
}

// EventType names a state transition.
type EventType string

const (
	EventSpinStarted     EventType = "spin_started"
	EventSpinRevealed    EventType = "spin_revealed"
	EventConfettiCleared EventType = "confetti_cleared"
	EventSoundToggled    EventType = "sound_toggled"
)

type Event struct {
	Type    EventType `json:"type"`
	Outcome *Outcome  `json:"outcome,omitempty"`
	State   Snapshot  `json:"state"`
}

// Listener is called after each transition, outside the spinner's lock.
type Listener func(Event)

// Spinner owns the Idle -> Spinning -> Revealed -> Idle cycle. Spin requests
// while Spinning are rejected; reveal and confetti-clear run on timers that
// Close cancels.
type Spinner struct {
	wheel  *wheel.Wheel
	src    wheel.Source
	clock  Clock
	policy Policy
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	rotation  float64
	current   *Outcome
	result    *Result
	confetti  bool
	sound     bool
	gen       uint64
	reveal    Timer
	clear     Timer
	closed    bool
	listeners []Listener
}

// NewSpinner wires a spinner to w. Nil src, clock or logger get defaults
// (crypto source, real clock, slog.Default).
func NewSpinner(w *wheel.Wheel, src wheel.Source, clock Clock, policy Policy, logger *slog.Logger) *Spinner {
	if src == nil {
		src = wheel.CryptoSource{}
	}
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Spinner{
		wheel:  w,
		src:    src,
		clock:  clock,
		policy: policy,
		logger: logger,
		state:  StateIdle,
		sound:  true,
	}
}

// OnEvent registers a listener.
func (s *Spinner) OnEvent(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Spin draws an outcome from a snapshot of the wheel and starts the reveal timer.
func (s *Spinner) Spin(address string) (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if s.state == StateSpinning {
		s.mu.Unlock()
		return Outcome{}, ErrSpinInProgress
	}
	if s.clear != nil {
		s.clear.Stop()
		s.clear = nil
	}

	items := s.wheel.Snapshot()
	idx := wheel.Select(items, s.src)
	target := wheel.TargetAngle(items, idx)
	turns := s.policy.Turns(s.src)
	now := s.clock.Now()

	out := &Outcome{
		SpinID:        uuid.New().String(),
		Items:         items,
		SelectedIndex: idx,
		Selected:      items[idx],
		TargetAngle:   target,
		Turns:         turns,
		Rotation:      NextRotation(s.rotation, turns, target),
		Address:       address,
		StartedAt:     now,
		RevealAt:      now.Add(s.policy.RevealDelay),
	}

	s.gen++
	gen := s.gen
	s.state = StateSpinning
	s.rotation = out.Rotation
	s.current = out
	s.result = nil
	s.confetti = false
	s.reveal = s.clock.AfterFunc(s.policy.RevealDelay, func() { s.onReveal(gen) })

	ev := Event{Type: EventSpinStarted, Outcome: copyOutcome(out), State: s.snapshotLocked()}
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Debug("spin started", "spin_id", out.SpinID, "index", idx, "turns", turns, "rotation", out.Rotation)
	emit(listeners, ev)
	return *copyOutcome(out), nil
}

func (s *Spinner) onReveal(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != StateSpinning {
		s.mu.Unlock()
		return
	}
	out := s.current
	out.RevealedAt = s.clock.Now()
	s.state = StateRevealed
	s.reveal = nil
	s.result = &Result{SpinID: out.SpinID, SelectedIndex: out.SelectedIndex, Item: out.Selected}
	s.confetti = true
	s.clear = s.clock.AfterFunc(s.policy.ConfettiDuration, func() { s.onConfettiDone(gen) })

	ev := Event{Type: EventSpinRevealed, Outcome: copyOutcome(out), State: s.snapshotLocked()}
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info("spin revealed", "spin_id", out.SpinID, "index", out.SelectedIndex, "item", out.Selected.Name)
	emit(listeners, ev)
}

func (s *Spinner) onConfettiDone(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != StateRevealed {
		s.mu.Unlock()
		return
	}
	s.confetti = false
	s.state = StateIdle
	s.clear = nil
	ev := Event{Type: EventConfettiCleared, State: s.snapshotLocked()}
	listeners := s.listeners
	s.mu.Unlock()

	emit(listeners, ev)
}

// SetSound turns the sound flag on or off and reports the new state.
func (s *Spinner) SetSound(enabled bool) Snapshot {
	s.mu.Lock()
	s.sound = enabled
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()

	emit(listeners, Event{Type: EventSoundToggled, State: snap})
	return snap
}

func (s *Spinner) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Current returns the in-flight or most recent outcome.
func (s *Spinner) Current() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Outcome{}, false
	}
	return *copyOutcome(s.current), true
}

// Close stops pending timers. Callbacks that already fired become no-ops.
func (s *Spinner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.reveal != nil {
		s.reveal.Stop()
		s.reveal = nil
	}
	if s.clear != nil {
		s.clear.Stop()
		s.clear = nil
	}
}

func (s *Spinner) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        s.state,
		Rotation:     s.rotation,
		TransitionMS: s.policy.TransitionDuration.Milliseconds(),
		Confetti:     s.confetti,
		Sound:        s.sound,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func copyOutcome(o *Outcome) *Outcome {
	c := *o
	c.Items = append([]wheel.Item(nil), o.Items...)
	return &c
}

func emit(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}
