package spin

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks. Tests swap in a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is backed by the time package.
func RealClock() Clock { return realClock{} }
