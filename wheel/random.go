package wheel

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 { return f() }

// CryptoSource draws from crypto/rand so outcomes cannot be predicted.
type CryptoSource struct{}

func (CryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return mrand.Float64()
	}
	// 53 random bits scaled into [0, 1)
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// SeededSource is a replayable source; the same seed gives the same draws.
type SeededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{r: mrand.New(mrand.NewPCG(seed, 0))}
}

func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
