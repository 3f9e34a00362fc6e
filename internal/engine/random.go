package engine

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource yields uniformly distributed integers in [0, n). The resolver
// consumes an injected source instead of ambient randomness so battles are
// deterministic under a fixed seed.
type RandomSource interface {
	IntN(n int) int
}

// mathSource is safe for concurrent use: the character client shares one
// source across in-flight requests, and *rand.Rand is not synchronized.
type mathSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *mathSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// NewSeededSource returns a RandomSource backed by math/rand with the given
// seed. The same seed replays the same battle.
func NewSeededSource(seed int64) RandomSource {
	return &mathSource{rng: rand.New(rand.NewSource(seed))}
}

// NewSource returns a time-seeded RandomSource for ordinary battles.
func NewSource() RandomSource {
	return NewSeededSource(time.Now().UnixNano())
}
