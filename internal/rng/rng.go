// Package rng provides seeded random sources for reproducible simulation runs.
// Every stochastic decision in the subsystem draws from an injected *Source so
// a run can be replayed from its seed.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source wraps a seeded math/rand generator.
// Not safe for concurrent use; the simulation is single-threaded per tick.
type Source struct {
	seed int64
	r    *rand.Rand
}

// New creates a Source from an explicit seed.
func New(seed int64) *Source {
	return &Source{seed: seed, r: rand.New(rand.NewSource(seed))}
}

// NewSeed generates a random seed using crypto/rand, for runs that do not
// need to be replayed.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() int64 { return s.seed }

// Float64 returns a uniform float64 in [0, 1).
func (s *Source) Float64() float64 { return s.r.Float64() }

// Intn returns a uniform int in [0, n).
func (s *Source) Intn(n int) int { return s.r.Intn(n) }

// Range returns a uniform float64 in [min, max).
func (s *Source) Range(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.r.Float64()*(max-min)
}

// Jitter returns v scaled by a uniform factor in [1-spread, 1+spread].
func (s *Source) Jitter(v, spread float64) float64 {
	return v * (1 + (s.r.Float64()*2-1)*spread)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.r.Float64() < p
}

// Fork derives a child source whose stream is independent of the parent's
// future draws. Used to give each fleet its own deterministic stream.
func (s *Source) Fork() *Source {
	return New(s.r.Int63())
}
