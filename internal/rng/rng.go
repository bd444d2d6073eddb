// Package rng provides explicit, reproducible random sources. Nothing in the
// engine draws from an ambient generator.
package rng

import (
	"hash/fnv"
	"math/rand/v2"
)

// #region source

// Source is a seeded PCG stream. A Source is not safe for concurrent use;
// derive one per goroutine with Derive.
type Source struct {
	seed   uint64
	stream uint64
	r      *rand.Rand
}

// New creates a source for (seed, stream).
func New(seed, stream uint64) *Source {
	return &Source{seed: seed, stream: stream, r: rand.New(rand.NewPCG(seed, stream))}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 { return s.seed }

// Stream returns the stream the source was created with.
func (s *Source) Stream() uint64 { return s.stream }

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 { return s.r.Float64() }

// NormFloat64 returns a standard normal value (mean 0, variance 1).
func (s *Source) NormFloat64() float64 { return s.r.NormFloat64() }

// Derive returns an independent source with the same seed and a stream keyed
// by label. The receiver's position is not consumed, so derivation order does
// not affect the derived streams.
func (s *Source) Derive(label string) *Source {
	return New(s.seed, StreamFor(s.stream, label))
}

// #endregion source

// #region helpers

// StreamFor mixes a base stream with a label into a new stream id.
func StreamFor(base uint64, label string) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(base >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(label))
	return h.Sum64()
}

// #endregion helpers
