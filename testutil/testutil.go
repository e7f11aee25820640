// Package testutil provides shared helpers for tests: a seeded random
// number generator and synthetic raster builders.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/robertogiachetta/aegis-origin/raster"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// RandomRaster builds an in-memory raster with samples drawn uniformly from
// [0, scale).
func RandomRaster(rng *RNG, rows, cols, bands int, scale float64) *raster.Memory {
	m, err := raster.NewMemory(rows, cols, bands, raster.FormatFloat)
	if err != nil {
		panic(err)
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			for b := 0; b < bands; b++ {
				m.SetValue(row, col, b, rng.Float64()*scale)
			}
		}
	}
	return m
}

// TwoLevelRaster builds a single-band raster whose top half holds low and
// bottom half holds high. Handy for clustering tests with a known split.
func TwoLevelRaster(rows, cols int, low, high float64) *raster.Memory {
	m, err := raster.NewMemory(rows, cols, 1, raster.FormatFloat)
	if err != nil {
		panic(err)
	}
	for row := 0; row < rows; row++ {
		v := low
		if row >= rows/2 {
			v = high
		}
		for col := 0; col < cols; col++ {
			m.SetValue(row, col, 0, v)
		}
	}
	return m
}
