package rng

import "math/rand"

// SeedSource picks fresh seeds for new generations.
type SeedSource interface {
	Seed() uint32
}

// SeedFunc adapts a function to SeedSource.
type SeedFunc func() uint32

// Seed calls f.
func (f SeedFunc) Seed() uint32 {
	return f()
}

// RandomSeeds draws seeds over the full uint32 range from the runtime's
// randomly seeded generator.
var RandomSeeds SeedSource = SeedFunc(rand.Uint32)

// Sequence returns a SeedSource yielding seeds in order, then repeating the
// last one. It is meant for tests and scripted replays.
func Sequence(seeds ...uint32) SeedSource {
	i := 0
	return SeedFunc(func() uint32 {
		if len(seeds) == 0 {
			return 0
		}
		s := seeds[min(i, len(seeds)-1)]
		i++
		return s
	})
}
