// Package rng provides the seeded random source used to draw words.
package rng

// mulberry32 constants.
const (
	increment = 0x6D2B79F5
	twoTo32   = 4294967296.0
)

// Mulberry32 is a 32-bit seeded generator. The same seed always yields the
// same sequence, matching every other mulberry32 implementation bit for bit.
type Mulberry32 struct {
	state uint32
	calls int
}

// New creates a generator seeded with seed.
func New(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Uint32 advances the generator and returns the next raw 32-bit value.
func (m *Mulberry32) Uint32() uint32 {
	m.calls++
	m.state += increment
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns the next value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / twoTo32
}

// Intn returns floor(Float64() * n). It still advances when n <= 0 and
// returns 0, so callers keep their position in the sequence.
func (m *Mulberry32) Intn(n int) int {
	f := m.Float64()
	if n <= 0 {
		return 0
	}
	return int(f * float64(n))
}

// Calls returns how many values have been drawn.
func (m *Mulberry32) Calls() int {
	return m.calls
}
