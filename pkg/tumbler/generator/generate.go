// Package generator draws one word per column from seeded pools.
package generator

import (
	"time"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/rng"
)

// DefaultRevealInterval is the gap between consecutive column reveals.
const DefaultRevealInterval = 100 * time.Millisecond

// Indices returns the drawn index for each pool. A single generator is
// advanced across all pools in order, so pool i always consumes draw i.
// An empty pool still consumes its draw and reports index -1.
func Indices(pools [][]string, seed uint32) []int {
	g := rng.New(seed)
	out := make([]int, len(pools))
	for i, pool := range pools {
		idx := g.Intn(len(pool))
		if len(pool) == 0 {
			idx = -1
		}
		out[i] = idx
	}
	return out
}

// Generate picks one word per pool. Empty pools yield "".
func Generate(pools [][]string, seed uint32) []string {
	indices := Indices(pools, seed)
	words := make([]string, len(pools))
	for i, idx := range indices {
		if idx >= 0 {
			words[i] = pools[i][idx]
		}
	}
	return words
}

// Schedule lays out the reveal of already drawn words: column i appears
// i*interval after the first. Labels shorter than words leave badges blank.
func Schedule(labels, words []string, interval time.Duration) []models.Slot {
	slots := make([]models.Slot, len(words))
	for i, w := range words {
		slots[i] = models.Slot{
			Index: i,
			Label: models.Cell(labels, i),
			Word:  w,
			Delay: time.Duration(i) * interval,
		}
	}
	return slots
}
