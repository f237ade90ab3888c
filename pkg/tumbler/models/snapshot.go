package models

import "time"

// SnapshotVersion is the current Snapshot layout version.
const SnapshotVersion = 1

// Snapshot is a self-contained history entry: everything needed to redraw
// a generation without fetching or parsing the source again.
type Snapshot struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`
	// Version is the layout version (SnapshotVersion).
	Version int `json:"version"`
	// SourceID is the locator of the source the pools came from.
	SourceID string `json:"source_id"`
	// Labels are the column labels.
	Labels []string `json:"labels"`
	// Pools are the column word pools.
	Pools [][]string `json:"pools"`
	// Seed is the generation seed, nil when the entry was taken before any generation.
	Seed *uint32 `json:"seed,omitempty"`
	// CreatedAt is when the entry was taken.
	CreatedAt time.Time `json:"created_at"`
}

// Columns returns the snapshot's labels and pools.
func (s *Snapshot) Columns() Columns {
	return Columns{Labels: s.Labels, Pools: s.Pools}
}
