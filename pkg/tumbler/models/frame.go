package models

import "time"

// Slot is one rendered column.
type Slot struct {
	// Index is the column index.
	Index int `json:"index"`
	// Label is the badge text; "" means no badge.
	Label string `json:"label,omitempty"`
	// Word is the chosen word; "" for an empty pool.
	Word string `json:"word"`
	// Delay is when the slot should be revealed, relative to the frame start.
	Delay time.Duration `json:"-"`
}

// Frame is what a renderer draws after a generation.
type Frame struct {
	Source string `json:"source"`
	Seed   uint32 `json:"seed"`
	Slots  []Slot `json:"slots"`
}
