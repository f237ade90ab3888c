package models

// Result is the serializable outcome of a generation.
type Result struct {
	// Source is the loaded source locator.
	Source string `json:"source"`
	// Seed is the seed the words were drawn with.
	Seed uint32 `json:"seed"`
	// Labels are the column labels.
	Labels []string `json:"labels"`
	// Words are the chosen words, one per column.
	Words []string `json:"words"`
	// Locator is the shareable query string reproducing this result.
	Locator string `json:"locator"`
	// SnapshotID is the history entry recorded for this result, if any.
	SnapshotID string `json:"snapshot_id,omitempty"`
	// Embed is an embeddable URL for this result, if a base URL is known.
	Embed string `json:"embed,omitempty"`
}
