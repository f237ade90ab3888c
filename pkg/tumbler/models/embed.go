package models

// Embed is an embeddable URL with the iframe markup wrapping it.
type Embed struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
