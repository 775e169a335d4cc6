package models

import "time"

// GeneratedImage is one stored generation result. Rows are never updated in place.
type GeneratedImage struct {
	ID             string
	OwnerID        string
	PromptText     string
	StoredFilename string
	ConfigJSON     string
	CreatedAt      time.Time
}

// GenerationConfig is the parameter set a GeneratedImage was produced with.
type GenerationConfig struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
