package model

import "github.com/cloudwego/eino/schema"

// Persona is the identity block a model tier answers with. It feeds the
// system prompt templates.
type Persona struct {
	Name         string
	Description  string
	Capabilities string
	Identity     string
}

// Profile maps a user-facing model tier to a concrete backend model, its
// persona and its generation settings.
type Profile struct {
	ID          string
	DisplayName string
	Model       string
	Persona     Persona
	MaxTokens   int
	Temperature float32
}

// Request is the fully composed payload for one completion call. Built
// fresh per call, never persisted.
type Request struct {
	Messages    []*schema.Message
	Model       string
	MaxTokens   int
	Temperature float32

	// Vision marks an image-bearing request, which gets the fallback
	// cascade instead of a single attempt.
	Vision bool
	// UserText is the user's original prompt text, echoed by the terminal
	// scripted fallback.
	UserText string
}
