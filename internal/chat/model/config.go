package model

import "time"

// HistoryConfig bounds the conversation memory and selects its backing
// store.
type HistoryConfig struct {
	MaxMessages int           `envconfig:"HISTORY_MAX_MESSAGES" default:"50"`
	MaxAge      time.Duration `envconfig:"HISTORY_MAX_AGE" default:"168h"`
	Driver      string        `envconfig:"HISTORY_DRIVER" default:"memory"`
	TTL         time.Duration `envconfig:"HISTORY_TTL" default:"168h"`
}

// TierConfig holds the backend model and generation settings for one
// user-facing tier.
type TierConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// ModelsConfig wires each tier and the vision cascade from the
// environment.
type ModelsConfig struct {
	Fast struct {
		Model       string  `envconfig:"FAST_MODEL" default:"gemini-2.5-flash-lite"`
		MaxTokens   int     `envconfig:"FAST_MAX_TOKENS" default:"2500"`
		Temperature float32 `envconfig:"FAST_TEMPERATURE" default:"0.8"`
	}
	Balanced struct {
		Model       string  `envconfig:"BALANCED_MODEL" default:"gemini-2.5-flash"`
		MaxTokens   int     `envconfig:"BALANCED_MAX_TOKENS" default:"2500"`
		Temperature float32 `envconfig:"BALANCED_TEMPERATURE" default:"0.8"`
	}
	Deep struct {
		Model       string  `envconfig:"DEEP_MODEL" default:"gemini-2.5-pro"`
		MaxTokens   int     `envconfig:"DEEP_MAX_TOKENS" default:"2500"`
		Temperature float32 `envconfig:"DEEP_TEMPERATURE" default:"0.8"`
	}
	Vision struct {
		Primary   string `envconfig:"VISION_PRIMARY_MODEL" default:"gemini-2.5-pro"`
		Secondary string `envconfig:"VISION_SECONDARY_MODEL" default:"gemini-2.5-flash"`
	}
}

// ServerConfig holds the HTTP relay settings.
type ServerConfig struct {
	Port           int           `envconfig:"PORT" default:"3000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxBodyBytes   int64         `envconfig:"MAX_BODY_BYTES" default:"52428800"`
}
