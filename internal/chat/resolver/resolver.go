// Package resolver maps user-facing model tier names to concrete backend
// models, personas, and generation settings.
package resolver

import (
	"github.com/emyai/server/internal/chat/model"
	"github.com/emyai/server/internal/chat/prompt"
)

// User-facing tier identifiers.
const (
	TierFast      = "emy-3.0"
	TierBalanced  = "emy-pro"
	TierDeepThink = "emy-deep-think"
)

// Resolver holds the fixed tier table. Resolution is total: any input maps
// to a profile.
type Resolver struct {
	profiles map[string]model.Profile
	fallback model.Profile
}

// New builds the tier table from the configured backend models. The
// balanced tier is the fallback for unrecognized identifiers.
func New(cfg model.ModelsConfig) *Resolver {
	fast := model.Profile{
		ID:          TierFast,
		DisplayName: "emyAI 3.0",
		Model:       cfg.Fast.Model,
		Persona:     prompt.FastPersona,
		MaxTokens:   cfg.Fast.MaxTokens,
		Temperature: cfg.Fast.Temperature,
	}
	balanced := model.Profile{
		ID:          TierBalanced,
		DisplayName: "emyAI Pro",
		Model:       cfg.Balanced.Model,
		Persona:     prompt.ProPersona,
		MaxTokens:   cfg.Balanced.MaxTokens,
		Temperature: cfg.Balanced.Temperature,
	}
	deep := model.Profile{
		ID:          TierDeepThink,
		DisplayName: "emyAI Deep Think",
		Model:       cfg.Deep.Model,
		Persona:     prompt.DeepThinkPersona,
		MaxTokens:   cfg.Deep.MaxTokens,
		Temperature: cfg.Deep.Temperature,
	}

	return &Resolver{
		profiles: map[string]model.Profile{
			fast.ID:     fast,
			balanced.ID: balanced,
			deep.ID:     deep,
		},
		fallback: balanced,
	}
}

// Resolve returns the profile for a user-facing identifier. Unrecognized
// or empty identifiers resolve to the balanced default; Resolve never
// fails.
func (r *Resolver) Resolve(userFacingID string) model.Profile {
	if p, ok := r.profiles[userFacingID]; ok {
		return p
	}
	return r.fallback
}
