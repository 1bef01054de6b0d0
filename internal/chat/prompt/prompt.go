// Package prompt holds the per-tier personas and renders them into the
// single system preamble every outgoing request starts with.
package prompt

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/emyai/server/internal/chat/model"
)

//go:embed template/chat_system.txt
var chatSystemTemplate string

//go:embed template/vision_system.txt
var visionSystemTemplate string

// FastPersona is the quick-turnaround tier.
var FastPersona = model.Persona{
	Name:        "3.0",
	Description: "the fast and efficient AI assistant optimized for quick, accurate responses.",
	Capabilities: "🚀 **EMY 3.0 CAPABILITIES**: Optimized for speed and efficiency. " +
		"Perfect for quick questions, code debugging, explanations, and general assistance. " +
		"Provides comprehensive answers while maintaining excellent response time.",
	Identity: "You are the fastest member of the emyAI family, known for quick thinking and efficient problem-solving.",
}

// ProPersona is the balanced default tier.
var ProPersona = model.Persona{
	Name:        "Pro",
	Description: "the advanced AI assistant with balanced reasoning and comprehensive knowledge.",
	Capabilities: "🧠 **EMY PRO CAPABILITIES**: Advanced reasoning with balanced performance. " +
		"Excellent for complex problem-solving, detailed analysis, creative tasks, and in-depth explanations. " +
		"The go-to model for professional and academic work.",
	Identity: "You are the balanced powerhouse of the emyAI family, combining speed with advanced reasoning capabilities.",
}

// DeepThinkPersona is the deep-reasoning tier.
var DeepThinkPersona = model.Persona{
	Name:        "Deep Think",
	Description: "the most advanced AI assistant specialized in complex analysis and deep reasoning.",
	Capabilities: "🤔 **EMY DEEP THINK CAPABILITIES**: Maximum reasoning power for complex analysis, research, " +
		"philosophical discussions, advanced problem-solving, and thorough investigations. " +
		"Best for tasks requiring deep contemplation and comprehensive understanding.",
	Identity: "You are the most sophisticated member of the emyAI family, designed for complex reasoning and deep analytical thinking.",
}

// RenderChatSystem renders the text-conversation system prompt for a
// persona.
func RenderChatSystem(ctx context.Context, p model.Persona) (string, error) {
	return render(ctx, chatSystemTemplate, p)
}

// RenderVisionSystem renders the image-analysis system prompt for a
// persona.
func RenderVisionSystem(ctx context.Context, p model.Persona) (string, error) {
	return render(ctx, visionSystemTemplate, p)
}

func render(ctx context.Context, tplText string, p model.Persona) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tplText),
	)
	vars := map[string]any{
		"Name":         p.Name,
		"Description":  p.Description,
		"Capabilities": p.Capabilities,
		"Identity":     p.Identity,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("persona prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("persona prompt render: empty result")
	}
	return msgs[0].Content, nil
}
