// Package compose assembles the ordered message sequence for one
// completion call: persona preamble, trimmed history, then the new user
// turn.
package compose

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/emyai/server/internal/chat/memory"
	"github.com/emyai/server/internal/chat/model"
	"github.com/emyai/server/internal/chat/prompt"
)

const (
	// textHistoryWindow is how many history turns a text-only request
	// carries.
	textHistoryWindow = 20
	// imageHistoryWindow is the smaller window for image-bearing requests,
	// which additionally drop every prior image turn to bound payload
	// size.
	imageHistoryWindow = 15

	// DefaultImagePrompt stands in when the user attaches an image without
	// any text.
	DefaultImagePrompt = "What do you see in this image? Please describe it in detail."
)

// BuildUserContent shapes the new user turn's content: plain text, or
// structured [text, image] parts when an image is attached. The text part
// falls back to the fixed describe prompt when the user supplied none.
func BuildUserContent(userMessage string, image *model.Part) model.Content {
	if image == nil {
		return model.TextContent(userMessage)
	}
	text := userMessage
	if text == "" {
		text = DefaultImagePrompt
	}
	return model.PartsContent(
		model.Part{Type: model.PartTypeText, Text: text},
		*image,
	)
}

// Compose builds the full outgoing request for the resolved profile. It is
// read-only with respect to the conversation.
func Compose(ctx context.Context, userMessage string, image *model.Part, profile model.Profile, conv *memory.Conversation) (model.Request, error) {
	var (
		system  string
		history []model.Message
		err     error
	)
	if image != nil {
		system, err = prompt.RenderVisionSystem(ctx, profile.Persona)
		history = conv.RecentTextWindow(imageHistoryWindow)
	} else {
		system, err = prompt.RenderChatSystem(ctx, profile.Persona)
		history = conv.RecentWindow(textHistoryWindow)
	}
	if err != nil {
		return model.Request{}, fmt.Errorf("compose: %w", err)
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(system))
	for _, m := range history {
		messages = append(messages, toSchemaMessage(m.Role, m.Content))
	}
	messages = append(messages, toSchemaMessage(model.RoleUser, BuildUserContent(userMessage, image)))

	return model.Request{
		Messages:    messages,
		Model:       profile.Model,
		MaxTokens:   profile.MaxTokens,
		Temperature: profile.Temperature,
		Vision:      image != nil,
		UserText:    userMessage,
	}, nil
}

func toSchemaMessage(role model.Role, content model.Content) *schema.Message {
	r := schema.User
	if role == model.RoleAssistant {
		r = schema.Assistant
	}

	if !content.IsStructured() {
		return &schema.Message{Role: r, Content: content.Text()}
	}

	parts := make([]schema.ChatMessagePart, 0, len(content.Parts()))
	for _, p := range content.Parts() {
		switch p.Type {
		case model.PartTypeImage:
			parts = append(parts, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:      fmt.Sprintf("data:%s;base64,%s", p.MIMEType, p.Base64Data),
					MIMEType: p.MIMEType,
					Detail:   schema.ImageURLDetailHigh,
				},
			})
		default:
			parts = append(parts, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}
	return &schema.Message{Role: r, MultiContent: parts}
}
