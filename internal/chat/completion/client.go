// Package completion invokes the hosted chat model, with an explicit
// fallback cascade for image-bearing requests and failure classification
// into user-safe messages.
package completion

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/emyai/server/internal/chat/model"
	errx "github.com/emyai/server/internal/core/error"
	logx "github.com/emyai/server/pkg/logger"
)

// ChatModel is the completion capability the client drives. The eino
// gemini chat model satisfies it; tests substitute fakes.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// Client submits composed requests to the backend. Text-only requests are
// a single attempt; image-bearing requests walk the vision cascade and end
// in a scripted message that never fails.
type Client struct {
	backend      ChatModel
	visionModels []string
}

// New builds a client over the backend chat model. The vision cascade is
// the ordered list of vision-capable backend models tried for image
// requests.
func New(backend ChatModel, cfg model.ModelsConfig) *Client {
	return &Client{
		backend:      backend,
		visionModels: []string{cfg.Vision.Primary, cfg.Vision.Secondary},
	}
}

// Complete submits the request and returns the trimmed response text.
// For image-bearing requests it never returns an error: each vision model
// is attempted once in order, and when all fail the terminal scripted
// fallback message is returned.
func (c *Client) Complete(ctx context.Context, req model.Request) (string, error) {
	if !req.Vision {
		text, err := c.attempt(ctx, req, req.Model)
		if err != nil {
			return "", err
		}
		return text, nil
	}

	for _, m := range c.visionModels {
		text, err := c.attempt(ctx, req, m)
		if err == nil {
			return text, nil
		}
		logx.Warn().Err(err).Str("model", m).Msg("vision model attempt failed, falling back")
	}

	return scriptedVisionFallback(req.UserText), nil
}

func (c *Client) attempt(ctx context.Context, req model.Request, backendModel string) (string, error) {
	resp, err := c.backend.Generate(ctx, req.Messages,
		einomodel.WithModel(backendModel),
		einomodel.WithMaxTokens(req.MaxTokens),
		einomodel.WithTemperature(req.Temperature),
	)
	if err != nil {
		wrapped := errx.WrapBackend(err)
		logx.Error().
			Err(err).
			Str("model", backendModel).
			Str("kind", string(wrapped.Kind)).
			Msg("completion attempt failed")
		return "", wrapped
	}

	logUsage(backendModel, resp)

	return strings.TrimSpace(resp.Content), nil
}

func logUsage(backendModel string, resp *schema.Message) {
	if resp == nil || resp.ResponseMeta == nil || resp.ResponseMeta.Usage == nil {
		return
	}
	u := resp.ResponseMeta.Usage
	logx.Debug().
		Str("model", backendModel).
		Int("prompt_tokens", u.PromptTokens).
		Int("completion_tokens", u.CompletionTokens).
		Int("total_tokens", u.TotalTokens).
		Msg("LLM usage")
}

// scriptedVisionFallback acknowledges a received image that no configured
// model could analyze, echoing the user's original prompt and suggesting
// manual alternatives. This branch never fails.
func scriptedVisionFallback(userText string) string {
	request := userText
	if strings.TrimSpace(request) == "" {
		request = "analyze this image"
	}
	return fmt.Sprintf(`I can see that you've uploaded an image and asked me to "%s". Unfortunately, my current configuration doesn't have access to a vision-capable model for image analysis.

However, I can still help you in other ways:

🔍 **What I can do:**
- Answer questions about code if you describe it
- Help with programming concepts
- Debug issues if you copy/paste the code
- Provide explanations for technical topics

📝 **To get help with your image:**
- Describe what you see in the image
- Copy and paste any code shown
- Tell me what specific help you need

How else can I help you today?`, request)
}
