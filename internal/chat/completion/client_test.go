package completion

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/emyai/server/internal/chat/model"
	errx "github.com/emyai/server/internal/core/error"
)

type fakeResult struct {
	text string
	err  error
}

// fakeBackend answers per requested backend model, recording the order of
// attempts.
type fakeBackend struct {
	responses map[string]fakeResult
	calls     []string
}

func (f *fakeBackend) Generate(_ context.Context, _ []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	o := einomodel.GetCommonOptions(&einomodel.Options{}, opts...)
	name := ""
	if o.Model != nil {
		name = *o.Model
	}
	f.calls = append(f.calls, name)

	r, ok := f.responses[name]
	if !ok {
		return nil, errors.New("no response configured for " + name)
	}
	if r.err != nil {
		return nil, r.err
	}
	return schema.AssistantMessage(r.text, nil), nil
}

func testModelsConfig() model.ModelsConfig {
	var cfg model.ModelsConfig
	cfg.Vision.Primary = "vision-a"
	cfg.Vision.Secondary = "vision-b"
	return cfg
}

func textRequest() model.Request {
	return model.Request{
		Messages:    []*schema.Message{schema.UserMessage("hello")},
		Model:       "backend-balanced",
		MaxTokens:   2500,
		Temperature: 0.8,
	}
}

func visionRequest(userText string) model.Request {
	req := textRequest()
	req.Vision = true
	req.UserText = userText
	return req
}

func TestCompleteTextPath(t *testing.T) {
	backend := &fakeBackend{responses: map[string]fakeResult{
		"backend-balanced": {text: "  the answer  "},
	}}
	c := New(backend, testModelsConfig())

	text, err := c.Complete(context.Background(), textRequest())
	require.NoError(t, err)
	require.Equal(t, "the answer", text)
	require.Equal(t, []string{"backend-balanced"}, backend.calls)
}

func TestCompleteTextPathSingleAttempt(t *testing.T) {
	backend := &fakeBackend{responses: map[string]fakeResult{
		"backend-balanced": {err: genai.APIError{Code: 429, Message: "quota exhausted"}},
	}}
	c := New(backend, testModelsConfig())

	_, err := c.Complete(context.Background(), textRequest())
	require.Error(t, err)
	require.Equal(t, errx.KindQuotaExceeded, errx.KindOf(err))
	// No fallback cascade for the text-only path.
	require.Equal(t, []string{"backend-balanced"}, backend.calls)
}

func TestCompleteVisionCascadeOrder(t *testing.T) {
	backend := &fakeBackend{responses: map[string]fakeResult{
		"vision-a": {err: errors.New("model overloaded")},
		"vision-b": {text: "a bar chart of revenue"},
	}}
	c := New(backend, testModelsConfig())

	text, err := c.Complete(context.Background(), visionRequest("check this chart"))
	require.NoError(t, err)
	require.Equal(t, "a bar chart of revenue", text)
	require.Equal(t, []string{"vision-a", "vision-b"}, backend.calls)
}

func TestCompleteVisionTerminalFallback(t *testing.T) {
	backend := &fakeBackend{responses: map[string]fakeResult{
		"vision-a": {err: errors.New("down")},
		"vision-b": {err: errors.New("also down")},
	}}
	c := New(backend, testModelsConfig())

	text, err := c.Complete(context.Background(), visionRequest("check this chart"))
	require.NoError(t, err)
	require.Contains(t, text, `"check this chart"`)
	require.Contains(t, text, "uploaded an image")
}

func TestCompleteVisionFallbackDefaultsUserText(t *testing.T) {
	backend := &fakeBackend{responses: map[string]fakeResult{
		"vision-a": {err: errors.New("down")},
		"vision-b": {err: errors.New("down")},
	}}
	c := New(backend, testModelsConfig())

	text, err := c.Complete(context.Background(), visionRequest(""))
	require.NoError(t, err)
	require.Contains(t, text, `"analyze this image"`)
}

func TestCompleteClassifiesTimeout(t *testing.T) {
	backend := &fakeBackend{responses: map[string]fakeResult{
		"backend-balanced": {err: context.DeadlineExceeded},
	}}
	c := New(backend, testModelsConfig())

	_, err := c.Complete(context.Background(), textRequest())
	require.Error(t, err)
	require.Equal(t, errx.KindTimeout, errx.KindOf(err))
}
