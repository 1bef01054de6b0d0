package compose

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/emyai/server/internal/chat/memory"
	"github.com/emyai/server/internal/chat/model"
	"github.com/emyai/server/internal/chat/prompt"
	"github.com/emyai/server/internal/chat/store"
)

func testProfile() model.Profile {
	return model.Profile{
		ID:          "emy-pro",
		DisplayName: "emyAI Pro",
		Model:       "backend-balanced",
		Persona:     prompt.ProPersona,
		MaxTokens:   2500,
		Temperature: 0.8,
	}
}

func testConversation(t *testing.T) *memory.Conversation {
	t.Helper()
	s, err := store.New(store.DriverMemory)
	require.NoError(t, err)
	m := memory.NewManager(s, model.HistoryConfig{MaxMessages: 50, MaxAge: 7 * 24 * time.Hour})
	return m.NewConversation()
}

func imagePart() model.Part {
	return model.Part{Type: model.PartTypeImage, MIMEType: "image/png", Base64Data: "aGk=", Detail: "high"}
}

func TestComposeTextRequest(t *testing.T) {
	conv := testConversation(t)
	conv.Append(model.RoleUser, model.TextContent("earlier question"))
	conv.Append(model.RoleAssistant, model.TextContent("earlier answer"))

	req, err := Compose(context.Background(), "new question", nil, testProfile(), conv)
	require.NoError(t, err)

	require.Equal(t, "backend-balanced", req.Model)
	require.Equal(t, 2500, req.MaxTokens)
	require.InDelta(t, 0.8, float64(req.Temperature), 0.0001)
	require.False(t, req.Vision)

	require.Len(t, req.Messages, 4)
	require.Equal(t, schema.System, req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, "emyAI Pro")
	require.Equal(t, schema.User, req.Messages[1].Role)
	require.Equal(t, "earlier question", req.Messages[1].Content)
	require.Equal(t, schema.Assistant, req.Messages[2].Role)
	require.Equal(t, schema.User, req.Messages[3].Role)
	require.Equal(t, "new question", req.Messages[3].Content)
}

func TestComposeTextRequestWindowsHistory(t *testing.T) {
	conv := testConversation(t)
	for i := 0; i < 30; i++ {
		conv.Append(model.RoleUser, model.TextContent(fmt.Sprintf("message %d", i)))
	}

	req, err := Compose(context.Background(), "latest", nil, testProfile(), conv)
	require.NoError(t, err)

	// system + 20 most recent history turns + new user turn
	require.Len(t, req.Messages, 22)
	require.Equal(t, "message 10", req.Messages[1].Content)
	require.Equal(t, "message 29", req.Messages[20].Content)
}

func TestComposeImageRequestFiltersImageHistory(t *testing.T) {
	conv := testConversation(t)
	conv.Append(model.RoleUser, model.TextContent("text turn"))
	conv.Append(model.RoleUser, model.PartsContent(
		model.Part{Type: model.PartTypeText, Text: "old image turn"},
		imagePart(),
	))
	conv.Append(model.RoleAssistant, model.TextContent("reply"))

	img := imagePart()
	req, err := Compose(context.Background(), "what changed?", &img, testProfile(), conv)
	require.NoError(t, err)
	require.True(t, req.Vision)
	require.Equal(t, "what changed?", req.UserText)

	// system + two surviving text turns + new user turn; the prior image
	// turn is gone entirely.
	require.Len(t, req.Messages, 4)
	require.Equal(t, "text turn", req.Messages[1].Content)
	require.Equal(t, "reply", req.Messages[2].Content)

	last := req.Messages[3]
	require.Equal(t, schema.User, last.Role)
	require.Len(t, last.MultiContent, 2)
	require.Equal(t, schema.ChatMessagePartTypeText, last.MultiContent[0].Type)
	require.Equal(t, "what changed?", last.MultiContent[0].Text)
	require.Equal(t, schema.ChatMessagePartTypeImageURL, last.MultiContent[1].Type)
	require.Equal(t, "data:image/png;base64,aGk=", last.MultiContent[1].ImageURL.URL)
	require.Equal(t, schema.ImageURLDetailHigh, last.MultiContent[1].ImageURL.Detail)
}

func TestComposeImageRequestDefaultsPrompt(t *testing.T) {
	conv := testConversation(t)

	img := imagePart()
	req, err := Compose(context.Background(), "", &img, testProfile(), conv)
	require.NoError(t, err)

	last := req.Messages[len(req.Messages)-1]
	require.Equal(t, DefaultImagePrompt, last.MultiContent[0].Text)
}

func TestComposeDoesNotMutateConversation(t *testing.T) {
	conv := testConversation(t)
	conv.Append(model.RoleUser, model.TextContent("only turn"))
	before := conv.Turns()

	_, err := Compose(context.Background(), "new", nil, testProfile(), conv)
	require.NoError(t, err)

	require.Equal(t, before, conv.Turns())
	require.Equal(t, 1, conv.Len())
}

func TestBuildUserContent(t *testing.T) {
	plain := BuildUserContent("hello", nil)
	require.False(t, plain.IsStructured())
	require.Equal(t, "hello", plain.Text())

	img := imagePart()
	withImage := BuildUserContent("describe", &img)
	require.True(t, withImage.IsStructured())
	require.True(t, withImage.HasImage())
	require.Equal(t, "describe", withImage.Text())
}
