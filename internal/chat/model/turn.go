package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType tags an element of structured message content.
type PartType string

const (
	PartTypeText  PartType = "text"
	PartTypeImage PartType = "image"
)

// ImageDetailHigh is the only detail level the service requests for image
// parts.
const ImageDetailHigh = "high"

// Part is one element of structured message content.
type Part struct {
	Type       PartType `json:"type"`
	Text       string   `json:"text,omitempty"`
	MIMEType   string   `json:"mimeType,omitempty"`
	Base64Data string   `json:"base64Data,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

// Content is a tagged variant: either plain text or an ordered sequence of
// typed parts. On the wire it serialises as a JSON string in the plain case
// and as a part array in the structured case, which is the format the
// reference client persists.
type Content struct {
	text  string
	parts []Part
}

// TextContent builds plain-text content.
func TextContent(s string) Content {
	return Content{text: s}
}

// PartsContent builds structured content from ordered parts.
func PartsContent(parts ...Part) Content {
	return Content{parts: parts}
}

// IsStructured reports whether the content carries typed parts rather than
// a plain string.
func (c Content) IsStructured() bool {
	return c.parts != nil
}

// Parts returns the structured parts, or nil for plain text content.
func (c Content) Parts() []Part {
	return c.parts
}

// Text returns the plain text, or the concatenated text parts for
// structured content.
func (c Content) Text() string {
	if c.parts == nil {
		return c.text
	}
	var b strings.Builder
	for _, p := range c.parts {
		if p.Type == PartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// HasImage reports whether any part carries image data.
func (c Content) HasImage() bool {
	for _, p := range c.parts {
		if p.Type == PartTypeImage {
			return true
		}
	}
	return false
}

// MarshalJSON implements the string-or-parts wire shape.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.parts != nil {
		return json.Marshal(c.parts)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts either a JSON string or a part array.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Content{text: s}
		return nil
	}
	var parts []Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("model: content is neither string nor part array: %w", err)
	}
	*c = Content{parts: parts}
	return nil
}

// Turn is one message in a conversation. Immutable once appended to a
// conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   Content   `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
}

// Message is a plain role/content pair, the shape submitted to the
// completion backend and exchanged with the client.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// ParseImageData splits a base64 data URL (the form the client uploads
// images in) into an image part with detail fixed to high.
func ParseImageData(dataURL string) (Part, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return Part{}, fmt.Errorf("model: image data is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return Part{}, fmt.Errorf("model: image data URL has no payload")
	}
	mime, enc, ok := strings.Cut(meta, ";")
	if !ok || enc != "base64" {
		return Part{}, fmt.Errorf("model: image data URL is not base64 encoded")
	}
	if mime == "" {
		return Part{}, fmt.Errorf("model: image data URL has no media type")
	}
	return Part{
		Type:       PartTypeImage,
		MIMEType:   mime,
		Base64Data: payload,
		Detail:     ImageDetailHigh,
	}, nil
}
