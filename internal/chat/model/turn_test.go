package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentWireShape(t *testing.T) {
	plain := TextContent("hello")
	b, err := json.Marshal(plain)
	require.NoError(t, err)
	require.JSONEq(t, `"hello"`, string(b))

	structured := PartsContent(
		Part{Type: PartTypeText, Text: "look"},
		Part{Type: PartTypeImage, MIMEType: "image/png", Base64Data: "aGk=", Detail: "high"},
	)
	b, err = json.Marshal(structured)
	require.NoError(t, err)

	var back Content
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.IsStructured())
	require.True(t, back.HasImage())
	require.Equal(t, "look", back.Text())

	var plainBack Content
	require.NoError(t, json.Unmarshal([]byte(`"hi there"`), &plainBack))
	require.False(t, plainBack.IsStructured())
	require.Equal(t, "hi there", plainBack.Text())

	require.Error(t, json.Unmarshal([]byte(`42`), &back))
}

func TestParseImageData(t *testing.T) {
	part, err := ParseImageData("data:image/jpeg;base64,/9j/4AAQ")
	require.NoError(t, err)
	require.Equal(t, PartTypeImage, part.Type)
	require.Equal(t, "image/jpeg", part.MIMEType)
	require.Equal(t, "/9j/4AAQ", part.Base64Data)
	require.Equal(t, ImageDetailHigh, part.Detail)

	for _, input := range []string{
		"",
		"image/png;base64,aGk=",
		"data:image/png,aGk=",
		"data:;base64,aGk=",
		"data:image/png;base64,",
	} {
		_, err := ParseImageData(input)
		require.Error(t, err, "input %q", input)
	}
}
