package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gm "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestDecodeBase64URL(t *testing.T) {
	decoded, err := decodeBase64URL(b64url("Your flight is confirmed?>"))
	require.NoError(t, err)
	assert.Equal(t, "Your flight is confirmed?>", decoded)

	_, err = decodeBase64URL("!!! not base64 !!!")
	assert.Error(t, err)
}

func TestExtractBodyDirect(t *testing.T) {
	payload := &gm.MessagePart{
		MimeType: "text/plain",
		Body:     &gm.MessagePartBody{Data: b64url("plain body")},
	}
	assert.Equal(t, "plain body", extractBody(payload))
}

func TestExtractBodyPrefersPlainText(t *testing.T) {
	payload := &gm.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gm.MessagePart{
			{MimeType: "text/html", Body: &gm.MessagePartBody{Data: b64url("<p>html</p>")}},
			{MimeType: "text/plain", Body: &gm.MessagePartBody{Data: b64url("plain")}},
		},
	}
	assert.Equal(t, "plain", extractBody(payload))
}

func TestExtractBodyFallsBackToHTML(t *testing.T) {
	payload := &gm.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gm.MessagePart{
			{MimeType: "text/html", Body: &gm.MessagePartBody{Data: b64url("<p>html only</p>")}},
		},
	}
	assert.Equal(t, "(HTML content)\n<p>html only</p>", extractBody(payload))
}

func TestExtractBodyNestedMultipart(t *testing.T) {
	payload := &gm.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gm.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gm.MessagePart{
					{MimeType: "text/plain", Body: &gm.MessagePartBody{Data: b64url("nested plain")}},
				},
			},
		},
	}
	assert.Equal(t, "nested plain", extractBody(payload))
}

func TestExtractBodyEmpty(t *testing.T) {
	assert.Equal(t, "", extractBody(&gm.MessagePart{MimeType: "multipart/mixed"}))
}

func TestInternalDate(t *testing.T) {
	assert.Equal(t, "2025-01-04T10:00:00Z", internalDate(1735984800000))
	assert.Equal(t, "", internalDate(0))
}

func TestHeaderMap(t *testing.T) {
	m := headerMap([]*gm.MessagePartHeader{
		{Name: "From", Value: "a@example.com"},
		{Name: "Subject", Value: "hi"},
	})
	assert.Equal(t, "a@example.com", m["From"])
	assert.Equal(t, "hi", m["Subject"])
}
