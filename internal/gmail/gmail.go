// Package gmail provides native Go Gmail API operations for mailcal.
package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gm "google.golang.org/api/gmail/v1"
)

// MessageSummary is the metadata returned by a search.
type MessageSummary struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

// FullMessage is a complete message with its decoded body.
type FullMessage struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	Subject    string `json:"subject"`
	Date       string `json:"date"`
	ReceivedAt string `json:"received_at"`
	Body       string `json:"body"`
	Snippet    string `json:"snippet,omitempty"`
}

// Search finds messages matching a Gmail query and returns summaries.
func Search(svc *gm.Service, query string, maxResults int64) ([]MessageSummary, error) {
	resp, err := svc.Users.Messages.List("me").
		Q(query).
		MaxResults(maxResults).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		return nil, nil
	}

	summaries := make([]MessageSummary, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		detail, err := svc.Users.Messages.Get("me", msg.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Do()
		if err != nil {
			// Skip individual message failures.
			continue
		}

		headers := headerMap(detail.Payload.Headers)
		summaries = append(summaries, MessageSummary{
			ID:      detail.Id,
			From:    headers["From"],
			Subject: defaultStr(headers["Subject"], "(no subject)"),
			Date:    headers["Date"],
			Snippet: detail.Snippet,
		})
	}

	return summaries, nil
}

// ReadFull fetches a complete message by ID, decoding the body.
func ReadFull(svc *gm.Service, messageID string) (*FullMessage, error) {
	msg, err := svc.Users.Messages.Get("me", messageID).
		Format("full").
		Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}

	headers := headerMap(msg.Payload.Headers)

	return &FullMessage{
		ID:         msg.Id,
		From:       headers["From"],
		Subject:    defaultStr(headers["Subject"], "(no subject)"),
		Date:       headers["Date"],
		ReceivedAt: internalDate(msg.InternalDate),
		Body:       extractBody(msg.Payload),
		Snippet:    msg.Snippet,
	}, nil
}

// internalDate converts Gmail's epoch-millisecond receipt time to an
// ISO 8601 string.
func internalDate(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// extractBody gets the plain text body from a message payload.
// Handles multipart messages recursively, preferring text/plain over text/html.
func extractBody(payload *gm.MessagePart) string {
	// Direct body on the payload itself.
	if payload.Body != nil && payload.Body.Data != "" {
		if decoded, err := decodeBase64URL(payload.Body.Data); err == nil {
			return decoded
		}
	}

	// Recurse into parts — prefer text/plain first pass.
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			if decoded, err := decodeBase64URL(part.Body.Data); err == nil {
				return decoded
			}
		}
		// Recurse into nested multipart.
		if len(part.Parts) > 0 {
			if body := extractBody(part); body != "" {
				return body
			}
		}
	}

	// Second pass: fall back to HTML.
	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			if decoded, err := decodeBase64URL(part.Body.Data); err == nil {
				return "(HTML content)\n" + decoded
			}
		}
	}

	return ""
}

// headerMap converts Gmail API headers into a simple key-value map.
func headerMap(headers []*gm.MessagePartHeader) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.Name] = h.Value
	}
	return m
}

// decodeBase64URL decodes Gmail's base64url-encoded content.
func decodeBase64URL(data string) (string, error) {
	// Gmail uses URL-safe base64 without padding.
	data = strings.ReplaceAll(data, "-", "+")
	data = strings.ReplaceAll(data, "_", "/")
	// Add padding if needed.
	switch len(data) % 4 {
	case 2:
		data += "=="
	case 3:
		data += "="
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
