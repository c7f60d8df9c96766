package models

import (
	"fmt"
	"unicode/utf8"
)

// Payload limits enforced before a webhook request is accepted.
const (
	MaxPayloadTextBytes = 4096
	MaxDurationMs       = 600_000 // 10 minutes, protects the surface
)

// WebhookPayload is the body of an authenticated webhook POST.
// Rejected payloads never mutate daemon state.
type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Validate checks the payload against the wire contract: non-empty UTF-8
// text of at most 4 KiB, and a display duration in (0, 10min].
func (p *WebhookPayload) Validate() error {
	if p.Text == "" {
		return fmt.Errorf("text must not be empty")
	}
	if len(p.Text) > MaxPayloadTextBytes {
		return fmt.Errorf("text exceeds %d bytes", MaxPayloadTextBytes)
	}
	if !utf8.ValidString(p.Text) {
		return fmt.Errorf("text is not valid UTF-8")
	}
	if p.DurationMs == 0 {
		return fmt.Errorf("duration_ms must be positive")
	}
	if p.DurationMs > MaxDurationMs {
		return fmt.Errorf("duration_ms exceeds %d", MaxDurationMs)
	}
	return nil
}
