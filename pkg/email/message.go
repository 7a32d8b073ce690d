package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender delivers one message. Implementations must be safe for concurrent
// use; the mail queue calls Send from multiple goroutines when the provider
// is not rate limited.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Attachment is one file carried by a message.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// Message is one outbound email. Cc and Bcc take comma-separated address
// lists. At least one of HTMLBody and TextBody must be set.
type Message struct {
	To          string       `json:"to"`
	Cc          string       `json:"cc,omitempty"`
	Bcc         string       `json:"bcc,omitempty"`
	Subject     string       `json:"subject"`
	HTMLBody    string       `json:"html_body,omitempty"`
	TextBody    string       `json:"text_body,omitempty"`
	Tag         string       `json:"tag,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the message before any send attempt.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return fmt.Errorf("%w: message needs an HTML or text body", ErrInvalidMessage)
	}
	for _, a := range m.Attachments {
		if a.Name == "" {
			return fmt.Errorf("%w: attachment needs a name", ErrInvalidMessage)
		}
		if len(a.Content) == 0 {
			return fmt.Errorf("%w: attachment %q is empty", ErrInvalidMessage, a.Name)
		}
	}
	return nil
}
