package email

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	mail "github.com/wneessen/go-mail"

	"github.com/evcraddock/resa/internal/tour"
)

// Message is a draft ready to hand to a mail client.
type Message struct {
	FromName string
	From     string
	To       string
	Cc       string
	Subject  string
	Body     string
}

// Message returns the request as a message from the agent.
func (a AppointmentRequest) Message(agent tour.AgentInfo) Message {
	m := Message{FromName: agent.Name, From: agent.Email, To: a.To, Subject: a.Subject, Body: a.Body}
	if a.Cc != nil {
		m.Cc = *a.Cc
	}
	return m
}

// Message returns the notice as a message from the agent. ok is false
// when the notice is not to be sent.
func (u UpdatedItinerary) Message(agent tour.AgentInfo) (m Message, ok bool) {
	if !u.Send {
		return Message{}, false
	}
	m = Message{FromName: agent.Name, From: agent.Email}
	if u.To != nil {
		m.To = *u.To
	}
	if u.Cc != nil {
		m.Cc = *u.Cc
	}
	if u.Subject != nil {
		m.Subject = *u.Subject
	}
	if u.Body != nil {
		m.Body = *u.Body
	}
	return m, true
}

// Message returns the summary as a message from the agent, copying the
// agent so they keep the same itinerary the client received.
func (s TourSummary) Message(agent tour.AgentInfo) Message {
	return Message{
		FromName: agent.Name,
		From:     agent.Email,
		To:       s.To,
		Cc:       agent.Email,
		Subject:  s.Subject,
		Body:     s.Body,
	}
}

// MailtoURL returns a mailto: link that opens the draft in the user's
// mail client.
func (m Message) MailtoURL() string {
	var sb strings.Builder
	sb.WriteString("mailto:")
	sb.WriteString(url.PathEscape(m.To))
	sb.WriteString("?subject=")
	sb.WriteString(uriComponent(m.Subject))
	sb.WriteString("&body=")
	sb.WriteString(uriComponent(m.Body))
	if m.Cc != "" {
		sb.WriteString("&cc=")
		sb.WriteString(uriComponent(m.Cc))
	}
	return sb.String()
}

// ClipboardText renders the draft as header lines followed by the body,
// suitable for pasting into any mail client.
func (m Message) ClipboardText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\n", m.To)
	if m.Cc != "" {
		fmt.Fprintf(&sb, "Cc: %s\n", m.Cc)
	}
	fmt.Fprintf(&sb, "Subject: %s\n\n%s", m.Subject, m.Body)
	return sb.String()
}

// WriteEML writes the draft as an RFC 5322 message marked unsent, so mail
// clients open it as an editable draft.
func WriteEML(w io.Writer, m Message) error {
	msg := mail.NewMsg()
	if m.From != "" {
		if err := msg.FromFormat(m.FromName, m.From); err != nil {
			return fmt.Errorf("setting from: %w", err)
		}
	}
	if m.To != "" {
		if err := msg.To(m.To); err != nil {
			return fmt.Errorf("setting to: %w", err)
		}
	}
	if m.Cc != "" {
		if err := msg.Cc(m.Cc); err != nil {
			return fmt.Errorf("setting cc: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetGenHeader(mail.Header("X-Unsent"), "1")
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	if _, err := msg.WriteTo(w); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

// uriComponent escapes s the way a browser's encodeURIComponent does,
// with spaces as %20 rather than "+".
func uriComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
