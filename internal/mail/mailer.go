// Package mail renders and delivers transactional email: address
// verification, email changes, and password resets.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
)

// Message is a rendered email ready for delivery. Text is the plain
// alternative for clients that don't render HTML.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// LogMailer writes messages to the log instead of delivering them.
// Used in development, where links need to be copy-pasteable from stdout.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a log-only mailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message's plain text body.
func (m *LogMailer) Send(_ context.Context, msg *Message) error {
	m.logger.Info("outbound email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text),
	)
	return nil
}

// SMTPMailer delivers messages through an SMTP relay as
// multipart/alternative with text and HTML parts.
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTPMailer creates a mailer pointed at the given relay (host:port).
func NewSMTPMailer(addr, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

// Send delivers the message. The context is consulted before dialing;
// net/smtp itself does not support cancellation mid-send.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := buildMIME(m.from, msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	if err := smtp.SendMail(m.addr, nil, m.from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

const mimeBoundary = "gp-alt-boundary"

// buildMIME assembles a multipart/alternative payload with quoted-printable
// encoded parts.
func buildMIME(from string, msg *Message) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	}
	for _, part := range parts {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", part.contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return []byte(b.String()), nil
}
