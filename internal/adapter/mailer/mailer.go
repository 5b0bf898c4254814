// Package mailer implements domain.EmailSender. The SMTP sender classifies
// transport failures so the retry executor can tell a dead connection from a
// rejected recipient; the log sender is for development environments without
// a mail relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/salvadorquinn/studynet/internal/domain"
	"github.com/salvadorquinn/studynet/internal/platform/retry"
)

// transportError marks a failure as transient at the transport level.
type transportError struct {
	cause error
}

func (e *transportError) Error() string { return e.cause.Error() }
func (e *transportError) Unwrap() error { return e.cause }
func (e *transportError) Code() string  { return retry.CodeNetworkError }

// SMTPSender delivers mail through a relay.
type SMTPSender struct {
	addr string
	from string
}

var _ domain.EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := buildMessage(s.from, to, subject, body)

	// smtp.SendMail has no context hook; honor cancellation up front and
	// let the dial timeout bound the rest.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, msg); err != nil {
		if isTransportError(err) {
			return &transportError{cause: fmt.Errorf("smtp transport failed: %w", err)}
		}
		return fmt.Errorf("smtp delivery rejected: %w", err)
	}
	return nil
}

func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogSender writes outgoing mail to the log instead of delivering it.
type LogSender struct{}

var _ domain.EmailSender = (*LogSender)(nil)

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("Email suppressed (log sender)", "to", to, "subject", subject)
	return nil
}
