package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// OTPMailer delivers the short-lived numeric codes used for email
// verification and password resets over plain SMTP.
type OTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	useTLS   bool
}

func NewOTPMailer(host, port, username, password, from string, useTLS bool) *OTPMailer {
	return &OTPMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		useTLS:   useTLS,
	}
}

func (m *OTPMailer) SendVerification(ctx context.Context, email, otp string) error {
	subject := "Verify your Roamio account"
	body := fmt.Sprintf("Use the following code to verify your email address: %s\n\nIf you did not create a Roamio account, ignore this email.", otp)
	return m.send(ctx, email, subject, body)
}

func (m *OTPMailer) SendPasswordReset(ctx context.Context, email, otp string) error {
	subject := "Your Roamio password reset code"
	body := fmt.Sprintf("Use the following code to reset your password: %s\n\nIf you did not request this, ignore this email.", otp)
	return m.send(ctx, email, subject, body)
}

func (m *OTPMailer) send(ctx context.Context, email, subject, body string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", email))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{email}, []byte(message.String()))
}
