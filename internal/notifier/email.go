package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailNotifier sends plain-text mail over SMTP. Port 465 uses implicit TLS;
// other ports upgrade with STARTTLS when the server offers it.
type EmailNotifier struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
	// TLSConfig overrides the client TLS settings, mainly for tests.
	TLSConfig *tls.Config
}

// NewEmailNotifier creates an SMTP notifier authenticating as sender.
func NewEmailNotifier(host, port, sender, password, recipient string) *EmailNotifier {
	return &EmailNotifier{
		Host:     host,
		Port:     port,
		Username: sender,
		Password: password,
		From:     sender,
		To:       recipient,
		Timeout:  30 * time.Second,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) tlsConfig() *tls.Config {
	if e.TLSConfig != nil {
		return e.TLSConfig
	}
	return &tls.Config{ServerName: e.Host}
}

func (e *EmailNotifier) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(e.Host, e.Port)
	nd := &net.Dialer{Timeout: e.Timeout}
	if e.Port == "465" {
		td := &tls.Dialer{NetDialer: nd, Config: e.tlsConfig()}
		return td.DialContext(ctx, "tcp", addr)
	}
	return nd.DialContext(ctx, "tcp", addr)
}

// deadline is the earlier of the context deadline and now+Timeout.
func (e *EmailNotifier) deadline(ctx context.Context) (time.Time, bool) {
	d, ok := ctx.Deadline()
	if e.Timeout > 0 {
		if t := time.Now().Add(e.Timeout); !ok || t.Before(d) {
			d, ok = t, true
		}
	}
	return d, ok
}

// Send delivers msg to msg.Recipient, falling back to the configured recipient.
func (e *EmailNotifier) Send(ctx context.Context, msg Message) error {
	to := msg.Recipient
	if to == "" {
		to = e.To
	}
	if to == "" {
		return fmt.Errorf("email: no recipient")
	}

	conn, err := e.dial(ctx)
	if err != nil {
		return fmt.Errorf("email: dial: %w", err)
	}
	if deadline, ok := e.deadline(ctx); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("email: set deadline: %w", err)
		}
	}
	// Cancellation aborts whatever SMTP exchange is in flight.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()
	if err := ctx.Err(); err != nil {
		conn.Close()
		return fmt.Errorf("email: %w", err)
	}

	c, err := smtp.NewClient(conn, e.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("email: handshake: %w", err)
	}
	defer c.Close()

	if e.Port != "465" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(e.tlsConfig()); err != nil {
				return fmt.Errorf("email: starttls: %w", err)
			}
		}
	}
	if e.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", e.Username, e.Password, e.Host)); err != nil {
				return fmt.Errorf("email: auth: %w", err)
			}
		}
	}

	if err := c.Mail(e.From); err != nil {
		return fmt.Errorf("email: mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("email: rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("email: data: %w", err)
	}
	if _, err := w.Write(buildMail(e.From, to, msg.Subject, msg.Body, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("email: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("email: close body: %w", err)
	}
	return c.Quit()
}

// buildMail renders an RFC 5322 message with CRLF line endings.
func buildMail(from, to, subject, body string, date time.Time) []byte {
	var b bytes.Buffer
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
