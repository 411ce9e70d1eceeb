// Package email sends alert analyses over SMTP as multipart HTML/plain
// messages.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"regexp"
	"strings"
	"time"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

// Config holds SMTP configuration.
type Config struct {
	Host       string   // SMTP server host
	Port       int      // SMTP server port (465 for implicit TLS, 587 for STARTTLS)
	Username   string   // SMTP username (optional)
	Password   string   // SMTP password (optional)
	From       string   // From address
	Recipients []string // validated recipient addresses
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ParseRecipients splits a comma-separated recipient list and drops
// addresses that fail basic validation. The dropped addresses are
// returned for logging.
func ParseRecipients(s string) (valid, invalid []string) {
	for _, part := range strings.Split(s, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		if emailRe.MatchString(addr) {
			valid = append(valid, addr)
		} else {
			invalid = append(invalid, addr)
		}
	}
	return valid, invalid
}

// Notifier sends alert analyses via email.
type Notifier struct {
	config    Config
	templates *Templates
}

// New creates an email notifier. Incomplete configuration is allowed;
// the channel just reports itself unconfigured.
func New(config Config) (*Notifier, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return &Notifier{config: config, templates: templates}, nil
}

// Name implements triage.Notifier.
func (e *Notifier) Name() string { return "email" }

// Configured implements triage.Notifier.
func (e *Notifier) Configured() bool {
	return e.config.Host != "" && e.config.Port != 0 &&
		e.config.From != "" && len(e.config.Recipients) > 0
}

// Send delivers the analysis to all configured recipients.
func (e *Notifier) Send(ctx context.Context, res *triage.Result) error {
	data := resultToTemplateData(res)

	htmlBody, err := e.templates.RenderHTML(data)
	if err != nil {
		return fmt.Errorf("render HTML body: %w", err)
	}
	plainBody, err := e.templates.RenderPlain(data)
	if err != nil {
		return fmt.Errorf("render plain body: %w", err)
	}

	msg := e.buildMIMEMessage(Subject(res), plainBody, htmlBody)
	return e.sendMail(ctx, msg)
}

// Subject builds the message subject with an urgency prefix derived from
// severity.
func Subject(res *triage.Result) string {
	return fmt.Sprintf("%s Meraki Alert: %s - %s/%s",
		urgencyPrefix(res.Analysis.Severity), res.AlertType, res.Organization, res.Network)
}

func urgencyPrefix(s triage.Severity) string {
	switch s {
	case triage.SeverityCritical:
		return "[URGENT] \U0001f534"
	case triage.SeverityHigh:
		return "[HIGH] \U0001f7e0"
	case triage.SeverityMedium:
		return "[MEDIUM] \U0001f7e1"
	case triage.SeverityLow:
		return "[LOW] \U0001f7e2"
	case triage.SeverityInfo:
		return "[INFO] ℹ️"
	default:
		return "[ALERT] ⚪"
	}
}

// buildMIMEMessage builds a MIME multipart message with HTML and plain text.
func (e *Notifier) buildMIMEMessage(subject, plainBody, htmlBody string) []byte {
	boundary := fmt.Sprintf("----=_Part_%d", time.Now().UnixNano())

	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", e.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(e.config.Recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(plainBody)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(msg.String())
}

// sendMail delivers the message over SMTP.
func (e *Notifier) sendMail(ctx context.Context, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	tlsConfig := &tls.Config{ServerName: e.config.Host}

	var client *smtp.Client
	var err error

	if e.config.Port == 465 {
		// Implicit TLS (SMTPS)
		client, err = e.connectImplicitTLS(addr, tlsConfig)
	} else {
		// STARTTLS (port 587 or 25)
		client, err = e.connectSTARTTLS(ctx, addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer client.Close()

	if e.config.Username != "" && e.config.Password != "" {
		auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(extractEmail(e.config.From)); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, rcpt := range e.config.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("add recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return client.Quit()
}

func (e *Notifier) connectImplicitTLS(addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return nil, err
	}
	return smtp.NewClient(conn, e.config.Host)
}

func (e *Notifier) connectSTARTTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, e.config.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS: %w", err)
		}
	}

	return client, nil
}

// extractEmail extracts the address from a "Name <email>" format.
func extractEmail(addr string) string {
	if start := strings.Index(addr, "<"); start != -1 {
		if end := strings.Index(addr, ">"); end != -1 {
			return addr[start+1 : end]
		}
	}
	return addr
}
