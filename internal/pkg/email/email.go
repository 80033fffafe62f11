package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Notifier sends the portal's transactional emails.
type Notifier interface {
	SendWelcomeEmail(toEmail, toName, username string) error
	SendRequestResolvedEmail(toEmail, toName, title, status, response string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string
}

// Configured reports whether real delivery is possible.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

type smtpNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to, subject, htmlBody string) error
}

// NewNotifier creates a Notifier. Without SMTP credentials messages are only logged.
func NewNotifier(config SMTPConfig, logger zerolog.Logger) Notifier {
	n := &smtpNotifier{config: config, logger: logger}
	n.send = n.sendHTMLEmail
	return n
}

func (n *smtpNotifier) SendWelcomeEmail(toEmail, toName, username string) error {
	subject := "Bienvenido al portal de la comunidad"
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Hola %s,</h2>
<p>La administración creó tu cuenta en el portal de la comunidad.</p>
<p>Tu usuario es <strong>%s</strong>. Ingresa en <a href="%s">%s</a>.</p>
</body></html>`, html.EscapeString(toName), html.EscapeString(username), n.config.BaseURL, n.config.BaseURL)

	return n.deliver(toEmail, subject, body)
}

func (n *smtpNotifier) SendRequestResolvedEmail(toEmail, toName, title, status, response string) error {
	subject := "Tu solicitud fue actualizada: " + title
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Hola %s,</h2>
<p>Tu solicitud <strong>%s</strong> ahora está en estado <strong>%s</strong>.</p>
<p>%s</p>
</body></html>`, html.EscapeString(toName), html.EscapeString(title), html.EscapeString(status),
		strings.ReplaceAll(html.EscapeString(response), "\n", "<br>"))

	return n.deliver(toEmail, subject, body)
}

func (n *smtpNotifier) deliver(toEmail, subject, body string) error {
	if toEmail == "" {
		return nil
	}
	if !n.config.Configured() {
		n.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}
	return n.send(toEmail, subject, body)
}

func (n *smtpNotifier) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", n.config.FromName, n.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (n *smtpNotifier) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	message := n.buildMessage(toEmail, subject, htmlBody)
	serverAddress := n.config.Host + ":" + strconv.Itoa(n.config.Port)

	if !n.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, n.config.FromEmail, []string{toEmail}, message); err != nil {
			n.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: n.config.Host})
	if err != nil {
		n.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		n.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(n.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}
