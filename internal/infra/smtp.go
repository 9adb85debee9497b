package infra

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/smtp"
	"path/filepath"

	"caffito/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer delivers invoice e-mails. Port 25 is sent in clear, any other port
// upgrades with STARTTLS.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := (&mail.Address{Name: cfg.NombreNegocio, Address: cfg.SMTPUser}).String()
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
	}
}

func (m *Mailer) Configurado() bool { return m.host != "" }

// SendFactura sends body as plain text with the PDF at pdfPath attached.
func (m *Mailer) SendFactura(to, subject, body, pdfPath string) error {
	if !m.Configurado() {
		return fmt.Errorf("mailer: SMTP_HOST not set")
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("mailer: destinatario %q: %w", to, err)
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if pdfPath != "" {
		a, err := e.AttachFile(pdfPath)
		if err != nil {
			return fmt.Errorf("mailer: adjuntar %s: %w", filepath.Base(pdfPath), err)
		}
		a.ContentType = "application/pdf"
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if m.port == 25 {
		return e.Send(addr, auth)
	}
	return e.SendWithStartTLS(addr, auth, &tls.Config{ServerName: m.host})
}
