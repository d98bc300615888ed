package service

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/mzalewski/examtrainer/config"
	"github.com/rs/zerolog/log"
)

// EmailService delivers transactional account mail. When SMTP is not
// configured the service degrades to logging the would-be message, so local
// development does not require a mail server.
type EmailService interface {
	SendVerification(to, name, token string) error
	SendPasswordReset(to, name, token string) error
	SendEmailChange(to, name, token string) error
}

type emailService struct {
	cfg     config.SMTP
	baseURL string
}

func NewEmailService(cfg *config.Config) EmailService {
	return &emailService{cfg: cfg.SMTP, baseURL: cfg.App.BaseURL}
}

var mailTemplate = template.Must(template.New("mail").Parse(`
<html>
<body>
	<p>Hi {{.Name}},</p>
	<p>{{.Intro}}</p>
	<p><a href="{{.Link}}">{{.Action}}</a></p>
	<p>If you did not request this, you can safely ignore this email. The link
	expires in 24 hours.</p>
</body>
</html>`))

type mailData struct {
	Name   string
	Intro  string
	Link   string
	Action string
}

func (s *emailService) SendVerification(to, name, token string) error {
	return s.send(to, "Verify your account", mailData{
		Name:   name,
		Intro:  "Welcome! Please confirm your email address to activate your account.",
		Link:   fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, token),
		Action: "Verify email",
	})
}

func (s *emailService) SendPasswordReset(to, name, token string) error {
	return s.send(to, "Reset your password", mailData{
		Name:   name,
		Intro:  "We received a request to reset your password.",
		Link:   fmt.Sprintf("%s/auth/password-reset?token=%s", s.baseURL, token),
		Action: "Reset password",
	})
}

func (s *emailService) SendEmailChange(to, name, token string) error {
	return s.send(to, "Confirm your new email address", mailData{
		Name:   name,
		Intro:  "Please confirm that this is your new email address.",
		Link:   fmt.Sprintf("%s/auth/email-change?token=%s", s.baseURL, token),
		Action: "Confirm email change",
	})
}

func (s *emailService) send(to, subject string, data mailData) error {
	if s.cfg.Host == "" {
		log.Info().Str("to", to).Str("subject", subject).Str("link", data.Link).
			Msg("SMTP not configured; skipping email delivery")
		return nil
	}

	var body bytes.Buffer
	if err := mailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, msg.Bytes()); err != nil {
		log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Email delivery failed")
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}
