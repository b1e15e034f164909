package services

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/mail"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/yeremiapane/photobooth-app/config"
	"github.com/yeremiapane/photobooth-app/utils"
)

//go:embed templates/photo_reminder.html
var photoReminderTemplate string

//go:embed templates/welcome.html
var welcomeTemplate string

const (
	reminderSubject = "📸 It's photo time!"
	welcomeSubject  = "Welcome to Photobooth 📸"
)

var (
	ErrMailDisabled   = errors.New("mail service disabled: missing SMTP configuration")
	ErrInvalidAddress = errors.New("invalid recipient address")
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// MailService mengirim email reminder dan welcome lewat SMTP.
type MailService struct {
	cfg      config.SMTPConfig
	appURL   string
	enabled  bool
	reminder *template.Template
	welcome  *template.Template
	sendMail sendMailFunc
}

func NewMailService(cfg config.SMTPConfig, appURL string) *MailService {
	enabled := cfg.Host != "" && cfg.Port != "" && cfg.Username != "" && cfg.Password != "" && cfg.From != ""
	if !enabled {
		utils.InfoLogger.Warn("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		cfg:      cfg,
		appURL:   strings.TrimRight(appURL, "/"),
		enabled:  enabled,
		reminder: template.Must(template.New("photo_reminder").Parse(photoReminderTemplate)),
		welcome:  template.Must(template.New("welcome").Parse(welcomeTemplate)),
		sendMail: smtp.SendMail,
	}
}

func (s *MailService) Enabled() bool {
	return s.enabled
}

// CameraURL adalah link langsung ke kamera room.
func (s *MailService) CameraURL(roomCode string) string {
	return fmt.Sprintf("%s/room/%s/camera", s.appURL, url.PathEscape(roomCode))
}

func render(tmpl *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Send mengirim email reminder secara sinkron.
func (s *MailService) Send(ctx context.Context, to string, data ReminderContext) (DeliveryResult, error) {
	body, err := render(s.reminder, map[string]string{
		"UserName":  data.UserName,
		"RoomName":  data.RoomName,
		"RoomCode":  data.RoomCode,
		"CameraURL": s.CameraURL(data.RoomCode),
	})
	if err != nil {
		return DeliveryResult{}, err
	}
	return s.deliver(ctx, to, reminderSubject, body)
}

// SendWelcome mengirim email sambutan setelah registrasi.
func (s *MailService) SendWelcome(ctx context.Context, to, userName string) (DeliveryResult, error) {
	body, err := render(s.welcome, map[string]string{
		"UserName": userName,
		"AppURL":   s.appURL,
	})
	if err != nil {
		return DeliveryResult{}, err
	}
	return s.deliver(ctx, to, welcomeSubject, body)
}

func (s *MailService) deliver(ctx context.Context, to, subject, body string) (DeliveryResult, error) {
	if !s.enabled {
		return DeliveryResult{}, ErrMailDisabled
	}
	if err := ctx.Err(); err != nil {
		return DeliveryResult{}, err
	}

	rcpt, err := recipientAddress(to)
	if err != nil {
		return DeliveryResult{}, err
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{rcpt}, buildMessage(s.cfg.From, rcpt, subject, body)); err != nil {
		return DeliveryResult{}, fmt.Errorf("send email to %s: %w", rcpt, err)
	}

	utils.InfoLogger.Printf("Email %q sent to %s", subject, rcpt)
	return DeliveryResult{Success: true}, nil
}

// recipientAddress hanya menerima satu alamat polos; CR/LF ditolak agar header tidak bisa disisipi.
func recipientAddress(to string) (string, error) {
	if strings.ContainsAny(to, "\r\n") {
		return "", ErrInvalidAddress
	}
	parsed, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return parsed.Address, nil
}

func buildMessage(from, to, subject, body string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: Photobooth <%s>\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}
