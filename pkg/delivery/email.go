package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/photo"
)

// EmailTimeout bounds one SMTP conversation.
const EmailTimeout = 60 * time.Second

// DefaultBodyTemplate is used when no template is supplied.
const DefaultBodyTemplate = "{{.Message}}\n"

type mailSender func(ctx context.Context, client *mail.Client, msg *mail.Msg) error

func dialAndSend(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
	return client.DialAndSendWithContext(ctx, msg)
}

// Email sends a photo as an attachment through SMTP.
type Email struct {
	cfg      config.EmailConfig
	password string
	body     *template.Template
	send     mailSender
}

// NewEmail creates the email channel. body is a markdown text/template; the HTML part is
// rendered from it with goldmark.
func NewEmail(cfg config.EmailConfig, password, body string) (*Email, error) {
	if body == "" {
		body = DefaultBodyTemplate
	}
	tmpl, err := template.New("email").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing email template: %w", err)
	}
	return &Email{cfg: cfg, password: password, body: tmpl, send: dialAndSend}, nil
}

// Name implements Channel.
func (e *Email) Name() string { return ChannelEmail }

// Enabled implements Channel.
func (e *Email) Enabled() bool { return e.cfg.Enabled }

// Send mails the photo at path to recipient.
func (e *Email) Send(ctx context.Context, path, recipient string) error {
	if !e.cfg.Enabled {
		return failf(ChannelEmail, ErrDisabled, "email is disabled")
	}
	if e.cfg.SMTPServer == "" || e.cfg.SMTPPort <= 0 || e.cfg.SenderEmail == "" {
		return failf(ChannelEmail, ErrNotConfigured, "SMTP server, port and sender must be set")
	}
	if recipient == "" {
		return failf(ChannelEmail, nil, "no recipient address")
	}
	if _, err := os.Stat(path); err != nil {
		return failf(ChannelEmail, err, "photo %s is not readable", filepath.Base(path))
	}

	msg, err := e.message(path, recipient)
	if err != nil {
		return err
	}

	client, err := e.client()
	if err != nil {
		return failf(ChannelEmail, err, "SMTP setup failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, EmailTimeout)
	defer cancel()
	if err := e.send(ctx, client, msg); err != nil {
		return &Error{Channel: ChannelEmail, Err: err, Diagnostic: smtpDiagnostic(err)}
	}
	return nil
}

func (e *Email) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(e.cfg.SMTPPort),
		mail.WithTimeout(EmailTimeout),
	}
	if e.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if e.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.cfg.SenderEmail),
			mail.WithPassword(e.password),
		)
	}
	return mail.NewClient(e.cfg.SMTPServer, opts...)
}

type bodyData struct {
	Message  string
	Filename string
	Taken    string
	AppName  string
}

func (e *Email) message(path, recipient string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.SenderEmail); err != nil {
		return nil, failf(ChannelEmail, err, "invalid sender address %q", e.cfg.SenderEmail)
	}
	if err := msg.To(recipient); err != nil {
		return nil, failf(ChannelEmail, err, "invalid recipient address %q", recipient)
	}
	msg.Subject(e.cfg.Subject)

	name := filepath.Base(path)
	taken := "an unknown date"
	if t, err := time.ParseInLocation(photo.TimestampLayout, photoStamp(name), time.Local); err == nil {
		taken = t.Format("2 January 2006 at 15:04")
	}
	var md bytes.Buffer
	if err := e.body.Execute(&md, bodyData{
		Message:  e.cfg.Message,
		Filename: name,
		Taken:    taken,
		AppName:  config.AppName,
	}); err != nil {
		return nil, failf(ChannelEmail, err, "rendering message: %v", err)
	}
	var html bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &html); err != nil {
		return nil, failf(ChannelEmail, err, "rendering message: %v", err)
	}

	msg.SetBodyString(mail.TypeTextPlain, md.String())
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())
	msg.AttachFile(path, mail.WithFileName(name))
	return msg, nil
}

// photoStamp extracts the timestamp part of photo_YYYYMMDD_HHMMSS[_N].jpg.
func photoStamp(name string) string {
	const prefix = "photo_"
	stem := name[:len(name)-len(filepath.Ext(name))]
	if len(stem) < len(prefix)+len(photo.TimestampLayout) || stem[:len(prefix)] != prefix {
		return ""
	}
	return stem[len(prefix) : len(prefix)+len(photo.TimestampLayout)]
}

func smtpDiagnostic(err error) string {
	var sendErr *mail.SendError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out talking to the mail server"
	case errors.As(err, &sendErr):
		return fmt.Sprintf("mail server refused the message: %v", sendErr)
	default:
		return fmt.Sprintf("sending failed: %v", err)
	}
}
