package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

var _ model.Notifier = (*SMTP)(nil)

//go:embed templates/*.html
var templateFS embed.FS

const magicLinkSubject = "Your Gole Kaab sign-in link"

// SMTPConfig holds mail server parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	LinkURL  string
	LinkTTL  time.Duration
}

// SMTP sends magic links as HTML e-mail.
type SMTP struct {
	cfg       SMTPConfig
	templates *template.Template
	logger    *logger.Logger
}

// NewSMTP parses the embedded templates. Auth is used only when a username
// is configured.
func NewSMTP(cfg SMTPConfig, logger *logger.Logger) (*SMTP, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if _, err := BuildLink(cfg.LinkURL, ""); err != nil {
		return nil, err
	}

	return &SMTP{
		cfg:       cfg,
		templates: tpl,
		logger:    logger,
	}, nil
}

// SendMagicLink renders and delivers the sign-in message. The context
// deadline bounds the whole SMTP conversation.
func (n *SMTP) SendMagicLink(ctx context.Context, email, token string) error {
	link, err := BuildLink(n.cfg.LinkURL, token)
	if err != nil {
		return err
	}

	msg, err := n.message(email, link)
	if err != nil {
		return err
	}

	client, err := n.client()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	n.logger.Info("SMTP notifier: magic link sent",
		"email", email)

	return nil
}

func (n *SMTP) message(to, link string) (*mail.Msg, error) {
	var body bytes.Buffer
	err := n.templates.ExecuteTemplate(&body, "magic_link.html", struct {
		Link      string
		ExpiresIn string
	}{
		Link:      link,
		ExpiresIn: formatTTL(n.cfg.LinkTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(magicLinkSubject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	return msg, nil
}

// client upgrades with STARTTLS when the server offers it.
func (n *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTLSConfig(&tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return mail.NewClient(n.cfg.Host, opts...)
}

func formatTTL(d time.Duration) string {
	if d <= 0 {
		return "a few minutes"
	}
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return strconv.Itoa(m) + " minutes"
	}
	return d.String()
}
