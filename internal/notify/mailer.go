package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"employee-service/internal/observability"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends account emails over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}

	options := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(host, options...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) SendWelcome(ctx context.Context, to Recipient, creds Credentials) error {
	msg, err := renderWelcome(to, creds)
	if err != nil {
		return err
	}
	return m.send(ctx, to, msg)
}

func (m *Mailer) SendAccountLocked(ctx context.Context, to Recipient, until time.Time) error {
	msg, err := renderAccountLocked(to, until)
	if err != nil {
		return err
	}
	return m.send(ctx, to, msg)
}

func (m *Mailer) SendAccountRestored(ctx context.Context, to Recipient) error {
	msg, err := renderAccountRestored(to)
	if err != nil {
		return err
	}
	return m.send(ctx, to, msg)
}

func (m *Mailer) send(ctx context.Context, to Recipient, content message) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.AddToFormat(to.Name, to.Email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(content.Subject)
	msg.SetBodyString(mail.TypeTextPlain, content.Body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to.Email, err)
	}
	return nil
}

// LogNotifier stands in for Mailer when SMTP is not configured.
type LogNotifier struct {
	logger *observability.Logger
}

func NewLogNotifier(logger *observability.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendWelcome(_ context.Context, to Recipient, creds Credentials) error {
	n.logger.Info("mail_skipped", map[string]any{"template": "welcome", "to": to.Email, "role": creds.Role})
	return nil
}

func (n *LogNotifier) SendAccountLocked(_ context.Context, to Recipient, until time.Time) error {
	n.logger.Info("mail_skipped", map[string]any{
		"template":     "account_locked",
		"to":           to.Email,
		"locked_until": until.UTC().Format(time.RFC3339),
	})
	return nil
}

func (n *LogNotifier) SendAccountRestored(_ context.Context, to Recipient) error {
	n.logger.Info("mail_skipped", map[string]any{"template": "account_restored", "to": to.Email})
	return nil
}
