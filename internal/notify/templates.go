package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

type Credentials struct {
	Email    string
	Password string
	Mobile   string
	Role     string
}

type message struct {
	Subject string
	Body    string
}

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}Hello {{.Name}},

Welcome to the team! An account has been created for you.

Role:     {{.Role}}
Email:    {{.Email}}
Mobile:   {{.Mobile}}
Password: {{.Password}}

Please sign in and keep these credentials safe.
{{end}}
{{define "account_locked"}}Hello {{.Name}},

We detected too many failed sign-in attempts on your account. For your security
the account is locked until {{.Until}}.

If this was not you, please contact your administrator.
{{end}}
{{define "account_restored"}}Hello {{.Name}},

You have signed in successfully and your account is active again.
{{end}}
`))

func renderWelcome(to Recipient, creds Credentials) (message, error) {
	body, err := render("welcome", map[string]any{
		"Name":     to.Name,
		"Role":     creds.Role,
		"Email":    creds.Email,
		"Mobile":   creds.Mobile,
		"Password": creds.Password,
	})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Welcome to the Team! - Credentials Inside", Body: body}, nil
}

func renderAccountLocked(to Recipient, until time.Time) (message, error) {
	body, err := render("account_locked", map[string]any{
		"Name":  to.Name,
		"Until": until.UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Your account has been temporarily locked", Body: body}, nil
}

func renderAccountRestored(to Recipient) (message, error) {
	body, err := render("account_restored", map[string]any{"Name": to.Name})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Your account has been restored", Body: body}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}
