package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"employee-service/internal/observability"
)

func TestRenderWelcomeIncludesCredentials(t *testing.T) {
	msg, err := renderWelcome(Recipient{Name: "Asha", Email: "asha@x.com"}, Credentials{
		Email:    "asha@x.com",
		Password: "s3cretPass",
		Mobile:   "9876543210",
		Role:     "Employee",
	})
	require.NoError(t, err)
	require.Equal(t, "Welcome to the Team! - Credentials Inside", msg.Subject)
	require.Contains(t, msg.Body, "Hello Asha")
	require.Contains(t, msg.Body, "s3cretPass")
	require.Contains(t, msg.Body, "9876543210")
}

func TestRenderAccountLockedFormatsUntil(t *testing.T) {
	until := time.Date(2026, 3, 4, 10, 15, 0, 0, time.UTC)
	msg, err := renderAccountLocked(Recipient{Name: "Ravi"}, until)
	require.NoError(t, err)
	require.Contains(t, msg.Body, "2026-03-04 10:15 UTC")
}

func TestNewMailerRequiresHostAndFrom(t *testing.T) {
	_, err := NewMailer(SMTPConfig{From: "hr@x.com"})
	require.Error(t, err)

	_, err = NewMailer(SMTPConfig{Host: "smtp.x.com", Port: 587})
	require.Error(t, err)
}

func TestDispatcherContainsFailuresAndPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLoggerTo(&buf)
	d := NewDispatcher(logger, time.Second)

	var ran, withDeadline atomic.Int32
	d.Go("account_locked", map[string]any{"to": "a@x.com"}, func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("smtp down")
	})
	d.Go("welcome", nil, func(ctx context.Context) error {
		ran.Add(1)
		panic("template exploded")
	})
	d.Go("account_restored", nil, func(ctx context.Context) error {
		ran.Add(1)
		if _, ok := ctx.Deadline(); ok {
			withDeadline.Add(1)
		}
		return nil
	})
	d.Wait()

	require.EqualValues(t, 3, ran.Load())
	require.EqualValues(t, 1, withDeadline.Load())
	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "notification_failed"))
	require.Equal(t, 1, strings.Count(out, "notification_sent"))
	require.Contains(t, out, "smtp down")
}

func TestLogNotifierNeverFails(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(observability.NewLoggerTo(&buf))
	ctx := context.Background()
	to := Recipient{Name: "A", Email: "a@x.com"}

	require.NoError(t, n.SendWelcome(ctx, to, Credentials{Role: "Manager"}))
	require.NoError(t, n.SendAccountLocked(ctx, to, time.Now()))
	require.NoError(t, n.SendAccountRestored(ctx, to))
	require.Equal(t, 3, strings.Count(buf.String(), "mail_skipped"))
}
