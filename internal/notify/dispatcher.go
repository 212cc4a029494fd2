// Package notify delivers account emails. Every send is best-effort: callers
// hand the work to a Dispatcher and never see the result.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"employee-service/internal/observability"
)

const defaultSendTimeout = 10 * time.Second

type Recipient struct {
	Name  string
	Email string
}

// Dispatcher runs sends in the background, detached from request cancellation.
type Dispatcher struct {
	logger  *observability.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(logger *observability.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{logger: logger, timeout: timeout}
}

// Go schedules send and returns immediately. Failures and panics are logged
// and reported, never returned.
func (d *Dispatcher) Go(event string, fields map[string]any, send func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.report(event, fields, fmt.Errorf("panic: %v", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := send(ctx); err != nil {
			d.report(event, fields, err)
			return
		}
		d.logger.Info("notification_sent", merge(fields, map[string]any{"event": event}))
	}()
}

// Wait blocks until every scheduled send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) report(event string, fields map[string]any, err error) {
	sentry.CaptureException(fmt.Errorf("notification %s: %w", event, err))
	d.logger.Error("notification_failed", merge(fields, map[string]any{
		"event": event,
		"error": err.Error(),
	}))
}

func merge(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
