// Package telemetry reports unexpected server faults to Sentry. With an empty
// DSN every call is a no-op.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/JustinTDCT/mediacat/internal/logging"
)

func Init(dsn, environment, release string) error {
	if dsn == "" {
		logging.Info().Msg("sentry disabled")
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrub(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// Capture reports err tagged with the request id.
func Capture(ctx context.Context, err error) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if id := logging.RequestIDFromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		sentry.CaptureException(err)
	})
}

func Flush() {
	sentry.Flush(2 * time.Second)
}

// scrub drops credentials and client addresses before an event leaves the process.
func scrub(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	event.User.IPAddress = ""
	if event.Request != nil {
		for k := range event.Request.Headers {
			switch http.CanonicalHeaderKey(k) {
			case "Authorization", "Cookie", "Set-Cookie":
				event.Request.Headers[k] = "[redacted]"
			}
		}
		event.Request.Cookies = ""
		event.Request.Data = ""
	}
	return event
}
