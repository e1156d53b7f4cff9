// Package sentryhelper provides utilities for Sentry span and scope management.
// It keeps breadcrumbs and context isolated per HTTP request by always going
// through the hub bound to the request context.
package sentryhelper

import (
	"context"

	sentry "github.com/getsentry/sentry-go"
)

// HubFromContext returns the hub bound to ctx by the gin middleware, falling
// back to the current hub.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// AddBreadcrumb adds a breadcrumb to the hub in context (isolated per-request).
func AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	HubFromContext(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	}, nil)
}

// CaptureException captures an exception on the hub in context.
func CaptureException(ctx context.Context, err error) *sentry.EventID {
	return HubFromContext(ctx).CaptureException(err)
}

// StartSpan starts a child span attached to the transaction in context.
func StartSpan(ctx context.Context, operation, description string) *sentry.Span {
	span := sentry.StartSpan(ctx, operation)
	span.Description = description
	return span
}
