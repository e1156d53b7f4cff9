package sentry

import (
	"time"

	sentry "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Init configures the global Sentry client. An empty DSN leaves the SDK
// installed but disabled, so the process still starts without one.
func Init(dsn, release string) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		TracesSampleRate: 1.0,
	}); err != nil {
		log.Errorf("sentry.Init: %s", err)
		return
	}
	if dsn == "" {
		log.Debug("Sentry DSN not set, events will not be sent")
	}
}

func GetSentryGin() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// Flush waits for buffered events before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}
