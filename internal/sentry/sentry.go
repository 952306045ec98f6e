package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Init enables panic reporting. An empty dsn leaves reporting off.
func Init(dsn, serverName string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		ServerName:       serverName,
		AttachStacktrace: true,
	})
}

// RecoverPanic reports a panic of the calling goroutine and panics again.
// It must be deferred.
func RecoverPanic() {
	if err := recover(); err != nil {
		CapturePanic(err)
		panic(err)
	}
}

// CapturePanic reports a recovered value without panicking again.
func CapturePanic(v interface{}) {
	sentry.CurrentHub().Recover(v)
	sentry.Flush(flushTimeout)
}
