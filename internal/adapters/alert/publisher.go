// Package alert defines the high-risk alert publish port and its backends.
package alert

import (
	"context"

	"github.com/drivefit/riskd/pkg/logger"
)

// Publisher delivers a high-risk notification. Callers treat Publish as
// fire-and-forget: failures are logged and counted, never propagated to the
// ingest request.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// LogPublisher writes alerts to the service log. It is the default backend
// when no notification service is configured.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs the alert at warn level.
func (p *LogPublisher) Publish(ctx context.Context, subject, message string) error {
	p.log.Warn(ctx, "high risk alert",
		logger.String("subject", subject),
		logger.String("message", message),
	)
	return nil
}
