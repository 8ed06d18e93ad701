package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogTransport only logs messages. It is used in development.
type LogTransport struct {
	logger zerolog.Logger
}

// NewLogTransport creates a LogTransport
func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs msg instead of delivering it
func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info().
		Str("toEmail", msg.To).
		Str("subject", msg.Subject).
		Msg("Email provider is log - message not sent")
	return nil
}
