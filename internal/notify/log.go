package notify

import (
	"context"
	"log/slog"

	"github.com/pBarszczewska/booking-api/internal/app"
)

// Log records confirmations instead of delivering them. Used when no
// Mailjet credentials are configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) BookingConfirmed(_ context.Context, n app.BookingNotification) error {
	l.logger.Info("booking confirmed",
		slog.String("email", n.Email),
		slog.String("username", n.Username),
		slog.String("item", n.ItemName),
		slog.Time("start", n.StartAt),
		slog.Time("end", n.EndAt),
	)
	return nil
}
