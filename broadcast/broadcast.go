// Package broadcast fans a single message out to every registered
// user. Delivery attempts are independent: a blocked or unreachable
// recipient never aborts delivery to the remainder
package broadcast

import (
	"context"
	"io"
	"log/slog"

	"github.com/sig-0/exchbot/storage/types"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Sender delivers a single message to a single recipient
type Sender interface {
	Send(ctx context.Context, userID int64, message string) error
}

// Report is the outcome of a single broadcast
type Report struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Dispatcher fans messages out through a Sender
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

// Option is a Dispatcher configuration callback
type Option func(d *Dispatcher)

// WithLogger specifies the logger for the dispatcher
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates a new broadcast dispatcher
func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		logger: noopLogger,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch attempts delivery of the message to every recipient.
// Per-recipient failures are counted and logged, never raised.
// No retry, no ordering guarantee between recipients
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	message string,
	recipients []types.User,
) Report {
	var report Report

	for _, recipient := range recipients {
		if err := d.sender.Send(ctx, recipient.ID, message); err != nil {
			d.logger.Warn(
				"unable to deliver broadcast",
				"recipient", recipient.ID,
				"err", err,
			)

			report.Failed++

			continue
		}

		report.Delivered++
	}

	d.logger.Info(
		"broadcast complete",
		"delivered", report.Delivered,
		"failed", report.Failed,
	)

	return report
}
