package refresh

import "log/slog"

type Option func(r *Refresher)

// WithLogger specifies the logger for the refresher
func WithLogger(l *slog.Logger) Option {
	return func(r *Refresher) {
		r.logger = l
	}
}
