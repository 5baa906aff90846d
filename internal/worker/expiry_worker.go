package worker

import (
	"context"
	"time"

	"github.com/certilearn/assess-backend/internal/service"
	"github.com/rs/zerolog"
)

// ExpiryWorker periodically grades sessions whose deadline passed without
// an explicit submit. Lazy expiry on the request path handles attempts the
// learner still touches; this sweep catches the ones they walked away from.
type ExpiryWorker struct {
	attemptService *service.AttemptService
	interval       time.Duration
	log            zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(attemptService *service.AttemptService, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		attemptService: attemptService,
		interval:       interval,
		log:            log.With().Str("component", "expiry_worker").Logger(),
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ExpiryWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopping")
			return
		case <-ticker.C:
			if swept := w.attemptService.SweepExpired(ctx); swept > 0 {
				w.log.Info().Int("count", swept).Msg("swept expired sessions")
			}
		}
	}
}
