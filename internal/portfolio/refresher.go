package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// DefaultSchedule refreshes every five minutes.
const DefaultSchedule = "@every 5m"

// Refreshable is what the scheduler drives; Session implements it.
type Refreshable interface {
	Refresh(ctx context.Context) (models.PortfolioSnapshot, error)
}

// Refresher calls Refresh on a cron schedule. Overlapping runs are skipped.
type Refresher struct {
	cron    *cron.Cron
	target  Refreshable
	timeout time.Duration
	logger  *log.Logger
}

// NewRefresher schedules target. Each run is bounded by timeout when it is
// positive.
func NewRefresher(schedule string, target Refreshable, timeout time.Duration, logger *log.Logger) (*Refresher, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	cl := cronLogger{logger}
	r := &Refresher{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		target:  target,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Every registers a housekeeping job that runs alongside the refresh on its
// own schedule.
func (r *Refresher) Every(schedule, name string, fn func()) error {
	_, err := r.cron.AddFunc(schedule, func() {
		fn()
		r.logger.Debug().Str("job", name).Msg("housekeeping job ran")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, name, err)
	}
	return nil
}

// Start begins running the schedule in the background.
func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info().Msg("auto-refresh started")
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info().Msg("auto-refresh stopped")
}

// RunNow performs one refresh on the caller's goroutine.
func (r *Refresher) RunNow() { r.run() }

func (r *Refresher) run() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if _, err := r.target.Refresh(ctx); err != nil {
		if errors.Is(err, ErrSuperseded) {
			r.logger.Debug().Msg("scheduled refresh superseded")
			return
		}
		r.logger.Warn().Err(err).Msg("scheduled refresh failed")
	}
}

// cronLogger adapts phuslu/log to cron.Logger.
type cronLogger struct{ l *log.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug().Any("kv", keysAndValues).Msgf("cron: %s", msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error().Err(err).Any("kv", keysAndValues).Msgf("cron: %s", msg)
}
