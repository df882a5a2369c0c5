// Package scheduler runs the background jobs: the hourly rate refresh
// and the nightly overdue sweep. Both are best-effort; the lazy status
// derivation and refresh throttle keep correctness independent of them.
package scheduler

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/schedule"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
)

const jobTimeout = 5 * time.Minute

type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Scheduler owns the cron instance and the job wiring.
type Scheduler struct {
	cron     *cron.Cron
	logger   *logrus.Logger
	currency *service.CurrencyService
	reader   *storage.Reader
	ops      processor
}

// New creates a Scheduler with the standard jobs registered.
func New(logger *logrus.Logger, currency *service.CurrencyService, reader *storage.Reader, ops processor) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		logger:   logger,
		currency: currency,
		reader:   reader,
		ops:      ops,
	}

	if _, err := s.cron.AddFunc("0 * * * *", s.refreshRates); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("30 0 * * *", s.sweepOverdue); err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshRates() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.currency.Refresh(ctx, nil, false)
	if err != nil {
		s.logger.WithError(err).Warn("Scheduler.refreshRates")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"refreshed":   result.Refreshed,
		"throttled":   result.Throttled,
		"ratesStored": result.RatesStored,
	}).Info("Scheduler.refreshRates")
}

// sweepOverdue persists the overdue flip for active bills whose due date
// has passed. Readers derive the same answer lazily, so a missed run
// never shows stale statuses.
func (s *Scheduler) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := schedule.DateOnly(time.Now())
	rows, err := s.reader.Bills.ActiveDueBefore(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Warn("Scheduler.sweepOverdue.read")
		return
	}
	if len(rows) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	if err := s.ops.Process(ctx, &actions.MarkBillsOverdue{IDs: ids}); err != nil {
		s.logger.WithError(err).Warn("Scheduler.sweepOverdue.mark")
		return
	}
	s.logger.WithField("count", len(ids)).Info("Scheduler.sweepOverdue")
}
