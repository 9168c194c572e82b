// Package scheduler runs periodic jobs over the ledger.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"billing-engine/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler wraps a cron runner whose jobs call the ApplicationService.
type Scheduler struct {
	cron    *cron.Cron
	svc     app.ApplicationService
	log     zerolog.Logger
	timeout time.Duration
}

// New creates a stopped scheduler. Panicking jobs are recovered and logged.
func New(svc app.ApplicationService, log zerolog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		svc:     svc,
		log:     log,
		timeout: time.Minute,
	}
}

// AddBalanceDigest schedules the outstanding-balance digest on a standard
// five-field cron spec, e.g. "0 9 * * *" for every day at 09:00.
func (s *Scheduler) AddBalanceDigest(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.RunBalanceDigest(ctx); err != nil {
			s.log.Error().Err(err).Msg("balance digest failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.log.Info().Str("schedule", spec).Msg("balance digest scheduled")
	return nil
}

// RunBalanceDigest logs the all-time totals and every customer that still
// owes money.
func (s *Scheduler) RunBalanceDigest(ctx context.Context) error {
	result, err := s.svc.GetBalances(ctx)
	if err != nil {
		return err
	}
	rep := result.Report
	owing := 0
	for _, c := range rep.Customers {
		if !c.Balance.IsPositive() {
			continue
		}
		owing++
		s.log.Info().
			Str("customer_id", c.CustomerID).
			Str("name", c.Name).
			Int("invoices", c.InvoiceCount).
			Str("balance", c.Balance.StringFixed(2)).
			Msg("outstanding balance")
	}
	s.log.Info().
		Str("total_sales", rep.TotalSales.StringFixed(2)).
		Str("total_payments", rep.TotalPayments.StringFixed(2)).
		Str("outstanding", rep.Outstanding.StringFixed(2)).
		Int("customers_owing", owing).
		Msg("balance digest")
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and returns a context done once running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
