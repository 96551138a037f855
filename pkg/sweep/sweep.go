// Package sweep runs scheduled inactivity detection against a configured
// tenant and logs the results, so dormant records surface without anyone
// asking for a report.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/auth"
	"github.com/leadline/crm-mcp/pkg/config"
	"github.com/leadline/crm-mcp/pkg/crm"
	"github.com/leadline/crm-mcp/pkg/inactivity"
)

// Sweeper periodically detects inactive contacts and opportunities for one
// tenant.
type Sweeper struct {
	cfg      config.SweepConfig
	detector *inactivity.Detector
	log      zerolog.Logger
	cron     *cron.Cron
}

// New builds a sweeper from configuration. The sweep token is parsed the
// same way as connection tokens, so the sweep is scoped to a single
// location.
func New(cfg *config.Config, log zerolog.Logger) (*Sweeper, error) {
	tenant, err := auth.ParseLocationToken(cfg.Sweep.Token)
	if err != nil {
		return nil, fmt.Errorf("parsing sweep token: %w", err)
	}
	sweepLog := log.With().
		Str("component", "sweep").
		Str("location_id", tenant.LocationID).
		Logger()
	client := crm.New(cfg.CRM.BaseURL, tenant.Token, tenant.LocationID, sweepLog)
	return &Sweeper{
		cfg:      cfg.Sweep,
		detector: inactivity.New(client, sweepLog),
		log:      sweepLog,
		cron:     cron.New(),
	}, nil
}

// Start schedules the sweep and begins running it. It returns after
// scheduling; Stop shuts the scheduler down.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling sweep %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.log.Info().
		Str("schedule", s.cfg.Schedule).
		Int("threshold_days", s.cfg.ThresholdDays).
		Msg("Inactivity sweep scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Inactivity sweep stopped")
}

// Run executes one sweep immediately.
func (s *Sweeper) Run(ctx context.Context) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()
	start := time.Now()
	log.Info().Int("threshold_days", s.cfg.ThresholdDays).Msg("Starting inactivity sweep")

	contacts, err := s.detector.DetectInactiveContacts(ctx, s.cfg.ThresholdDays)
	if err != nil {
		log.Error().Err(err).Msg("Contact sweep failed")
	} else {
		logReport(log, "contacts", contacts.TotalChecked, contacts.InactiveCount, contacts.Errors)
		for _, c := range contacts.Inactive {
			log.Debug().
				Str("contact_id", c.Entity.ID).
				Int("days_inactive", c.DaysInactive).
				Msg("Inactive contact")
		}
	}

	opps, err := s.detector.DetectInactiveOpportunities(ctx, s.cfg.ThresholdDays, s.cfg.PipelineStageID)
	if err != nil {
		log.Error().Err(err).Msg("Opportunity sweep failed")
	} else {
		logReport(log, "opportunities", opps.TotalChecked, opps.InactiveCount, opps.Errors)
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("Inactivity sweep finished")
}

func logReport(log zerolog.Logger, kind string, checked, inactive int, errs []string) {
	evt := log.Info()
	if len(errs) > 0 {
		evt = log.Warn().Strs("errors", errs)
	}
	evt.
		Str("kind", kind).
		Int("checked", checked).
		Int("inactive", inactive).
		Msg("Sweep report")
}
