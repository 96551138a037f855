package inactivity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// Threshold bounds accepted by both detectors, in days.
const (
	MinThresholdDays = 1
	MaxThresholdDays = 365
)

// Detector runs inactivity surveys against one tenant's CRM data.
// It holds no state across runs; each Detect call owns its accumulators.
type Detector struct {
	backend Backend
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a Detector over the given backend.
func New(backend Backend, log zerolog.Logger) *Detector {
	return &Detector{
		backend: backend,
		log:     log.With().Str("component", "inactivity").Logger(),
		now:     time.Now,
	}
}

// ValidateThreshold rejects thresholds outside the accepted range. This is
// the only failure that propagates out of a detector; everything past it is
// captured into the report.
func ValidateThreshold(days int) error {
	if days < MinThresholdDays || days > MaxThresholdDays {
		return fmt.Errorf("thresholdDays must be between %d and %d, got %d", MinThresholdDays, MaxThresholdDays, days)
	}
	return nil
}

// DetectInactiveContacts surveys every contact in the tenant and reports the
// ones with no signal newer than now minus thresholdDays across
// conversations, appointments, notes, and tasks.
func (d *Detector) DetectInactiveContacts(ctx context.Context, thresholdDays int) (*Report[crm.Contact], error) {
	if err := ValidateThreshold(thresholdDays); err != nil {
		return nil, err
	}
	threshold := d.now().UTC().AddDate(0, 0, -thresholdDays)
	report := newReport[crm.Contact](thresholdDays)

	d.log.Info().Int("threshold_days", thresholdDays).Msg("Starting contact inactivity scan")
	contacts, warnings, pageErr := collectContacts(ctx, d.backend)
	if pageErr != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Error fetching contacts: %v", pageErr))
	}
	report.Errors = append(report.Errors, warnings...)

	for _, contact := range contacts {
		if contact.ID == "" {
			continue
		}
		report.TotalChecked++
		inactive, last, err := d.resolveContactActivity(ctx, contact.ID, threshold)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Error checking contact %s: %v", contact.ID, err))
			continue
		}
		if inactive {
			report.flag(contact, last)
		}
	}
	report.InactiveCount = len(report.Inactive)

	d.log.Info().
		Int("total_checked", report.TotalChecked).
		Int("inactive", report.InactiveCount).
		Int("errors", len(report.Errors)).
		Msg("Contact inactivity scan finished")
	return report, nil
}

// DetectInactiveOpportunities surveys every opportunity in the tenant
// (optionally restricted to one pipeline stage) and reports the ones with no
// status or stage change newer than now minus thresholdDays.
func (d *Detector) DetectInactiveOpportunities(ctx context.Context, thresholdDays int, pipelineStageID string) (*Report[crm.Opportunity], error) {
	if err := ValidateThreshold(thresholdDays); err != nil {
		return nil, err
	}
	threshold := d.now().UTC().AddDate(0, 0, -thresholdDays)
	report := newReport[crm.Opportunity](thresholdDays)

	d.log.Info().
		Int("threshold_days", thresholdDays).
		Str("pipeline_stage_id", pipelineStageID).
		Msg("Starting opportunity inactivity scan")
	opportunities, warnings, pageErr := collectOpportunities(ctx, d.backend, pipelineStageID)
	if pageErr != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Error fetching opportunities: %v", pageErr))
	}
	report.Errors = append(report.Errors, warnings...)

	for _, opp := range opportunities {
		if opp.ID == "" {
			continue
		}
		report.TotalChecked++
		inactive, last, err := resolveOpportunityActivity(opp, threshold)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Error checking opportunity %s: %v", opp.ID, err))
			continue
		}
		if inactive {
			report.flag(opp, last)
		}
	}
	report.InactiveCount = len(report.Inactive)

	d.log.Info().
		Int("total_checked", report.TotalChecked).
		Int("inactive", report.InactiveCount).
		Int("errors", len(report.Errors)).
		Msg("Opportunity inactivity scan finished")
	return report, nil
}
