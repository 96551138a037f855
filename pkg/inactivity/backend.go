// Package inactivity finds contacts and opportunities with no recent
// activity. Each detector run paginates the full entity set for one tenant,
// resolves a last-activity timestamp per entity from one or more signal
// sources, and reports everything older than the requested threshold.
//
// The run is best-effort by design: per-entity and per-source failures are
// collected into the report's error list instead of aborting, because a
// partial survey is more useful to the caller than a hard failure.
package inactivity

import (
	"context"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// Backend is the slice of the CRM API the detectors consume.
// *crm.Client satisfies it; tests use fakes.
type Backend interface {
	SearchContacts(ctx context.Context, pageSize int, searchAfter []any) (*crm.ContactSearchResponse, error)
	SearchOpportunities(ctx context.Context, pageSize int, stageID string, page crm.OpportunityPage) (*crm.OpportunitySearchResponse, error)
	SearchConversations(ctx context.Context, contactID string, limit int) ([]crm.Conversation, error)
	GetAppointments(ctx context.Context, contactID string) ([]crm.Appointment, error)
	GetNotes(ctx context.Context, contactID string) ([]crm.Note, error)
	GetTasks(ctx context.Context, contactID string) ([]crm.Task, error)
}
