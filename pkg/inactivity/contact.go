package inactivity

import (
	"context"
	"time"

	"github.com/leadline/crm-mcp/pkg/shared/timeutil"
)

// conversationProbeLimit bounds the conversation fetch per contact. One
// page of recent threads is plenty to establish recency.
const conversationProbeLimit = 50

// resolveContactActivity determines whether a contact has any activity
// strictly after threshold, consulting conversations, appointments, notes,
// and tasks in that order. A signal exactly at the threshold instant is not
// recent: an entity whose newest activity is exactly thresholdDays old is
// inactive. Each later source is consulted only if the earlier ones did
// not confirm recent activity: the steps are sequenced on each other's
// outcome, not merely ordered.
//
// Signal-source fetch failures are swallowed (logged at debug) so one broken
// endpoint degrades the resolution instead of failing it. Tasks contribute
// through their due date only; an undated task is evidence of nothing.
//
// Returns inactive = true when no consulted signal is recent, together with
// the most recent timestamp observed across all consulted sources. The only
// error returned is context cancellation.
func (d *Detector) resolveContactActivity(ctx context.Context, contactID string, threshold time.Time) (bool, *time.Time, error) {
	var last *time.Time
	recent := false

	observe := func(raw string) {
		if raw == "" {
			return
		}
		ts, err := timeutil.ParseTimestamp(raw)
		if err != nil {
			d.log.Debug().Str("contact_id", contactID).Err(err).Msg("Skipping unparseable activity timestamp")
			return
		}
		last = timeutil.MaxTime(last, &ts)
		if ts.After(threshold) {
			recent = true
		}
	}

	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	conversations, err := d.backend.SearchConversations(ctx, contactID, conversationProbeLimit)
	if err != nil {
		d.log.Debug().Str("contact_id", contactID).Err(err).Msg("Conversation check failed")
	}
	for _, conv := range conversations {
		observe(conv.LastMessageDate.String())
	}

	if !recent {
		if err := ctx.Err(); err != nil {
			return false, nil, err
		}
		appointments, err := d.backend.GetAppointments(ctx, contactID)
		if err != nil {
			d.log.Debug().Str("contact_id", contactID).Err(err).Msg("Appointment check failed")
		}
		for _, appt := range appointments {
			observe(appt.StartTime)
		}
	}

	if !recent {
		if err := ctx.Err(); err != nil {
			return false, nil, err
		}
		notes, err := d.backend.GetNotes(ctx, contactID)
		if err != nil {
			d.log.Debug().Str("contact_id", contactID).Err(err).Msg("Note check failed")
		}
		for _, note := range notes {
			observe(note.DateAdded)
		}
	}

	if !recent {
		if err := ctx.Err(); err != nil {
			return false, nil, err
		}
		tasks, err := d.backend.GetTasks(ctx, contactID)
		if err != nil {
			d.log.Debug().Str("contact_id", contactID).Err(err).Msg("Task check failed")
		}
		for _, task := range tasks {
			observe(task.DueDate)
		}
	}

	return !recent, last, nil
}
