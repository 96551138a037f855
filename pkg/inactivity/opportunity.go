package inactivity

import (
	"fmt"
	"time"

	"github.com/leadline/crm-mcp/pkg/crm"
	"github.com/leadline/crm-mcp/pkg/shared/timeutil"
)

// resolveOpportunityActivity classifies an opportunity from the two change
// timestamps already on the record; no secondary fetches. Either field may
// be absent. An unparseable timestamp is a resolution error for the entity
// rather than a silently ignored signal. Same boundary rule as contacts: a
// change exactly at the threshold instant does not count as recent.
func resolveOpportunityActivity(opp crm.Opportunity, threshold time.Time) (bool, *time.Time, error) {
	statusChange, err := timeutil.ParseOptional(opp.LastStatusChangeAt)
	if err != nil {
		return false, nil, fmt.Errorf("bad lastStatusChangeAt: %w", err)
	}
	stageChange, err := timeutil.ParseOptional(opp.LastStageChangeAt)
	if err != nil {
		return false, nil, fmt.Errorf("bad lastStageChangeAt: %w", err)
	}
	last := timeutil.MaxTime(statusChange, stageChange)
	inactive := last == nil || !last.After(threshold)
	return inactive, last, nil
}
