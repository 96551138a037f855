package inactivity

import (
	"context"
	"fmt"

	"github.com/leadline/crm-mcp/pkg/crm"
)

const (
	pageSize = 100

	// Safety caps so a backend that keeps handing out cursors can never
	// hold a run in an endless loop. Hitting a cap is an advisory in the
	// report, not a failure.
	maxContacts      = 50000
	maxOpportunities = 10000
)

// collectContacts drains the contact search endpoint for the tenant.
// Continuation requires both a full page and a cursor from the backend.
// A page-fetch failure ends pagination; whatever was accumulated is
// returned alongside the error so the run can still check it.
func collectContacts(ctx context.Context, be Backend) ([]crm.Contact, []string, error) {
	var contacts []crm.Contact
	var warnings []string
	var cursor []any
	for {
		page, err := be.SearchContacts(ctx, pageSize, cursor)
		if err != nil {
			return contacts, warnings, fmt.Errorf("fetching contacts page: %w", err)
		}
		contacts = append(contacts, page.Contacts...)
		cursor = page.NextCursor()
		more := len(page.Contacts) == pageSize && len(cursor) > 0
		if len(contacts) >= maxContacts {
			// Only an advisory when the cap actually cut the run short: a
			// result set ending exactly at the cap is a complete survey.
			if len(contacts) > maxContacts || more {
				warnings = append(warnings, fmt.Sprintf("Warning: contact list exceeds safety cap, stopping at %d contacts", maxContacts))
				contacts = contacts[:maxContacts]
			}
			break
		}
		if !more {
			break
		}
	}
	return contacts, warnings, nil
}

// collectOpportunities drains the opportunity search endpoint, optionally
// filtered to one pipeline stage. The only trustworthy continuation signal
// is a concrete next-page URL in the response meta; the numeric nextPage
// hint keeps counting past the end of the result set and is ignored.
func collectOpportunities(ctx context.Context, be Backend, stageID string) ([]crm.Opportunity, []string, error) {
	var opportunities []crm.Opportunity
	var warnings []string
	var page crm.OpportunityPage
	for {
		resp, err := be.SearchOpportunities(ctx, pageSize, stageID, page)
		if err != nil {
			return opportunities, warnings, fmt.Errorf("fetching opportunities page: %w", err)
		}
		opportunities = append(opportunities, resp.Opportunities...)
		more := resp.Meta.NextPageURL != "" && len(resp.Opportunities) > 0
		if len(opportunities) >= maxOpportunities {
			if len(opportunities) > maxOpportunities || more {
				warnings = append(warnings, fmt.Sprintf("Warning: opportunity list exceeds safety cap, stopping at %d opportunities", maxOpportunities))
				opportunities = opportunities[:maxOpportunities]
			}
			break
		}
		if !more {
			break
		}
		page = crm.OpportunityPage{
			StartAfter:   resp.Meta.StartAfter.String(),
			StartAfterID: resp.Meta.StartAfterID,
		}
	}
	return opportunities, warnings, nil
}
