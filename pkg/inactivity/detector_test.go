package inactivity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/util/ptr"

	"github.com/leadline/crm-mcp/pkg/crm"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeBackend implements Backend with overridable behavior per endpoint.
// Unset endpoints return empty results. Call counters let tests assert
// which signal sources were actually consulted.
type fakeBackend struct {
	searchContacts      func(pageSize int, searchAfter []any) (*crm.ContactSearchResponse, error)
	searchOpportunities func(pageSize int, stageID string, page crm.OpportunityPage) (*crm.OpportunitySearchResponse, error)
	searchConversations func(contactID string) ([]crm.Conversation, error)
	getAppointments     func(contactID string) ([]crm.Appointment, error)
	getNotes            func(contactID string) ([]crm.Note, error)
	getTasks            func(contactID string) ([]crm.Task, error)

	calls map[string]int
}

func (f *fakeBackend) count(name string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeBackend) SearchContacts(_ context.Context, pageSize int, searchAfter []any) (*crm.ContactSearchResponse, error) {
	f.count("searchContacts")
	if f.searchContacts == nil {
		return &crm.ContactSearchResponse{}, nil
	}
	return f.searchContacts(pageSize, searchAfter)
}

func (f *fakeBackend) SearchOpportunities(_ context.Context, pageSize int, stageID string, page crm.OpportunityPage) (*crm.OpportunitySearchResponse, error) {
	f.count("searchOpportunities")
	if f.searchOpportunities == nil {
		return &crm.OpportunitySearchResponse{}, nil
	}
	return f.searchOpportunities(pageSize, stageID, page)
}

func (f *fakeBackend) SearchConversations(_ context.Context, contactID string, _ int) ([]crm.Conversation, error) {
	f.count("searchConversations")
	if f.searchConversations == nil {
		return nil, nil
	}
	return f.searchConversations(contactID)
}

func (f *fakeBackend) GetAppointments(_ context.Context, contactID string) ([]crm.Appointment, error) {
	f.count("getAppointments")
	if f.getAppointments == nil {
		return nil, nil
	}
	return f.getAppointments(contactID)
}

func (f *fakeBackend) GetNotes(_ context.Context, contactID string) ([]crm.Note, error) {
	f.count("getNotes")
	if f.getNotes == nil {
		return nil, nil
	}
	return f.getNotes(contactID)
}

func (f *fakeBackend) GetTasks(_ context.Context, contactID string) ([]crm.Task, error) {
	f.count("getTasks")
	if f.getTasks == nil {
		return nil, nil
	}
	return f.getTasks(contactID)
}

func newTestDetector(be Backend) *Detector {
	d := New(be, zerolog.Nop())
	d.now = func() time.Time { return testNow }
	return d
}

func mkContact(id string) crm.Contact {
	return crm.Contact{
		ID:          id,
		SearchAfter: []any{float64(1), id},
		Fields:      map[string]any{"id": id},
	}
}

func mkContacts(n int, prefix string) []crm.Contact {
	contacts := make([]crm.Contact, n)
	for i := range contacts {
		contacts[i] = mkContact(fmt.Sprintf("%s-%d", prefix, i))
	}
	return contacts
}

func daysAgo(n int) string {
	return testNow.AddDate(0, 0, -n).Format(time.RFC3339)
}

func TestValidateThreshold(t *testing.T) {
	require.NoError(t, ValidateThreshold(1))
	require.NoError(t, ValidateThreshold(365))
	require.Error(t, ValidateThreshold(0))
	require.Error(t, ValidateThreshold(366))
	require.Error(t, ValidateThreshold(-30))
}

func TestDetectContactsRejectsBadThresholdBeforeFetching(t *testing.T) {
	be := &fakeBackend{}
	d := newTestDetector(be)

	_, err := d.DetectInactiveContacts(context.Background(), 0)
	require.Error(t, err)
	_, err = d.DetectInactiveOpportunities(context.Background(), 400, "")
	require.Error(t, err)
	assert.Zero(t, be.calls["searchContacts"])
	assert.Zero(t, be.calls["searchOpportunities"])
}

func TestContactPaginationTermination(t *testing.T) {
	// Pages of 100, 100, 37; cursor only on the first two responses.
	pages := [][]crm.Contact{mkContacts(100, "a"), mkContacts(100, "b"), mkContacts(37, "c")}
	pages[2][len(pages[2])-1].SearchAfter = nil
	pageIdx := 0
	be := &fakeBackend{
		searchContacts: func(pageSize int, _ []any) (*crm.ContactSearchResponse, error) {
			require.Equal(t, 100, pageSize)
			require.Less(t, pageIdx, len(pages), "paginator fetched past the last page")
			page := pages[pageIdx]
			pageIdx++
			return &crm.ContactSearchResponse{Contacts: page, Total: 237}, nil
		},
	}

	contacts, warnings, err := collectContacts(context.Background(), be)
	require.NoError(t, err)
	assert.Len(t, contacts, 237)
	assert.Equal(t, 3, be.calls["searchContacts"])
	assert.Empty(t, warnings)
}

func TestContactPaginationStopsWithoutCursor(t *testing.T) {
	// A full page with no cursor must not trigger another fetch.
	contacts := mkContacts(100, "x")
	for i := range contacts {
		contacts[i].SearchAfter = nil
	}
	be := &fakeBackend{
		searchContacts: func(int, []any) (*crm.ContactSearchResponse, error) {
			return &crm.ContactSearchResponse{Contacts: contacts}, nil
		},
	}

	got, _, err := collectContacts(context.Background(), be)
	require.NoError(t, err)
	assert.Len(t, got, 100)
	assert.Equal(t, 1, be.calls["searchContacts"])
}

func TestContactPaginationCapEnforcement(t *testing.T) {
	// Endless stream of full pages with cursors present.
	be := &fakeBackend{
		searchContacts: func(int, []any) (*crm.ContactSearchResponse, error) {
			return &crm.ContactSearchResponse{Contacts: mkContacts(100, "loop")}, nil
		},
	}

	contacts, warnings, err := collectContacts(context.Background(), be)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(contacts), maxContacts)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "stopping at 50000")
}

func TestContactPaginationEndingAtCapIsComplete(t *testing.T) {
	// Exactly maxContacts across full pages, with the backend withholding a
	// cursor on the last one: a complete survey, not a truncated run.
	lastPage := maxContacts / 100
	pageIdx := 0
	be := &fakeBackend{
		searchContacts: func(int, []any) (*crm.ContactSearchResponse, error) {
			pageIdx++
			page := mkContacts(100, fmt.Sprintf("p%d", pageIdx))
			if pageIdx == lastPage {
				for i := range page {
					page[i].SearchAfter = nil
				}
			}
			return &crm.ContactSearchResponse{Contacts: page}, nil
		},
	}

	contacts, warnings, err := collectContacts(context.Background(), be)
	require.NoError(t, err)
	assert.Len(t, contacts, maxContacts)
	assert.Empty(t, warnings)
}

func TestOpportunityPaginationEndingAtCapIsComplete(t *testing.T) {
	lastPage := maxOpportunities / 100
	pageIdx := 0
	be := &fakeBackend{
		searchOpportunities: func(int, string, crm.OpportunityPage) (*crm.OpportunitySearchResponse, error) {
			pageIdx++
			opps := make([]crm.Opportunity, 100)
			for i := range opps {
				opps[i] = crm.Opportunity{ID: fmt.Sprintf("p%d-%d", pageIdx, i)}
			}
			meta := crm.OpportunityMeta{NextPageURL: "https://example.com/next"}
			if pageIdx == lastPage {
				meta.NextPageURL = ""
			}
			return &crm.OpportunitySearchResponse{Opportunities: opps, Meta: meta}, nil
		},
	}

	opportunities, warnings, err := collectOpportunities(context.Background(), be, "")
	require.NoError(t, err)
	assert.Len(t, opportunities, maxOpportunities)
	assert.Empty(t, warnings)
}

func TestContactPageFetchFailureKeepsAccumulated(t *testing.T) {
	pageIdx := 0
	be := &fakeBackend{
		searchContacts: func(int, []any) (*crm.ContactSearchResponse, error) {
			pageIdx++
			if pageIdx == 2 {
				return nil, errors.New("upstream 502")
			}
			return &crm.ContactSearchResponse{Contacts: mkContacts(100, "ok")}, nil
		},
	}
	d := newTestDetector(be)

	report, err := d.DetectInactiveContacts(context.Background(), 30)
	require.NoError(t, err)
	// First page still checked, failure recorded as one aggregate error.
	assert.Equal(t, 100, report.TotalChecked)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Error fetching contacts")
	assert.Contains(t, report.Errors[0], "upstream 502")
}

func TestOpportunityPaginationUsesNextPageURLOnly(t *testing.T) {
	pageIdx := 0
	var seenPages []crm.OpportunityPage
	be := &fakeBackend{
		searchOpportunities: func(_ int, _ string, page crm.OpportunityPage) (*crm.OpportunitySearchResponse, error) {
			seenPages = append(seenPages, page)
			pageIdx++
			switch pageIdx {
			case 1:
				return &crm.OpportunitySearchResponse{
					Opportunities: []crm.Opportunity{{ID: "opp-1"}},
					Meta: crm.OpportunityMeta{
						NextPageURL:  "https://example.com/opportunities/search?startAfter=123",
						NextPage:     "2",
						StartAfter:   "123",
						StartAfterID: "opp-1",
					},
				}, nil
			default:
				// Numeric nextPage hint still present but no URL: must stop.
				return &crm.OpportunitySearchResponse{
					Opportunities: []crm.Opportunity{{ID: "opp-2"}},
					Meta:          crm.OpportunityMeta{NextPage: "3"},
				}, nil
			}
		},
	}

	opportunities, warnings, err := collectOpportunities(context.Background(), be, "")
	require.NoError(t, err)
	assert.Len(t, opportunities, 2)
	assert.Equal(t, 2, be.calls["searchOpportunities"])
	assert.Empty(t, warnings)
	// Offset markers from page one's meta feed the second request.
	require.Len(t, seenPages, 2)
	assert.Equal(t, crm.OpportunityPage{}, seenPages[0])
	assert.Equal(t, crm.OpportunityPage{StartAfter: "123", StartAfterID: "opp-1"}, seenPages[1])
}

func TestOpportunityPaginationCap(t *testing.T) {
	be := &fakeBackend{
		searchOpportunities: func(int, string, crm.OpportunityPage) (*crm.OpportunitySearchResponse, error) {
			opps := make([]crm.Opportunity, 100)
			for i := range opps {
				opps[i] = crm.Opportunity{ID: fmt.Sprintf("opp-%d", i)}
			}
			return &crm.OpportunitySearchResponse{
				Opportunities: opps,
				Meta:          crm.OpportunityMeta{NextPageURL: "https://example.com/next"},
			}, nil
		},
	}

	opportunities, warnings, err := collectOpportunities(context.Background(), be, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(opportunities), maxOpportunities)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "stopping at 10000")
}

func TestThresholdBoundary(t *testing.T) {
	// Latest signal exactly thresholdDays-1 days old → active;
	// exactly thresholdDays old → inactive.
	tests := []struct {
		name         string
		signalAge    int
		wantInactive bool
	}{
		{name: "one day inside window", signalAge: 29, wantInactive: false},
		{name: "exactly at threshold", signalAge: 30, wantInactive: true},
		{name: "older than threshold", signalAge: 31, wantInactive: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			be := &fakeBackend{
				searchConversations: func(string) ([]crm.Conversation, error) {
					return []crm.Conversation{{ID: "conv", LastMessageDate: crm.FlexString(daysAgo(tc.signalAge))}}, nil
				},
			}
			d := newTestDetector(be)

			inactive, last, err := d.resolveContactActivity(context.Background(), "c1", testNow.AddDate(0, 0, -30))
			require.NoError(t, err)
			assert.Equal(t, tc.wantInactive, inactive)
			require.NotNil(t, last)
			assert.Equal(t, testNow.AddDate(0, 0, -tc.signalAge), last.UTC())
		})
	}
}

func TestShortCircuitSkipsLaterSources(t *testing.T) {
	be := &fakeBackend{
		searchConversations: func(string) ([]crm.Conversation, error) {
			return []crm.Conversation{{ID: "conv", LastMessageDate: crm.FlexString(daysAgo(5))}}, nil
		},
		getAppointments: func(string) ([]crm.Appointment, error) {
			return []crm.Appointment{{ID: "appt", StartTime: daysAgo(2)}}, nil
		},
	}
	d := newTestDetector(be)

	inactive, last, err := d.resolveContactActivity(context.Background(), "c1", testNow.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.False(t, inactive)
	// Later sources must not have been required for the verdict.
	assert.Zero(t, be.calls["getAppointments"])
	assert.Zero(t, be.calls["getNotes"])
	assert.Zero(t, be.calls["getTasks"])
	// The max discovered so far is still reported.
	require.NotNil(t, last)
	assert.Equal(t, testNow.AddDate(0, 0, -5), last.UTC())
}

func TestAllSourcesConsultedWhenNothingRecent(t *testing.T) {
	be := &fakeBackend{
		searchConversations: func(string) ([]crm.Conversation, error) {
			return []crm.Conversation{{ID: "conv", LastMessageDate: crm.FlexString(daysAgo(90))}}, nil
		},
		getNotes: func(string) ([]crm.Note, error) {
			return []crm.Note{{ID: "note", DateAdded: daysAgo(45)}}, nil
		},
	}
	d := newTestDetector(be)

	inactive, last, err := d.resolveContactActivity(context.Background(), "c1", testNow.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.True(t, inactive)
	assert.Equal(t, 1, be.calls["searchConversations"])
	assert.Equal(t, 1, be.calls["getAppointments"])
	assert.Equal(t, 1, be.calls["getNotes"])
	assert.Equal(t, 1, be.calls["getTasks"])
	// Max across all sources: the 45-day-old note wins.
	require.NotNil(t, last)
	assert.Equal(t, testNow.AddDate(0, 0, -45), last.UTC())
}

func TestUndatedTaskNeutrality(t *testing.T) {
	// Zero activity anywhere except one task with no due date → inactive.
	be := &fakeBackend{
		getTasks: func(string) ([]crm.Task, error) {
			return []crm.Task{{ID: "task", Title: "follow up"}}, nil
		},
	}
	d := newTestDetector(be)

	inactive, last, err := d.resolveContactActivity(context.Background(), "c1", testNow.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.True(t, inactive)
	assert.Nil(t, last)
}

func TestSignalSourceFailureDegradesGracefully(t *testing.T) {
	// Conversations endpoint is down; a recent appointment still wins.
	be := &fakeBackend{
		searchConversations: func(string) ([]crm.Conversation, error) {
			return nil, errors.New("conversations unavailable")
		},
		getAppointments: func(string) ([]crm.Appointment, error) {
			return []crm.Appointment{{ID: "appt", StartTime: daysAgo(3)}}, nil
		},
	}
	d := newTestDetector(be)

	inactive, _, err := d.resolveContactActivity(context.Background(), "c1", testNow.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.False(t, inactive)
}

func TestOpportunityMaxOfTwo(t *testing.T) {
	t1 := daysAgo(40)
	t2 := daysAgo(10)
	threshold := testNow.AddDate(0, 0, -30)

	tests := []struct {
		name         string
		opp          crm.Opportunity
		wantInactive bool
		wantLast     *time.Time
	}{
		{
			name:         "stage change more recent",
			opp:          crm.Opportunity{ID: "o1", LastStatusChangeAt: t1, LastStageChangeAt: t2},
			wantInactive: false,
			wantLast:     ptr.Ptr(testNow.AddDate(0, 0, -10)),
		},
		{
			name:         "status change more recent",
			opp:          crm.Opportunity{ID: "o2", LastStatusChangeAt: t2, LastStageChangeAt: t1},
			wantInactive: false,
			wantLast:     ptr.Ptr(testNow.AddDate(0, 0, -10)),
		},
		{
			name:         "only stale status change",
			opp:          crm.Opportunity{ID: "o3", LastStatusChangeAt: t1},
			wantInactive: true,
			wantLast:     ptr.Ptr(testNow.AddDate(0, 0, -40)),
		},
		{
			name:         "both absent",
			opp:          crm.Opportunity{ID: "o4"},
			wantInactive: true,
			wantLast:     nil,
		},
		{
			name:         "change exactly at threshold",
			opp:          crm.Opportunity{ID: "o5", LastStageChangeAt: daysAgo(30)},
			wantInactive: true,
			wantLast:     ptr.Ptr(testNow.AddDate(0, 0, -30)),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inactive, last, err := resolveOpportunityActivity(tc.opp, threshold)
			require.NoError(t, err)
			assert.Equal(t, tc.wantInactive, inactive)
			if tc.wantLast == nil {
				assert.Nil(t, last)
			} else {
				require.NotNil(t, last)
				assert.Equal(t, *tc.wantLast, last.UTC())
			}
		})
	}
}

func TestErrorIsolation(t *testing.T) {
	// Opportunity #50 of 100 has an unparseable timestamp: the other 99 are
	// still classified, one error string references its id, and it still
	// counts toward totalChecked.
	opps := make([]crm.Opportunity, 100)
	for i := range opps {
		opps[i] = crm.Opportunity{ID: fmt.Sprintf("opp-%d", i), LastStatusChangeAt: daysAgo(90)}
	}
	opps[49].LastStatusChangeAt = "not-a-timestamp"
	be := &fakeBackend{
		searchOpportunities: func(int, string, crm.OpportunityPage) (*crm.OpportunitySearchResponse, error) {
			return &crm.OpportunitySearchResponse{Opportunities: opps}, nil
		},
	}
	d := newTestDetector(be)

	report, err := d.DetectInactiveOpportunities(context.Background(), 30, "")
	require.NoError(t, err)
	assert.Equal(t, 100, report.TotalChecked)
	assert.Len(t, report.Inactive, 99)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Error checking opportunity opp-49")
}

func TestEntitiesWithoutIDNotChecked(t *testing.T) {
	be := &fakeBackend{
		searchContacts: func(int, []any) (*crm.ContactSearchResponse, error) {
			return &crm.ContactSearchResponse{Contacts: []crm.Contact{
				mkContact("c1"),
				{Fields: map[string]any{"name": "no id"}},
				mkContact("c2"),
			}}, nil
		},
	}
	d := newTestDetector(be)

	report, err := d.DetectInactiveContacts(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalChecked)
}

func TestEndToEndContactScan(t *testing.T) {
	// Threshold 30 days; one contact with a conversation 10 days ago, one
	// with only a task due 400 days ago.
	be := &fakeBackend{
		searchContacts: func(int, []any) (*crm.ContactSearchResponse, error) {
			return &crm.ContactSearchResponse{Contacts: []crm.Contact{mkContact("active"), mkContact("dormant")}}, nil
		},
		searchConversations: func(contactID string) ([]crm.Conversation, error) {
			if contactID == "active" {
				return []crm.Conversation{{ID: "conv", LastMessageDate: crm.FlexString(daysAgo(10))}}, nil
			}
			return nil, nil
		},
		getTasks: func(contactID string) ([]crm.Task, error) {
			if contactID == "dormant" {
				return []crm.Task{{ID: "task", DueDate: daysAgo(400)}}, nil
			}
			return nil, nil
		},
	}
	d := newTestDetector(be)

	report, err := d.DetectInactiveContacts(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalChecked)
	assert.Equal(t, 1, report.InactiveCount)
	require.Len(t, report.Inactive, 1)
	assert.Equal(t, "dormant", report.Inactive[0].Entity.ID)
	assert.Equal(t, 30, report.Inactive[0].DaysInactive)
	require.NotNil(t, report.Inactive[0].LastActivityDate)
	assert.Equal(t, testNow.AddDate(0, 0, -400), report.Inactive[0].LastActivityDate.UTC())
	assert.Empty(t, report.Errors)
}
