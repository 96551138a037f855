package crm

import (
	"encoding/json"
)

// FlexString decodes JSON values that the CRM API returns inconsistently as
// either strings or numbers (epoch-millis timestamps, page numbers).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Contact is a CRM lead/person record. Only the identifier and the search
// cursor are interpreted here; everything else is carried opaquely so tool
// output round-trips whatever profile fields the backend sends.
type Contact struct {
	ID          string
	SearchAfter []any
	Fields      map[string]any
}

func (c *Contact) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if id, ok := raw["id"].(string); ok {
		c.ID = id
	}
	if sa, ok := raw["searchAfter"].([]any); ok {
		c.SearchAfter = sa
	}
	delete(raw, "searchAfter")
	c.Fields = raw
	return nil
}

func (c Contact) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Fields)+1)
	for k, v := range c.Fields {
		out[k] = v
	}
	if c.ID != "" {
		out["id"] = c.ID
	}
	return json.Marshal(out)
}

// ContactSearchResponse is one page of POST /contacts/search.
type ContactSearchResponse struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
}

// NextCursor returns the cursor for the following page, taken from the last
// contact of this page. Nil means the backend offered no continuation.
func (r *ContactSearchResponse) NextCursor() []any {
	if len(r.Contacts) == 0 {
		return nil
	}
	return r.Contacts[len(r.Contacts)-1].SearchAfter
}

// Opportunity is a sales-pipeline deal.
type Opportunity struct {
	ID                 string
	Name               string
	Status             string
	PipelineStageID    string
	LastStatusChangeAt string
	LastStageChangeAt  string
	Fields             map[string]any
}

func (o *Opportunity) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	o.ID = str("id")
	o.Name = str("name")
	o.Status = str("status")
	o.PipelineStageID = str("pipelineStageId")
	o.LastStatusChangeAt = str("lastStatusChangeAt")
	o.LastStageChangeAt = str("lastStageChangeAt")
	o.Fields = raw
	return nil
}

func (o Opportunity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.Fields)+1)
	for k, v := range o.Fields {
		out[k] = v
	}
	if o.ID != "" {
		out["id"] = o.ID
	}
	return json.Marshal(out)
}

// OpportunityMeta is the pagination metadata of GET /opportunities/search.
// NextPageURL is the only reliable continuation signal; the numeric NextPage
// hint keeps counting past the end of the result set.
type OpportunityMeta struct {
	Total        int        `json:"total"`
	NextPageURL  string     `json:"nextPageUrl"`
	NextPage     FlexString `json:"nextPage"`
	CurrentPage  FlexString `json:"currentPage"`
	StartAfter   FlexString `json:"startAfter"`
	StartAfterID string     `json:"startAfterId"`
}

// OpportunitySearchResponse is one page of GET /opportunities/search.
type OpportunitySearchResponse struct {
	Opportunities []Opportunity   `json:"opportunities"`
	Meta          OpportunityMeta `json:"meta"`
}

// OpportunityPage carries the offset markers for the next opportunity page.
type OpportunityPage struct {
	StartAfter   string
	StartAfterID string
}

// Conversation is one conversation thread attached to a contact.
type Conversation struct {
	ID              string     `json:"id"`
	LastMessageDate FlexString `json:"lastMessageDate"`
	LastMessageType string     `json:"lastMessageType,omitempty"`
	ContactID       string     `json:"contactId,omitempty"`
}

// Appointment is a calendar event booked for a contact.
type Appointment struct {
	ID         string `json:"id"`
	CalendarID string `json:"calendarId,omitempty"`
	Title      string `json:"title,omitempty"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime,omitempty"`
	Status     string `json:"appointmentStatus,omitempty"`
}

// Note is a free-form note attached to a contact.
type Note struct {
	ID        string `json:"id"`
	Body      string `json:"body,omitempty"`
	DateAdded string `json:"dateAdded"`
}

// Task is a to-do attached to a contact. DueDate may be absent.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
	DueDate   string `json:"dueDate"`
	Completed bool   `json:"completed"`
}

// Pipeline describes a sales pipeline and its stages.
type Pipeline struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Stages []PipelineStage `json:"stages"`
}

// PipelineStage is one stage within a pipeline.
type PipelineStage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Calendar describes a bookable calendar in the tenant.
type Calendar struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Product is a sellable product configured in the tenant.
type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProductType string `json:"productType,omitempty"`
}
