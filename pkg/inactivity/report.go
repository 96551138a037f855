package inactivity

import (
	"encoding/json"
	"time"
)

// Flagged is one inactive entity: the original record decorated with the
// threshold it was flagged against and its most recent known activity.
// DaysInactive is the configured cutoff, not a measured gap.
type Flagged[T any] struct {
	Entity           T
	DaysInactive     int
	LastActivityDate *time.Time
}

// MarshalJSON flattens the entity's own fields and adds the decoration keys,
// so tool output looks like the CRM record plus daysInactive/lastActivityDate.
func (f Flagged[T]) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(f.Entity)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		// Entity did not serialize to an object; wrap instead of flattening.
		fields = map[string]any{"entity": json.RawMessage(data)}
	}
	fields["daysInactive"] = f.DaysInactive
	if f.LastActivityDate != nil {
		fields["lastActivityDate"] = f.LastActivityDate.UTC().Format(time.RFC3339)
	}
	return json.Marshal(fields)
}

// Report is the outcome of one detector run. It is always structurally
// valid: failures during the run land in Errors rather than aborting.
type Report[T any] struct {
	Inactive      []Flagged[T] `json:"inactive"`
	TotalChecked  int          `json:"totalChecked"`
	InactiveCount int          `json:"inactiveCount"`
	ThresholdDays int          `json:"thresholdDays"`
	Errors        []string     `json:"errors"`
}

func newReport[T any](thresholdDays int) *Report[T] {
	return &Report[T]{
		Inactive:      []Flagged[T]{},
		ThresholdDays: thresholdDays,
		Errors:        []string{},
	}
}

func (r *Report[T]) flag(entity T, last *time.Time) {
	r.Inactive = append(r.Inactive, Flagged[T]{
		Entity:           entity,
		DaysInactive:     r.ThresholdDays,
		LastActivityDate: last,
	})
}
