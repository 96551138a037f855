package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leadline/crm-mcp/pkg/crm"
	"github.com/leadline/crm-mcp/pkg/shared/timeutil"
)

// NewListCalendars lists the tenant's calendars.
func NewListCalendars(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "list_calendars",
			Description: "List the location's bookable calendars.",
			Annotations: &mcp.ToolAnnotations{Title: "List Calendars"},
			InputSchema: objectSchema(map[string]any{}),
		},
		Group:    GroupCalendars,
		ReadOnly: true,
		Execute: func(ctx context.Context, _ map[string]any) (*Result, error) {
			calendars, err := client.GetCalendars(ctx)
			if err != nil {
				return ErrorResultf("list_calendars", "failed to fetch calendars: %v", err), nil
			}
			return JSONResult(map[string]any{"calendars": calendars}), nil
		},
	}
}

// NewListCalendarEvents lists events on one calendar within a time range.
func NewListCalendarEvents(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "list_calendar_events",
			Description: "List events on a calendar between two ISO 8601 timestamps. Defaults to the next 7 days.",
			Annotations: &mcp.ToolAnnotations{Title: "List Calendar Events"},
			InputSchema: objectSchema(map[string]any{
				"calendarId": stringProp("The calendar id"),
				"startTime":  stringProp("Range start as ISO 8601 timestamp (default: now)"),
				"endTime":    stringProp("Range end as ISO 8601 timestamp (default: 7 days from start)"),
			}, "calendarId"),
		},
		Group:    GroupCalendars,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			calendarID, err := ReadString(input, "calendarId", true)
			if err != nil {
				return ErrorResult("list_calendar_events", err.Error()), nil
			}
			start := time.Now().UTC()
			if raw, _ := ReadString(input, "startTime", false); raw != "" {
				start, err = timeutil.ParseTimestamp(raw)
				if err != nil {
					return ErrorResultf("list_calendar_events", "bad startTime: %v", err), nil
				}
			}
			end := start.AddDate(0, 0, 7)
			if raw, _ := ReadString(input, "endTime", false); raw != "" {
				end, err = timeutil.ParseTimestamp(raw)
				if err != nil {
					return ErrorResultf("list_calendar_events", "bad endTime: %v", err), nil
				}
			}
			events, err := client.GetCalendarEvents(ctx, calendarID, start.UnixMilli(), end.UnixMilli())
			if err != nil {
				return ErrorResultf("list_calendar_events", "failed to fetch events: %v", err), nil
			}
			return JSONResult(map[string]any{"events": events}), nil
		},
	}
}
