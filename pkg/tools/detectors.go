package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/crm"
	"github.com/leadline/crm-mcp/pkg/inactivity"
)

const defaultThresholdDays = 30

func thresholdSchema() map[string]any {
	return map[string]any{
		"type":        "integer",
		"minimum":     inactivity.MinThresholdDays,
		"maximum":     inactivity.MaxThresholdDays,
		"description": "Days without activity before an entity is considered inactive (default 30)",
	}
}

// readThreshold reads thresholdDays, applying the default only when the
// parameter is absent. An explicit out-of-range value is the caller's
// mistake and is rejected, not silently replaced.
func readThreshold(input map[string]any) (int, error) {
	if _, present := input["thresholdDays"]; !present {
		return defaultThresholdDays, nil
	}
	days, err := ReadInt(input, "thresholdDays", true)
	if err != nil {
		return 0, err
	}
	return days, inactivity.ValidateThreshold(days)
}

// NewDetectInactiveContacts surveys every contact in the location and
// reports the ones with no recent activity across conversations,
// appointments, notes, and tasks.
func NewDetectInactiveContacts(client *crm.Client, log zerolog.Logger) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "detect_inactive_contacts",
			Description: "Scan all contacts in the location and report the ones with no conversation, appointment, note, or task activity within the threshold window. Long-running on large locations.",
			Annotations: &mcp.ToolAnnotations{Title: "Detect Inactive Contacts"},
			InputSchema: objectSchema(map[string]any{
				"thresholdDays": thresholdSchema(),
			}),
		},
		Group:    GroupReports,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			days, err := readThreshold(input)
			if err != nil {
				return ErrorResult("detect_inactive_contacts", err.Error()), nil
			}
			detector := inactivity.New(client, log)
			report, err := detector.DetectInactiveContacts(ctx, days)
			if err != nil {
				return ErrorResultf("detect_inactive_contacts", "scan failed: %v", err), nil
			}
			payload := map[string]any{
				"thresholdDays":        report.ThresholdDays,
				"totalContactsChecked": report.TotalChecked,
				"inactiveCount":        report.InactiveCount,
				"inactiveContacts":     report.Inactive,
				"errors":               report.Errors,
			}
			if len(report.Errors) > 0 {
				return PartialResult(payload, report.Errors), nil
			}
			return JSONResult(payload), nil
		},
	}
}

// NewDetectInactiveOpportunities surveys every opportunity in the location
// (optionally one pipeline stage) and reports the ones whose last status or
// stage change predates the threshold.
func NewDetectInactiveOpportunities(client *crm.Client, log zerolog.Logger) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "detect_inactive_opportunities",
			Description: "Scan opportunities in the location and report the ones with no status or stage change within the threshold window. Optionally restrict the scan to one pipeline stage.",
			Annotations: &mcp.ToolAnnotations{Title: "Detect Inactive Opportunities"},
			InputSchema: objectSchema(map[string]any{
				"thresholdDays":   thresholdSchema(),
				"pipelineStageId": stringProp("Restrict the scan to one pipeline stage (optional)"),
			}),
		},
		Group:    GroupReports,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			days, err := readThreshold(input)
			if err != nil {
				return ErrorResult("detect_inactive_opportunities", err.Error()), nil
			}
			stageID, _ := ReadString(input, "pipelineStageId", false)
			detector := inactivity.New(client, log)
			report, err := detector.DetectInactiveOpportunities(ctx, days, stageID)
			if err != nil {
				return ErrorResultf("detect_inactive_opportunities", "scan failed: %v", err), nil
			}
			payload := map[string]any{
				"thresholdDays":             report.ThresholdDays,
				"pipelineStageId":           stageID,
				"totalOpportunitiesChecked": report.TotalChecked,
				"inactiveCount":             report.InactiveCount,
				"inactiveOpportunities":     report.Inactive,
				"errors":                    report.Errors,
			}
			if len(report.Errors) > 0 {
				return PartialResult(payload, report.Errors), nil
			}
			return JSONResult(payload), nil
		},
	}
}
