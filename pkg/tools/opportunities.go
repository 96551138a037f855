package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// NewSearchOpportunities fetches one page of the tenant's opportunities.
func NewSearchOpportunities(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "search_opportunities",
			Description: "List opportunities for the current location, optionally filtered to one pipeline stage.",
			Annotations: &mcp.ToolAnnotations{Title: "Search Opportunities"},
			InputSchema: objectSchema(map[string]any{
				"pipelineStageId": stringProp("Restrict results to one pipeline stage (optional)"),
				"limit":           intProp("Maximum number of opportunities to return (default 20, max 100)"),
			}),
		},
		Group:    GroupOpportunities,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			stageID, _ := ReadString(input, "pipelineStageId", false)
			limit := ReadIntDefault(input, "limit", 20)
			if limit > 100 {
				limit = 100
			}
			resp, err := client.SearchOpportunities(ctx, limit, stageID, crm.OpportunityPage{})
			if err != nil {
				return ErrorResultf("search_opportunities", "failed to search opportunities: %v", err), nil
			}
			return JSONResult(map[string]any{
				"opportunities": resp.Opportunities,
				"total":         resp.Meta.Total,
			}), nil
		},
	}
}

// NewGetOpportunity fetches a single opportunity by id.
func NewGetOpportunity(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "get_opportunity",
			Description: "Fetch a single opportunity by its id.",
			Annotations: &mcp.ToolAnnotations{Title: "Get Opportunity"},
			InputSchema: objectSchema(map[string]any{
				"opportunityId": stringProp("The opportunity id"),
			}, "opportunityId"),
		},
		Group:    GroupOpportunities,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			opportunityID, err := ReadString(input, "opportunityId", true)
			if err != nil {
				return ErrorResult("get_opportunity", err.Error()), nil
			}
			opp, err := client.GetOpportunity(ctx, opportunityID)
			if err != nil {
				return ErrorResultf("get_opportunity", "failed to fetch opportunity: %v", err), nil
			}
			return JSONResult(opp), nil
		},
	}
}

// NewUpdateOpportunityStatus changes an opportunity's status.
func NewUpdateOpportunityStatus(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "update_opportunity_status",
			Description: "Set an opportunity's status to open, won, lost, or abandoned.",
			Annotations: &mcp.ToolAnnotations{Title: "Update Opportunity Status"},
			InputSchema: objectSchema(map[string]any{
				"opportunityId": stringProp("The opportunity id"),
				"status": map[string]any{
					"type":        "string",
					"enum":        []string{"open", "won", "lost", "abandoned"},
					"description": "The new status",
				},
			}, "opportunityId", "status"),
		},
		Group: GroupOpportunities,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			opportunityID, err := ReadString(input, "opportunityId", true)
			if err != nil {
				return ErrorResult("update_opportunity_status", err.Error()), nil
			}
			status, err := ReadString(input, "status", true)
			if err != nil {
				return ErrorResult("update_opportunity_status", err.Error()), nil
			}
			switch status {
			case "open", "won", "lost", "abandoned":
			default:
				return ErrorResultf("update_opportunity_status", "invalid status %q", status), nil
			}
			if err := client.UpdateOpportunityStatus(ctx, opportunityID, status); err != nil {
				return ErrorResultf("update_opportunity_status", "failed to update status: %v", err), nil
			}
			return JSONResult(map[string]any{"opportunityId": opportunityID, "status": status}), nil
		},
	}
}

// NewGetPipelines lists the tenant's sales pipelines and stages.
func NewGetPipelines(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "get_pipelines",
			Description: "List the location's sales pipelines with their stages. Stage ids can be used to filter opportunity searches.",
			Annotations: &mcp.ToolAnnotations{Title: "Get Pipelines"},
			InputSchema: objectSchema(map[string]any{}),
		},
		Group:    GroupOpportunities,
		ReadOnly: true,
		Execute: func(ctx context.Context, _ map[string]any) (*Result, error) {
			pipelines, err := client.GetPipelines(ctx)
			if err != nil {
				return ErrorResultf("get_pipelines", "failed to fetch pipelines: %v", err), nil
			}
			return JSONResult(map[string]any{"pipelines": pipelines}), nil
		},
	}
}
