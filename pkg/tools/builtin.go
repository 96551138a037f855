package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// BuildRegistry assembles the full tool set for one connection's CRM
// client. The registry is complete after this call; nothing registers
// tools later.
func BuildRegistry(client *crm.Client, log zerolog.Logger) *Registry {
	registry := NewRegistry()
	for _, tool := range []*Tool{
		NewGetContact(client),
		NewSearchContacts(client),
		NewCreateContact(client),
		NewUpdateContact(client),
		NewDeleteContact(client),
		NewCreateContactNote(client),
		NewCreateContactTask(client),
		NewSearchOpportunities(client),
		NewGetOpportunity(client),
		NewUpdateOpportunityStatus(client),
		NewGetPipelines(client),
		NewSearchConversations(client),
		NewSendMessage(client),
		NewListCalendars(client),
		NewListCalendarEvents(client),
		NewListProducts(client),
		NewDetectInactiveContacts(client, log),
		NewDetectInactiveOpportunities(client, log),
	} {
		registry.Register(tool)
	}
	registry.Register(NewListTools(registry))
	return registry
}

// NewListTools describes the registry itself: every tool with its group and
// read-only flag, plus the group catalog.
func NewListTools(registry *Registry) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "list_tools",
			Description: "List the available CRM tools with their groups and read-only flags.",
			Annotations: &mcp.ToolAnnotations{Title: "List Tools"},
			InputSchema: objectSchema(map[string]any{}),
		},
		ReadOnly: true,
		Execute: func(_ context.Context, _ map[string]any) (*Result, error) {
			groups := make(map[string][]string)
			for _, group := range registry.Groups() {
				groups[group] = registry.ToolsInGroup(group)
			}
			return JSONResult(map[string]any{
				"tools":  registry.Infos(),
				"groups": groups,
			}), nil
		},
	}
}
