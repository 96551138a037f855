package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/crm"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	client := crm.New("http://crm.test", "tok", "loc-1", zerolog.Nop())
	return BuildRegistry(client, zerolog.Nop())
}

func TestBuildRegistryCompleteness(t *testing.T) {
	registry := newTestRegistry(t)

	for _, name := range []string{
		"get_contact", "search_contacts", "create_contact", "update_contact",
		"delete_contact", "create_contact_note", "create_contact_task",
		"search_opportunities", "get_opportunity", "update_opportunity_status",
		"get_pipelines", "search_conversations", "send_message",
		"list_calendars", "list_calendar_events", "list_products",
		"detect_inactive_contacts", "detect_inactive_opportunities",
		"list_tools",
	} {
		if !registry.Has(name) {
			t.Fatalf("tool %s not registered", name)
		}
	}
	if got := len(registry.All()); got != 19 {
		t.Fatalf("expected 19 tools, got %d", got)
	}
}

func TestRegistryGroupsAndInfos(t *testing.T) {
	registry := newTestRegistry(t)

	groups := registry.Groups()
	want := []string{
		GroupCalendars, GroupContacts, GroupConversations,
		GroupOpportunities, GroupProducts, GroupReports,
	}
	if len(groups) != len(want) {
		t.Fatalf("got groups %v, want %v", groups, want)
	}
	for i, group := range want {
		if groups[i] != group {
			t.Fatalf("got groups %v, want %v", groups, want)
		}
	}

	infos := registry.Infos()
	if len(infos) != len(registry.All()) {
		t.Fatalf("expected one info per tool, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Name == "" || info.Description == "" {
			t.Fatalf("incomplete info: %+v", info)
		}
	}
}

func TestListToolsTool(t *testing.T) {
	registry := newTestRegistry(t)
	tool := registry.Get("list_tools")
	if tool == nil || !tool.ReadOnly {
		t.Fatal("list_tools must be registered and read-only")
	}

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError() {
		t.Fatalf("unexpected error result: %s", res.Text())
	}

	var payload struct {
		Tools  []ToolInfo          `json:"tools"`
		Groups map[string][]string `json:"groups"`
	}
	if err := json.Unmarshal([]byte(res.Text()), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if len(payload.Tools) != 19 {
		t.Fatalf("expected 19 tools in listing, got %d", len(payload.Tools))
	}
	if len(payload.Groups[GroupReports]) != 2 {
		t.Fatalf("unexpected report group contents: %v", payload.Groups[GroupReports])
	}
}
