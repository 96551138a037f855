// Package tools provides the CRM tool system exposed over MCP: tool
// definitions wrapping REST calls, a per-connection registry, and an
// executor with read-only enforcement.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool wraps an MCP tool with execution logic and metadata.
type Tool struct {
	mcp.Tool          // Name, Description, InputSchema
	Group    string   // group:contacts, group:opportunities, etc.
	ReadOnly bool     // true for tools that never mutate CRM data
	Execute  func(ctx context.Context, input map[string]any) (*Result, error)
}

// Tool groups.
const (
	GroupContacts      = "group:contacts"
	GroupOpportunities = "group:opportunities"
	GroupConversations = "group:conversations"
	GroupCalendars     = "group:calendars"
	GroupProducts      = "group:products"
	GroupReports       = "group:reports"
)

// Result standardizes tool output.
type Result struct {
	Status  ResultStatus   `json:"status"`            // success, error, partial
	Content []ContentBlock `json:"content,omitempty"` // text blocks
	Details map[string]any `json:"details,omitempty"` // structured metadata
	Error   string         `json:"error,omitempty"`
}

// Text returns the text content from the result, or the error message if
// the status is error.
func (r *Result) Text() string {
	if r.Status == ResultError && r.Error != "" {
		return r.Error
	}
	for _, block := range r.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return ""
}

// IsError returns true if the result indicates an error.
func (r *Result) IsError() bool {
	return r.Status == ResultError
}

// ContentBlock is one piece of result content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ResultStatus indicates the outcome of tool execution.
type ResultStatus string

const (
	// ResultSuccess indicates the tool completed successfully.
	ResultSuccess ResultStatus = "success"
	// ResultError indicates the tool failed with an error.
	ResultError ResultStatus = "error"
	// ResultPartial indicates partial success with some errors.
	ResultPartial ResultStatus = "partial"
)

// ToolInfo provides metadata about a tool for listing.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group,omitempty"`
	ReadOnly    bool   `json:"readOnly"`
}
