package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// NewSearchConversations lists a contact's conversation threads.
func NewSearchConversations(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "search_conversations",
			Description: "List a contact's conversation threads, newest activity first.",
			Annotations: &mcp.ToolAnnotations{Title: "Search Conversations"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
				"limit":     intProp("Maximum number of conversations to return (default 20, max 100)"),
			}, "contactId"),
		},
		Group:    GroupConversations,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("search_conversations", err.Error()), nil
			}
			limit := ReadIntDefault(input, "limit", 20)
			if limit > 100 {
				limit = 100
			}
			conversations, err := client.SearchConversations(ctx, contactID, limit)
			if err != nil {
				return ErrorResultf("search_conversations", "failed to search conversations: %v", err), nil
			}
			return JSONResult(map[string]any{"conversations": conversations}), nil
		},
	}
}

// NewSendMessage sends an outbound message to a contact.
func NewSendMessage(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "send_message",
			Description: "Send an outbound SMS or Email message to a contact.",
			Annotations: &mcp.ToolAnnotations{Title: "Send Message"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
				"channel": map[string]any{
					"type":        "string",
					"enum":        []string{"SMS", "Email"},
					"description": "Delivery channel",
				},
				"message": stringProp("Message body"),
			}, "contactId", "channel", "message"),
		},
		Group: GroupConversations,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("send_message", err.Error()), nil
			}
			channel, err := ReadString(input, "channel", true)
			if err != nil {
				return ErrorResult("send_message", err.Error()), nil
			}
			if channel != "SMS" && channel != "Email" {
				return ErrorResultf("send_message", "invalid channel %q, must be SMS or Email", channel), nil
			}
			message, err := ReadString(input, "message", true)
			if err != nil {
				return ErrorResult("send_message", err.Error()), nil
			}
			messageID, err := client.SendMessage(ctx, contactID, channel, message)
			if err != nil {
				return ErrorResultf("send_message", "failed to send message: %v", err), nil
			}
			return JSONResult(map[string]any{"messageId": messageID, "contactId": contactID}), nil
		},
	}
}
