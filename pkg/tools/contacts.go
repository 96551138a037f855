package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// NewGetContact fetches a single contact by id.
func NewGetContact(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "get_contact",
			Description: "Fetch a single CRM contact by its id, including all profile fields.",
			Annotations: &mcp.ToolAnnotations{Title: "Get Contact"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
			}, "contactId"),
		},
		Group:    GroupContacts,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("get_contact", err.Error()), nil
			}
			contact, err := client.GetContact(ctx, contactID)
			if err != nil {
				return ErrorResultf("get_contact", "failed to fetch contact: %v", err), nil
			}
			return JSONResult(contact), nil
		},
	}
}

// NewSearchContacts fetches one page of the tenant's contacts.
func NewSearchContacts(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "search_contacts",
			Description: "List contacts for the current location. Returns up to `limit` contacts (default 20, max 100).",
			Annotations: &mcp.ToolAnnotations{Title: "Search Contacts"},
			InputSchema: objectSchema(map[string]any{
				"limit": intProp("Maximum number of contacts to return (default 20, max 100)"),
			}),
		},
		Group:    GroupContacts,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			limit := ReadIntDefault(input, "limit", 20)
			if limit > 100 {
				limit = 100
			}
			resp, err := client.SearchContacts(ctx, limit, nil)
			if err != nil {
				return ErrorResultf("search_contacts", "failed to search contacts: %v", err), nil
			}
			return JSONResult(map[string]any{
				"contacts": resp.Contacts,
				"total":    resp.Total,
			}), nil
		},
	}
}

// NewCreateContact creates a contact from the given profile fields.
func NewCreateContact(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "create_contact",
			Description: "Create a new contact. Pass profile fields like firstName, lastName, email, phone in the `fields` object.",
			Annotations: &mcp.ToolAnnotations{Title: "Create Contact"},
			InputSchema: objectSchema(map[string]any{
				"fields": objectProp("Profile fields for the new contact (firstName, lastName, email, phone, ...)"),
			}, "fields"),
		},
		Group: GroupContacts,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			fields, err := ReadMap(input, "fields", true)
			if err != nil {
				return ErrorResult("create_contact", err.Error()), nil
			}
			contact, err := client.CreateContact(ctx, fields)
			if err != nil {
				return ErrorResultf("create_contact", "failed to create contact: %v", err), nil
			}
			return JSONResult(contact), nil
		},
	}
}

// NewUpdateContact updates profile fields on an existing contact.
func NewUpdateContact(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "update_contact",
			Description: "Update profile fields on an existing contact. Only the fields provided are changed.",
			Annotations: &mcp.ToolAnnotations{Title: "Update Contact"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
				"fields":    objectProp("Profile fields to update"),
			}, "contactId", "fields"),
		},
		Group: GroupContacts,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("update_contact", err.Error()), nil
			}
			fields, err := ReadMap(input, "fields", true)
			if err != nil {
				return ErrorResult("update_contact", err.Error()), nil
			}
			contact, err := client.UpdateContact(ctx, contactID, fields)
			if err != nil {
				return ErrorResultf("update_contact", "failed to update contact: %v", err), nil
			}
			return JSONResult(contact), nil
		},
	}
}

// NewDeleteContact removes a contact.
func NewDeleteContact(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "delete_contact",
			Description: "Permanently delete a contact from the CRM.",
			Annotations: &mcp.ToolAnnotations{Title: "Delete Contact"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
			}, "contactId"),
		},
		Group: GroupContacts,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("delete_contact", err.Error()), nil
			}
			if err := client.DeleteContact(ctx, contactID); err != nil {
				return ErrorResultf("delete_contact", "failed to delete contact: %v", err), nil
			}
			return JSONResult(map[string]any{"deleted": true, "contactId": contactID}), nil
		},
	}
}

// NewCreateContactNote attaches a note to a contact.
func NewCreateContactNote(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "create_contact_note",
			Description: "Attach a free-form note to a contact.",
			Annotations: &mcp.ToolAnnotations{Title: "Create Contact Note"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
				"body":      stringProp("Note text"),
			}, "contactId", "body"),
		},
		Group: GroupContacts,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("create_contact_note", err.Error()), nil
			}
			body, err := ReadString(input, "body", true)
			if err != nil {
				return ErrorResult("create_contact_note", err.Error()), nil
			}
			note, err := client.CreateNote(ctx, contactID, body)
			if err != nil {
				return ErrorResultf("create_contact_note", "failed to create note: %v", err), nil
			}
			return JSONResult(note), nil
		},
	}
}

// NewCreateContactTask attaches a task to a contact.
func NewCreateContactTask(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "create_contact_task",
			Description: "Create a task for a contact. dueDate is an ISO 8601 timestamp and may be omitted.",
			Annotations: &mcp.ToolAnnotations{Title: "Create Contact Task"},
			InputSchema: objectSchema(map[string]any{
				"contactId": stringProp("The contact id"),
				"title":     stringProp("Task title"),
				"body":      stringProp("Task description"),
				"dueDate":   stringProp("Due date as ISO 8601 timestamp (optional)"),
			}, "contactId", "title"),
		},
		Group: GroupContacts,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			contactID, err := ReadString(input, "contactId", true)
			if err != nil {
				return ErrorResult("create_contact_task", err.Error()), nil
			}
			title, err := ReadString(input, "title", true)
			if err != nil {
				return ErrorResult("create_contact_task", err.Error()), nil
			}
			body, _ := ReadString(input, "body", false)
			dueDate, _ := ReadString(input, "dueDate", false)
			task, err := client.CreateTask(ctx, contactID, title, body, dueDate)
			if err != nil {
				return ErrorResultf("create_contact_task", "failed to create task: %v", err), nil
			}
			return JSONResult(task), nil
		},
	}
}
