package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leadline/crm-mcp/pkg/crm"
)

// NewListProducts lists the tenant's products.
func NewListProducts(client *crm.Client) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "list_products",
			Description: "List the location's products.",
			Annotations: &mcp.ToolAnnotations{Title: "List Products"},
			InputSchema: objectSchema(map[string]any{
				"limit": intProp("Maximum number of products to return (default 20)"),
			}),
		},
		Group:    GroupProducts,
		ReadOnly: true,
		Execute: func(ctx context.Context, input map[string]any) (*Result, error) {
			limit := ReadIntDefault(input, "limit", 20)
			products, err := client.ListProducts(ctx, limit)
			if err != nil {
				return ErrorResultf("list_products", "failed to fetch products: %v", err), nil
			}
			return JSONResult(map[string]any{"products": products}), nil
		},
	}
}
