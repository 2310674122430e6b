package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recomendachef/inventory"
)

type inventoryFetcher interface {
	FetchVisible(ctx context.Context) []inventory.Item
}

type InventoryGet struct{ snapshot inventoryFetcher }

func NewInventoryGet(snapshot inventoryFetcher) *InventoryGet {
	return &InventoryGet{snapshot: snapshot}
}

func (t *InventoryGet) Name() string  { return "inventory_get" }
func (t *InventoryGet) Title() string { return "List Inventory" }
func (t *InventoryGet) Description() string {
	return "Lists every visible pantry item: positive quantity and not expired."
}

func (t *InventoryGet) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

func (t *InventoryGet) OutputSchema() *jsonschema.Schema {
	minQty := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"inventory": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"product_id": {Type: "integer"},
						"name":       {Type: "string"},
						"quantity":   {Type: "number", Minimum: &minQty},
						"unit":       {Type: "string"},
						"expires_at": {Type: "string"},
					},
					Required: []string{"product_id", "name", "quantity", "unit"},
				},
			},
		},
		Required: []string{"inventory"},
	}
}

func (t *InventoryGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	items := t.snapshot.FetchVisible(ctx)

	b, err := json.Marshal(map[string]any{"inventory": items})
	if err != nil {
		return nil, fmt.Errorf("inventory get: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("inventory get: %w", err)
	}
	return m, nil
}
