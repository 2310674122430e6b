package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type stockSetter interface {
	SetQuantity(ctx context.Context, productID int, quantity float64) bool
}

// StockSet overwrites quantities absolutely. This is deliberately distinct
// from the conversational flow, which subtracts from current stock.
type StockSet struct{ gateway stockSetter }

func NewStockSet(gateway stockSetter) *StockSet { return &StockSet{gateway: gateway} }

func (t *StockSet) Name() string  { return "stock_set" }
func (t *StockSet) Title() string { return "Set Stock Quantities" }
func (t *StockSet) Description() string {
	return "Sets the absolute stock quantity for a batch of products by product_id. This replaces the stored quantity, it does not add or subtract."
}

func (t *StockSet) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"items": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"product_id": {Type: "integer"},
						"quantity":   {Type: "number"},
					},
					Required: []string{"product_id", "quantity"},
				},
			},
		},
		Required: []string{"items"},
	}
}

func (t *StockSet) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"results": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"product_id": {Type: "integer"},
						"quantity":   {Type: "number"},
						"ok":         {Type: "boolean"},
					},
					Required: []string{"product_id", "quantity", "ok"},
				},
			},
			"updated": {Type: "integer"},
		},
		Required: []string{"results", "updated"},
	}
}

func (t *StockSet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	raw, ok := input["items"].([]any)
	if !ok {
		return nil, fmt.Errorf("stock set: missing or malformed items list")
	}

	results := make([]any, 0, len(raw))
	updated := 0
	for i, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("stock set: item %d is not an object", i)
		}
		id, ok := item["product_id"].(float64)
		if !ok {
			return nil, fmt.Errorf("stock set: item %d has no numeric product_id", i)
		}
		qty, ok := item["quantity"].(float64)
		if !ok {
			return nil, fmt.Errorf("stock set: item %d has no numeric quantity", i)
		}

		applied := t.gateway.SetQuantity(ctx, int(id), qty)
		if applied {
			updated++
		}
		results = append(results, map[string]any{
			"product_id": id,
			"quantity":   qty,
			"ok":         applied,
		})
	}

	return map[string]any{
		"results": results,
		"updated": float64(updated),
	}, nil
}
