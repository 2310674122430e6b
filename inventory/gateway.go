package inventory

import (
	"context"
	"log/slog"
)

// Gateway applies validated stock changes. Storage failures are converted to
// a false return and never raised past this boundary.
type Gateway struct {
	store Querier
}

func NewGateway(store Querier) *Gateway {
	return &Gateway{store: store}
}

// DecrementQuantity subtracts amount from the product's current quantity,
// resolved by exact name match. There is no floor check: the stored quantity
// may go negative.
func (g *Gateway) DecrementQuantity(ctx context.Context, name string, amount float64) bool {
	if err := g.store.Exec(ctx, execDecrementByName, amount, name); err != nil {
		slog.Warn("GATEWAY: Failed to decrement quantity", "name", name, "amount", amount, "error", err)
		return false
	}
	slog.Info("GATEWAY: Decremented quantity", "name", name, "amount", amount)
	return true
}

// SetQuantity overwrites the product's quantity absolutely. This is the
// agent-facing stock_set semantic, distinct from DecrementQuantity.
func (g *Gateway) SetQuantity(ctx context.Context, productID int, quantity float64) bool {
	if err := g.store.Exec(ctx, execSetQuantityByID, quantity, productID); err != nil {
		slog.Warn("GATEWAY: Failed to set quantity", "product_id", productID, "quantity", quantity, "error", err)
		return false
	}
	slog.Info("GATEWAY: Set quantity", "product_id", productID, "quantity", quantity)
	return true
}

// ExistsByName reports whether a product with the exact name has an inventory row.
func (g *Gateway) ExistsByName(ctx context.Context, name string) bool {
	rows, err := g.store.Query(ctx, queryProductExists, name)
	if err != nil {
		slog.Warn("GATEWAY: Existence query failed", "name", name, "error", err)
		return false
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return false
	}
	exists, _ := rows[0][0].(bool)
	return exists
}
