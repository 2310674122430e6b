package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Item is one visible pantry entry.
type Item struct {
	ProductID int        `json:"product_id"`
	Name      string     `json:"name"`
	Quantity  float64    `json:"quantity"`
	Unit      string     `json:"unit"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Snapshot produces a consistent, filtered view of the pantry. Storage
// trouble degrades to an empty view with a logged warning; it never surfaces
// a raw fault to callers.
type Snapshot struct {
	store Querier
	now   func() time.Time
}

func NewSnapshot(store Querier) *Snapshot {
	return &Snapshot{store: store, now: time.Now}
}

// FetchVisible returns every pantry item with a positive quantity that has
// not expired. Rows that fail to decode are skipped with a warning; partial
// results beat total failure.
func (s *Snapshot) FetchVisible(ctx context.Context) []Item {
	rows, err := s.store.Query(ctx, queryJoinedInventory)
	if err != nil {
		slog.Warn("SNAPSHOT: Inventory query failed, returning empty view", "error", err)
		return []Item{}
	}

	now := s.now()
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item, err := decodeRow(row)
		if err != nil {
			slog.Warn("SNAPSHOT: Skipping malformed inventory row", "error", err)
			continue
		}
		if item.Quantity <= 0 {
			continue
		}
		if item.ExpiresAt != nil && !item.ExpiresAt.After(now) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// QuantityOf reports the visible quantity for a product id.
func (s *Snapshot) QuantityOf(ctx context.Context, productID int) (float64, bool) {
	for _, item := range s.FetchVisible(ctx) {
		if item.ProductID == productID {
			return item.Quantity, true
		}
	}
	return 0, false
}

// ExistsByName reports whether a product with the exact name has an inventory row.
func (s *Snapshot) ExistsByName(ctx context.Context, name string) bool {
	rows, err := s.store.Query(ctx, queryProductExists, name)
	if err != nil {
		slog.Warn("SNAPSHOT: Existence query failed", "name", name, "error", err)
		return false
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return false
	}
	exists, _ := rows[0][0].(bool)
	return exists
}

// decodeRow validates one positional row against the join-select contract:
// (name, product_id, quantity, unit, expires_at).
func decodeRow(row []any) (Item, error) {
	if len(row) != 5 {
		return Item{}, fmt.Errorf("expected 5 columns, got %d", len(row))
	}

	name, ok := row[0].(string)
	if !ok {
		return Item{}, fmt.Errorf("column name: unexpected type %T", row[0])
	}
	productID, ok := toInt(row[1])
	if !ok {
		return Item{}, fmt.Errorf("column product_id: unexpected type %T", row[1])
	}
	quantity, ok := toFloat(row[2])
	if !ok {
		return Item{}, fmt.Errorf("column quantity: unexpected type %T", row[2])
	}
	unit, ok := row[3].(string)
	if !ok {
		return Item{}, fmt.Errorf("column unit: unexpected type %T", row[3])
	}
	expiresAt, err := toTime(row[4])
	if err != nil {
		return Item{}, fmt.Errorf("column expires_at: %w", err)
	}

	return Item{
		ProductID: productID,
		Name:      name,
		Quantity:  quantity,
		Unit:      unit,
		ExpiresAt: expiresAt,
	}, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, fmt.Errorf("unparseable timestamp %q", t)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
