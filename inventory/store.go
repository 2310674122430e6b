package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Querier is the text-query execution capability the inventory components
// are built on. Query returns positional rows; Exec runs a mutation.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([][]any, error)
	Exec(ctx context.Context, query string, args ...any) error
}

// The fixed query shapes issued against the store. The join-select column
// order (name, product_id, quantity, unit, expires_at) is a positional
// contract; decodeRow depends on it.
const (
	queryJoinedInventory = `
		SELECT p.name, p.product_id, i.quantity::float8, p.unit, i.expires_at
		FROM product p
		JOIN inventory i ON p.product_id = i.product_id`

	queryProductExists = `
		SELECT EXISTS (
			SELECT 1
			FROM inventory i
			INNER JOIN product p ON i.product_id = p.product_id
			WHERE p.name = $1
		)`

	execDecrementByName = `
		UPDATE inventory
		SET quantity = quantity - $1
		WHERE product_id = (
			SELECT product_id FROM product WHERE name = $2
		)`

	execSetQuantityByID = `
		UPDATE inventory
		SET quantity = $1
		WHERE product_id = $2`
)

// MemoryRow is one joined product+inventory row held by MemoryStore.
type MemoryRow struct {
	Name      string
	ProductID int
	Quantity  float64
	Unit      string
	ExpiresAt *time.Time
}

// MemoryStore is a small in-memory Querier that understands the query shapes
// above. It backs tests and local runs without a database.
type MemoryStore struct {
	mu   sync.Mutex
	rows []MemoryRow

	QueryErr error
	ExecErr  error
}

func NewMemoryStore(rows ...MemoryRow) *MemoryStore {
	return &MemoryStore{rows: rows}
}

func (m *MemoryStore) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch query {
	case queryJoinedInventory:
		out := make([][]any, 0, len(m.rows))
		for _, r := range m.rows {
			var expires any
			if r.ExpiresAt != nil {
				expires = *r.ExpiresAt
			}
			out = append(out, []any{r.Name, r.ProductID, r.Quantity, r.Unit, expires})
		}
		return out, nil

	case queryProductExists:
		name, _ := args[0].(string)
		found := false
		for _, r := range m.rows {
			if r.Name == name {
				found = true
				break
			}
		}
		return [][]any{{found}}, nil

	default:
		return nil, fmt.Errorf("memory store: unsupported query shape")
	}
}

func (m *MemoryStore) Exec(ctx context.Context, query string, args ...any) error {
	if m.ExecErr != nil {
		return m.ExecErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch query {
	case execDecrementByName:
		amount, _ := toFloat(args[0])
		name, _ := args[1].(string)
		for i := range m.rows {
			if m.rows[i].Name == name {
				m.rows[i].Quantity -= amount
			}
		}
		return nil

	case execSetQuantityByID:
		qty, _ := toFloat(args[0])
		id, _ := toInt(args[1])
		for i := range m.rows {
			if m.rows[i].ProductID == id {
				m.rows[i].Quantity = qty
			}
		}
		return nil

	default:
		return fmt.Errorf("memory store: unsupported exec shape")
	}
}

// Rows returns a copy of the current table for assertions.
func (m *MemoryStore) Rows() []MemoryRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryRow, len(m.rows))
	copy(out, m.rows)
	return out
}
