package orders

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SubmittedOrder is one row of the local submission audit log.
type SubmittedOrder struct {
	ID             int       `json:"id"`
	ClientRef      string    `json:"client_ref"`
	OrderType      string    `json:"order_type"`
	Symbol         string    `json:"symbol"`
	Side           Side      `json:"side"`
	Quantity       float64   `json:"quantity"`
	Payload        string    `json:"payload"` // wire body as sent, JSON
	BackendOrderID string    `json:"backend_order_id,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// submittedOrdersColumns avoids SELECT * so schema changes fail loudly.
const submittedOrdersColumns = `id, client_ref, order_type, symbol, side, quantity, payload, backend_order_id, submitted_at`

// OrderRepository records accepted submissions in the local database.
type OrderRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewOrderRepository creates a new order audit repository
func NewOrderRepository(db *sql.DB, log zerolog.Logger) *OrderRepository {
	return &OrderRepository{
		db:  db,
		log: log.With().Str("repo", "submitted_orders").Logger(),
	}
}

// Create inserts an audit record for an accepted submission.
func (r *OrderRepository) Create(order SubmittedOrder) error {
	if order.ClientRef == "" {
		return fmt.Errorf("failed to record order: client_ref is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO submitted_orders
		(client_ref, order_type, symbol, side, quantity, payload, backend_order_id, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		order.ClientRef,
		order.OrderType,
		order.Symbol,
		string(order.Side),
		order.Quantity,
		order.Payload,
		nullString(order.BackendOrderID),
		order.SubmittedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}

	r.log.Info().
		Str("client_ref", order.ClientRef).
		Str("order_type", order.OrderType).
		Str("symbol", order.Symbol).
		Float64("quantity", order.Quantity).
		Msg("Order recorded")

	return nil
}

// History returns the most recent submissions, newest first.
func (r *OrderRepository) History(limit int) ([]SubmittedOrder, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT `+submittedOrdersColumns+` FROM submitted_orders
		ORDER BY submitted_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var orders []SubmittedOrder
	for rows.Next() {
		order, err := scanSubmittedOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanSubmittedOrder(rows *sql.Rows) (SubmittedOrder, error) {
	var order SubmittedOrder
	var side, submittedAt string
	var backendOrderID sql.NullString

	err := rows.Scan(
		&order.ID,
		&order.ClientRef,
		&order.OrderType,
		&order.Symbol,
		&side,
		&order.Quantity,
		&order.Payload,
		&backendOrderID,
		&submittedAt,
	)
	if err != nil {
		return order, fmt.Errorf("failed to scan order row: %w", err)
	}

	order.Side = Side(side)
	if backendOrderID.Valid {
		order.BackendOrderID = backendOrderID.String
	}
	if ts, err := time.Parse(time.RFC3339, submittedAt); err == nil {
		order.SubmittedAt = ts
	}

	return order, nil
}

// marshalPayload serializes the wire body for the audit log.
func marshalPayload(body map[string]interface{}) string {
	data, err := json.Marshal(body)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
