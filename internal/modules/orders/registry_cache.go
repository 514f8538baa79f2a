package orders

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SQLDescriptorCache persists order-type descriptors in the local terminal
// database. Implements DescriptorCache.
type SQLDescriptorCache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLDescriptorCache creates a new descriptor cache backed by sqlite.
func NewSQLDescriptorCache(db *sql.DB, log zerolog.Logger) *SQLDescriptorCache {
	return &SQLDescriptorCache{
		db:  db,
		log: log.With().Str("repo", "order_type_cache").Logger(),
	}
}

// Save replaces the cached descriptors with the given set.
func (c *SQLDescriptorCache) Save(descriptors []Descriptor) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM order_type_cache"); err != nil {
		return fmt.Errorf("failed to clear order type cache: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	for _, d := range descriptors {
		parameters, err := json.Marshal(d.Parameters)
		if err != nil {
			return fmt.Errorf("failed to marshal parameters for %s: %w", d.Type, err)
		}

		_, err = tx.Exec(`
			INSERT INTO order_type_cache (type, name, description, parameters, use_case, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.Type, d.Name, d.Description, string(parameters), d.UseCase, now)
		if err != nil {
			return fmt.Errorf("failed to cache order type %s: %w", d.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache update: %w", err)
	}

	c.log.Debug().Int("count", len(descriptors)).Msg("Order type cache updated")
	return nil
}

// Load returns the cached descriptors, oldest schema first insertion order.
func (c *SQLDescriptorCache) Load() ([]Descriptor, error) {
	rows, err := c.db.Query(`
		SELECT type, name, description, parameters, use_case
		FROM order_type_cache
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query order type cache: %w", err)
	}
	defer rows.Close()

	var descriptors []Descriptor
	for rows.Next() {
		var d Descriptor
		var parameters string
		if err := rows.Scan(&d.Type, &d.Name, &d.Description, &parameters, &d.UseCase); err != nil {
			return nil, fmt.Errorf("failed to scan order type cache row: %w", err)
		}
		if err := json.Unmarshal([]byte(parameters), &d.Parameters); err != nil {
			c.log.Warn().Err(err).Str("type", d.Type).Msg("Skipping cache row with bad parameters")
			continue
		}
		descriptors = append(descriptors, d)
	}

	return descriptors, rows.Err()
}
