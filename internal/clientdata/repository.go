// Package clientdata provides persistent caching for data derived from
// external API responses. Values are stored as msgpack blobs with expiration
// timestamps for cache-first behavior.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// TableRoadmaps holds computed roadmaps keyed by filter configuration.
const TableRoadmaps = "roadmaps"

// AllTables lists all tables in cache.db for cleanup operations.
var AllTables = []string{
	TableRoadmaps,
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for client data.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := r.now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (key, data, expires_at) VALUES (?, ?, ?)",
		table,
	)

	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh decodes the stored value into dest if expires_at > now.
// Returns false, nil if the key doesn't exist or the data is expired.
func (r *Repository) GetIfFresh(table, key string, dest interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		"SELECT data FROM %s WHERE key = ? AND expires_at > ?",
		table,
	)

	var blob []byte
	err := r.db.QueryRow(query, key, r.now().Unix()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get data from %s: %w", table, err)
	}

	if err := msgpack.Unmarshal(blob, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal data from %s: %w", table, err)
	}

	return true, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE key = ?", table)

	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return nil
}

// Count returns the number of fresh and expired rows in a table.
func (r *Repository) Count(table string) (fresh int64, expired int64, err error) {
	if err := validateTable(table); err != nil {
		return 0, 0, err
	}

	query := fmt.Sprintf(
		"SELECT COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0), COALESCE(SUM(CASE WHEN expires_at > ? THEN 0 ELSE 1 END), 0) FROM %s",
		table,
	)
	now := r.now().Unix()
	if err := r.db.QueryRow(query, now, now).Scan(&fresh, &expired); err != nil {
		return 0, 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return fresh, expired, nil
}

// DeleteExpired removes all rows where expires_at < now.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)

	result, err := r.db.Exec(query, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}

	return deleted, nil
}

// DeleteAllExpired removes all expired entries from all tables.
// Returns a map of table name to number of rows deleted.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64)

	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table)
		if err != nil {
			return results, fmt.Errorf("failed to delete expired from %s: %w", table, err)
		}
		results[table] = deleted
	}

	return results, nil
}
