// Package idgen generates record ids for data providers that do not rely on
// the database to assign them.
package idgen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator produces new record ids.
type Generator interface {
	// Generate returns a new id. An empty id asks the storage layer to assign
	// one itself.
	Generate(ctx context.Context) (string, error)
	// Size returns the storage width an id of this type needs.
	Size() int
}

// UUIDSize is the length of a canonical textual UUID.
const UUIDSize = 36

// DefaultUUIDQuery is the MySQL flavoured query the Database generator runs.
const DefaultUUIDQuery = "SELECT UUID() AS id"

// UUID generates random version 4 UUIDs in process.
type UUID struct{}

// Generate implements Generator.
func (UUID) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("idgen: new uuid: %w", err)
	}
	return id.String(), nil
}

// Size implements Generator.
func (UUID) Size() int {
	return UUIDSize
}

// Database asks the database for a UUID.
type Database struct {
	db    *sql.DB
	query string
}

// NewDatabase constructs a generator using db. An empty query falls back to
// DefaultUUIDQuery.
func NewDatabase(db *sql.DB, query string) *Database {
	if strings.TrimSpace(query) == "" {
		query = DefaultUUIDQuery
	}
	return &Database{db: db, query: query}
}

// Generate implements Generator.
func (d *Database) Generate(ctx context.Context) (string, error) {
	if d == nil || d.db == nil {
		return "", errors.New("idgen: database is nil")
	}
	var id string
	if err := d.db.QueryRowContext(ctx, d.query).Scan(&id); err != nil {
		return "", fmt.Errorf("idgen: query uuid: %w", err)
	}
	return id, nil
}

// Size implements Generator.
func (d *Database) Size() int {
	return UUIDSize
}

// AutoIncrement leaves id assignment to the storage layer.
type AutoIncrement struct{}

// Generate implements Generator.
func (AutoIncrement) Generate(context.Context) (string, error) {
	return "", nil
}

// Size implements Generator.
func (AutoIncrement) Size() int {
	return 10
}
