// Package store keeps generated city snapshots under their run ID so they can
// be listed, inspected and deleted later.
//
// Backends:
//   - [MemoryStore]: process-local, for tests and one-shot runs
//   - [FileStore]: one JSON file per snapshot (CLI default)
//   - [MongoStore]: a MongoDB collection, shared between machines
//
// Unlike the cache, a store never expires entries and is addressed by run ID
// rather than by the inputs of the run.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cityio "github.com/matzehuels/streetblock/pkg/io"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no snapshot has the requested ID.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidID is returned for an empty ID or one that is not a plain name.
	ErrInvalidID = errors.New("invalid snapshot id")
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save inserts or replaces the snapshot with c.ID.
	Save(ctx context.Context, c *cityio.City) error

	// Load returns the snapshot with id, or ErrNotFound.
	Load(ctx context.Context, id string) (*cityio.City, error)

	// Delete removes the snapshot with id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List summarizes all snapshots ordered by ID.
	List(ctx context.Context) ([]Summary, error)

	Close() error
}

// Summary describes a stored snapshot without its geometry.
type Summary struct {
	ID         string
	Seed       uint64
	Generation int
	Points     int
	Cells      int
}

// Summarize returns the summary of c.
func Summarize(c *cityio.City) Summary {
	return Summary{
		ID:         c.ID,
		Seed:       c.Seed,
		Generation: c.Generation,
		Points:     len(c.Points),
		Cells:      len(c.Cells),
	}
}

func checkID(id string) error {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
