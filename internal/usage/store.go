package usage

import (
	"context"

	"github.com/google/uuid"
)

// Store persists usage records. The enforcer is the only writer for a given
// user's record; all mutations go through a read-check-Save cycle guarded by
// the record's version.
type Store interface {
	// Get returns the user's record, or (nil, nil) when none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*Record, error)

	// Create inserts a fresh record. It is idempotent under concurrent
	// first-calls for the same user: losing the insert race is not an error,
	// and exactly one record exists afterwards.
	Create(ctx context.Context, rec *Record) error

	// Save persists the record if and only if the stored version still
	// matches rec.Version, then bumps rec.Version. A lost race returns
	// ErrVersionConflict with nothing written.
	Save(ctx context.Context, rec *Record) error
}
