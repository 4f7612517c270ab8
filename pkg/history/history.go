// Package history records the outcome of build passes.
//
// Each [Record] describes one run of a manifest: which systems were planned,
// which ran, and the error that stopped the pass if any. Records are kept in
// a [Store]; the CLI picks a [FileStore] under the user's data directory by
// default and a [RedisStore] when SYSBUILD_REDIS_URL is set.
//
// Only outcomes are recorded. The dependency graph itself is never stored.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
)

// DefaultTTL is how long records are kept when a store is created with a
// zero TTL.
const DefaultTTL = 30 * 24 * time.Hour

// Record is the outcome of one build pass.
type Record struct {
	ID         uuid.UUID `json:"id"`
	Manifest   string    `json:"manifest"`
	Digest     string    `json:"digest"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Planned    []string  `json:"planned"`
	Executed   []string  `json:"executed"`
	Failed     string    `json:"failed,omitempty"`
	Error      string    `json:"error,omitempty"`
	Code       string    `json:"code,omitempty"`
}

// NewRecord starts a record for a run of the manifest at path whose
// contents hash to digest.
func NewRecord(path, digest string) *Record {
	return &Record{
		ID:        uuid.New(),
		Manifest:  path,
		Digest:    digest,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the end time and captures err, if any.
func (r *Record) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.Error = errs.UserMessage(err)
		r.Code = string(errs.GetCode(err))
	}
}

// Succeeded reports whether the pass ran to completion.
func (r *Record) Succeeded() bool {
	return r.Error == "" && !r.FinishedAt.IsZero()
}

// Duration returns the wall time of the pass, or zero if unfinished.
func (r *Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists records.
type Store interface {
	// Save writes r, replacing any record with the same ID.
	Save(ctx context.Context, r *Record) error
	// Load returns the record with the given ID or a NOT_FOUND error.
	Load(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)
	// Delete removes a record. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// Close releases the store's resources.
	Close() error
}

// ParseID parses a run identifier given by a user.
func ParseID(s string) (uuid.UUID, error) {
	if err := errs.ValidateRunID(s); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid run id %q", s)
	}
	return id, nil
}

func notFound(id uuid.UUID) error {
	return errs.NewFor(errs.ErrCodeNotFound, id.String(), "no run with id %s", id)
}

// IsNotFound reports whether err means a record does not exist.
func IsNotFound(err error) bool { return errs.Is(err, errs.ErrCodeNotFound) }
