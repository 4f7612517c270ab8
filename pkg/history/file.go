package history

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/sysbuild/pkg/observability"
)

// FileStore keeps records as JSON files below a directory.
// Each file wraps the record with an expiry time.
type FileStore struct {
	dir string
	ttl time.Duration
}

// NewFileStore creates a file store in dir, creating the directory if needed.
// A zero ttl means [DefaultTTL]; a negative ttl keeps records forever.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &FileStore{dir: dir, ttl: ttl}, nil
}

// Dir returns the directory records are stored in.
func (s *FileStore) Dir() string { return s.dir }

// fileEntry wraps a record with metadata.
type fileEntry struct {
	Record    *Record   `json:"record"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Save writes r to disk.
func (s *FileStore) Save(ctx context.Context, r *Record) error {
	entry := fileEntry{Record: r}
	if s.ttl > 0 {
		entry.ExpiresAt = time.Now().Add(s.ttl)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	path := s.path(r.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// Write to a temp file first so readers never see a partial record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	observability.Store().OnRecordSaved(ctx, "file", len(data))
	return nil
}

// Load reads the record with the given ID.
func (s *FileStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	r, ok, err := s.read(s.path(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.Store().OnRecordMissing(ctx, "file")
		return nil, notFound(id)
	}
	observability.Store().OnRecordLoaded(ctx, "file")
	return r, nil
}

// List walks the store directory and returns unexpired records, newest first.
func (s *FileStore) List(ctx context.Context, limit int) ([]*Record, error) {
	var records []*Record
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		r, ok, err := s.read(path)
		if err != nil {
			return err
		}
		if ok {
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes a record.
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// read loads one entry file. Corrupt and expired entries are removed and
// reported as missing.
func (s *FileStore) read(path string) (*Record, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Record == nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Record, true, nil
}

// path maps a run ID to a file path. The first two hash characters pick a
// subdirectory so no single directory grows too large.
func (s *FileStore) path(id uuid.UUID) string {
	hash := Hash(id[:])
	return filepath.Join(s.dir, hash[:2], id.String()+".json")
}

func sortNewestFirst(records []*Record) {
	slices.SortStableFunc(records, func(a, b *Record) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

var _ Store = (*FileStore)(nil)
