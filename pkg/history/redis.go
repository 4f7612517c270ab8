package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/observability"
)

// RedisStore keeps records in Redis. Each record is a JSON string with a TTL;
// a sorted set scored by start time indexes them for listing.
type RedisStore struct {
	client redis.UniversalClient
	keys   Keys
	ttl    time.Duration
	owned  bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeys sets the key namespace.
func WithKeys(k Keys) RedisOption {
	return func(s *RedisStore) { s.keys = k }
}

// NewRedisStore connects to the server at url (redis:// or rediss://) and
// checks the connection. A zero ttl means [DefaultTTL]; a negative ttl keeps
// records forever.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration, opts ...RedisOption) (*RedisStore, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid redis url")
	}
	client := redis.NewClient(o)
	err = RetryWithBackoff(ctx, func() error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", o.Addr, err)
	}
	s := NewRedisStoreWithClient(client, ttl, opts...)
	s.owned = true
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client. Close leaves the client
// open; the caller owns it.
func NewRedisStoreWithClient(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *RedisStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	s := &RedisStore{client: client, keys: NewKeys(""), ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the record and adds it to the index in one transaction.
func (s *RedisStore) Save(ctx context.Context, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	expiry := s.ttl
	if expiry < 0 {
		expiry = 0
	}

	err = RetryWithBackoff(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.keys.Run(r.ID), data, expiry)
			pipe.ZAdd(ctx, s.keys.Index(), redis.Z{
				Score:  float64(r.StartedAt.UnixMilli()),
				Member: r.ID.String(),
			})
			return nil
		})
		return transient(err)
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	observability.Store().OnRecordSaved(ctx, "redis", len(data))
	return nil
}

// Load fetches one record.
func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.keys.Run(id)).Bytes()
		return transient(err)
	})
	if errors.Is(err, redis.Nil) {
		observability.Store().OnRecordMissing(ctx, "redis")
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "decode run %s", id)
	}
	observability.Store().OnRecordLoaded(ctx, "redis")
	return &r, nil
}

// List returns the newest records. Index entries whose record has expired
// are pruned on the way, so a page may come back shorter than limit.
func (s *RedisStore) List(ctx context.Context, limit int) ([]*Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	var ids []string
	err := RetryWithBackoff(ctx, func() error {
		var err error
		ids, err = s.client.ZRevRange(ctx, s.keys.Index(), 0, stop).Result()
		return transient(err)
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "corrupt run index entry %q", id)
		}
		keys[i] = s.keys.Run(parsed)
	}

	var values []any
	err = RetryWithBackoff(ctx, func() error {
		var err error
		values, err = s.client.MGet(ctx, keys...).Result()
		return transient(err)
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	records := make([]*Record, 0, len(values))
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			stale = append(stale, ids[i])
			continue
		}
		records = append(records, &r)
	}
	if len(stale) > 0 {
		_ = s.client.ZRem(ctx, s.keys.Index(), stale...).Err()
	}

	sortNewestFirst(records)
	return records, nil
}

// Delete removes the record and its index entry.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.keys.Run(id))
			pipe.ZRem(ctx, s.keys.Index(), id.String())
			return nil
		})
		return transient(err)
	})
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}

// Close closes the client if the store opened it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
