package history

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix namespaces every key the Redis store writes.
const DefaultPrefix = "sysbuild:"

// Keys generates Redis keys under a prefix, so several projects or users can
// share one Redis database without seeing each other's runs.
//
//	keys := NewKeys("sysbuild:team-a:")
//	keys.Run(id)  // "sysbuild:team-a:run:<id>"
//	keys.Index()  // "sysbuild:team-a:runs"
type Keys struct {
	prefix string
}

// NewKeys creates a key generator. An empty prefix means [DefaultPrefix].
// A missing trailing colon is added.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return Keys{prefix: prefix}
}

// Prefix returns the namespace prefix.
func (k Keys) Prefix() string { return k.prefix }

// Run returns the key holding one record.
func (k Keys) Run(id uuid.UUID) string {
	return k.prefix + "run:" + id.String()
}

// Index returns the key of the sorted set that orders runs by start time.
func (k Keys) Index() string {
	return k.prefix + "runs"
}
