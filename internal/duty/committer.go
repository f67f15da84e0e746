package duty

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Field names accepted by mutation writers. Only named fields are touched on
// the target document; everything else is left as stored.
const (
	FieldRole            = "role"
	FieldOverrideEnabled = "override_enabled"
	FieldOverrideExpiry  = "override_expires_at"
)

// Mutation is one planned merge write against a single user document. A nil
// field value clears the field on the stored document.
type Mutation struct {
	UserID string
	Fields map[string]any
}

// MutationWriter applies one batch of mutations atomically. Batches handed
// to it never exceed the committer's configured limit.
type MutationWriter interface {
	Apply(ctx context.Context, mutations []Mutation) error
}

// CommitStats summarises one committer invocation.
type CommitStats struct {
	Batches int
	Failed  int
	Applied int
}

// DefaultBatchLimit matches the document store's maximum batch-write size.
const DefaultBatchLimit = 400

// Committer applies a pre-built mutation list as bounded atomic batches. A
// failed batch is logged and skipped; batches already committed stand, which
// is safe because every mutation is an idempotent merge that the next pass
// re-derives from current state.
type Committer struct {
	writer MutationWriter
	limit  int
	logger *slog.Logger
}

// NewCommitter wires a committer over the given writer. A non-positive or
// oversized limit falls back to DefaultBatchLimit.
func NewCommitter(writer MutationWriter, limit int, logger *slog.Logger) *Committer {
	if limit <= 0 || limit > DefaultBatchLimit {
		limit = DefaultBatchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Committer{writer: writer, limit: limit, logger: logger}
}

// Commit chunks the mutation list and applies each chunk atomically.
func (c *Committer) Commit(ctx context.Context, mutations []Mutation) CommitStats {
	stats := CommitStats{}
	for offset := 0; offset < len(mutations); offset += c.limit {
		end := offset + c.limit
		if end > len(mutations) {
			end = len(mutations)
		}
		batch := mutations[offset:end]
		stats.Batches++

		if err := c.writer.Apply(ctx, batch); err != nil {
			stats.Failed++
			c.logger.Warn("batch commit failed",
				"batch", stats.Batches,
				"size", len(batch),
				"checksum", batchChecksum(batch),
				"error", err,
			)
			continue
		}

		stats.Applied += len(batch)
		c.logger.Debug("batch committed",
			"batch", stats.Batches,
			"size", len(batch),
			"checksum", batchChecksum(batch),
		)
	}
	return stats
}

// batchChecksum derives a stable fingerprint for a batch so identical
// retried batches can be correlated across runs in the logs.
func batchChecksum(batch []Mutation) string {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return ""
	}
	for _, mutation := range batch {
		io.WriteString(hasher, mutation.UserID)
		keys := make([]string, 0, len(mutation.Fields))
		for key := range mutation.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(hasher, "|%s=%v", key, mutation.Fields[key])
		}
		io.WriteString(hasher, "\n")
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
