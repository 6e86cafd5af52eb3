package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casefile/internal/model"
)

// Staleness is the verdict of an on-demand freshness check for one entry.
type Staleness int

const (
	StalenessFresh Staleness = iota
	StalenessModified
	StalenessDeleted
)

func (s Staleness) String() string {
	switch s {
	case StalenessModified:
		return "modified"
	case StalenessDeleted:
		return "deleted"
	default:
		return "fresh"
	}
}

const (
	// stalenessTTL is how long a cached verdict may answer repeated queries.
	stalenessTTL = 5 * time.Second
	// stalenessCacheLimit bounds the cache; expired entries are pruned when
	// the limit is exceeded.
	stalenessCacheLimit = 1000
)

type stalenessEntry struct {
	result Staleness
	at     time.Time
}

// stalenessCache absorbs repeated checks for the same entry within a short
// window. It is advisory only: it never feeds the sync or cleanup paths.
type stalenessCache struct {
	mu      sync.Mutex
	entries map[string]stalenessEntry
	ttl     time.Duration
	limit   int
}

func newStalenessCache(ttl time.Duration, limit int) *stalenessCache {
	return &stalenessCache{
		entries: make(map[string]stalenessEntry),
		ttl:     ttl,
		limit:   limit,
	}
}

func (c *stalenessCache) get(id string, now time.Time) (Staleness, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || now.Sub(e.at) >= c.ttl {
		return 0, false
	}
	return e.result, true
}

func (c *stalenessCache) put(id string, result Staleness, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = stalenessEntry{result: result, at: now}
	if len(c.entries) > c.limit {
		for k, e := range c.entries {
			if now.Sub(e.at) >= c.ttl {
				delete(c.entries, k)
			}
		}
	}
}

// CheckFile answers whether one catalog entry's backing file is fresh,
// modified, or deleted. Metadata is compared first; entries in a critical
// status, or with drifted metadata, are re-verified by content. Verdicts
// are cached for a few seconds to absorb repeated queries.
func (s *Service) CheckFile(ctx context.Context, fileID string) (Staleness, error) {
	now := s.clock.Now()
	if result, ok := s.stale.get(fileID, now); ok {
		return result, nil
	}

	rec, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("loading file: %w", err)
	}
	if rec == nil || rec.Deleted() {
		return 0, fmt.Errorf("file not found or deleted: %s", fileID)
	}

	src, err := s.store.GetSource(ctx, rec.SourceID)
	if err != nil {
		return 0, fmt.Errorf("loading source: %w", err)
	}
	if src != nil && !src.Local() {
		return 0, fmt.Errorf("staleness check not supported for remote source files: %s", fileID)
	}

	result, err := s.checkOnDisk(rec)
	if err != nil {
		return 0, err
	}

	s.stale.put(fileID, result, s.clock.Now())
	return result, nil
}

func (s *Service) checkOnDisk(rec *model.FileRecord) (Staleness, error) {
	if !s.fsmgr.Exists(rec.AbsolutePath) {
		return StalenessDeleted, nil
	}

	info, err := s.fsmgr.Stat(rec.AbsolutePath)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", rec.AbsolutePath, err)
	}

	metaChanged := info.Size() != rec.Size || !info.ModTime().Equal(rec.ModifiedAt)

	if (metaChanged || model.CriticalStatus(rec.Status)) && rec.Fingerprint != "" {
		hash, err := Fingerprint(s.fsmgr, rec.AbsolutePath)
		if err != nil {
			return 0, err
		}
		if hash != rec.Fingerprint {
			return StalenessModified, nil
		}
		// Content is intact; metadata drift alone still counts as modified.
		if metaChanged {
			return StalenessModified, nil
		}
		return StalenessFresh, nil
	}

	if metaChanged {
		return StalenessModified, nil
	}
	return StalenessFresh, nil
}
