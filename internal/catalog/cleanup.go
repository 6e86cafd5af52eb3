package catalog

import (
	"context"
	"fmt"
)

// CleanupResult reports what an orphan cleanup pass did. Protected counts
// explain to the user why fewer entries were deleted than went missing.
type CleanupResult struct {
	Deleted   int
	Protected int
}

// CleanupSource walks a local source and soft-deletes catalog entries whose
// backing files vanished, skipping any entry that carries user-authored
// data (a note, a finding reference, or a non-default status). Entries are
// never hard-deleted.
func (s *Service) CleanupSource(ctx context.Context, caseID, sourceID string) (*CleanupResult, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	src, err := s.requireSource(ctx, sourceID, c.ID)
	if err != nil {
		return nil, err
	}
	if !src.Local() {
		return nil, fmt.Errorf("cleanup not supported for remote sources: %s", sourceID)
	}

	files, err := s.fsmgr.WalkFiles(ctx, src.Path)
	if err != nil {
		return nil, fmt.Errorf("walking source: %w", err)
	}
	seen := make(map[string]struct{})
	for wf := range files {
		seen[wf.AbsolutePath] = struct{}{}
	}

	return s.cleanupMissing(ctx, c.ID, src.ID, seen)
}

// cleanupMissing compares the walked path set against the catalog, partitions
// missing entries into protected and deletable, and soft-deletes the latter
// in chunked batches.
func (s *Service) cleanupMissing(ctx context.Context, caseID, sourceID string, seen map[string]struct{}) (*CleanupResult, error) {
	records, err := s.store.ListFilesBySource(ctx, caseID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing catalog entries: %w", err)
	}

	var missing []string
	for _, rec := range records {
		if _, ok := seen[rec.AbsolutePath]; !ok {
			missing = append(missing, rec.ID)
		}
	}
	if len(missing) == 0 {
		return &CleanupResult{}, nil
	}

	protected := make(map[string]struct{})
	for _, query := range []func(context.Context, string, []string) ([]string, error){
		s.store.FilesWithNonDefaultStatus,
		s.store.FilesWithNotes,
		s.store.FilesLinkedToFindings,
	} {
		ids, err := query(ctx, caseID, missing)
		if err != nil {
			return nil, fmt.Errorf("checking protected entries: %w", err)
		}
		for _, id := range ids {
			protected[id] = struct{}{}
		}
	}

	var deletable []string
	for _, id := range missing {
		if _, ok := protected[id]; !ok {
			deletable = append(deletable, id)
		}
	}

	deleted := 0
	if len(deletable) > 0 {
		deleted, err = s.store.SoftDeleteFiles(ctx, deletable, s.clock.Now())
		if err != nil {
			return nil, fmt.Errorf("soft-deleting entries: %w", err)
		}
	}

	s.logger.Info("cleanup finished",
		"case_id", caseID, "source_id", sourceID,
		"missing", len(missing), "deleted", deleted, "protected", len(protected))

	return &CleanupResult{Deleted: deleted, Protected: len(protected)}, nil
}
