package catalog

import (
	"context"
	"fmt"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"casefile/internal/model"
)

// SyncSummary is the per-pass result returned to callers. A pass always
// produces a complete summary even when individual files failed.
type SyncSummary struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
	Errors   []string
}

// SyncSource runs one synchronization pass over a source: walk, classify
// concurrently, apply inserts and updates in atomic batches, then group
// duplicates among the newly inserted files. Per-file failures are recorded
// in the summary and never abort the pass; a store failure during a batch
// phase aborts that phase and is returned alongside the partial summary.
func (s *Service) SyncSource(ctx context.Context, caseID, sourceID string) (*SyncSummary, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	src, err := s.requireSource(ctx, sourceID, c.ID)
	if err != nil {
		return nil, err
	}

	run := &model.SyncRun{
		CaseID:    c.ID,
		SourceID:  src.ID,
		StartedAt: s.clock.Now(),
		Status:    "success",
	}
	runID, err := s.store.CreateSyncRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("recording sync run: %w", err)
	}
	run.ID = runID

	summary, passErr := s.syncPass(ctx, c.ID, src)

	run.Inserted = summary.Inserted
	run.Updated = summary.Updated
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed
	finished := s.clock.Now()
	run.FinishedAt = &finished
	if passErr != nil {
		run.Status = "error"
	}
	if err := s.store.FinishSyncRun(ctx, run); err != nil {
		s.logger.Warn("recording sync run outcome failed", "run_id", run.ID, "error", err)
	}

	s.logger.Info("sync pass finished",
		"case_id", c.ID, "source_id", src.ID,
		"inserted", summary.Inserted, "updated", summary.Updated,
		"skipped", summary.Skipped, "failed", summary.Failed)

	return summary, passErr
}

func (s *Service) syncPass(ctx context.Context, caseID string, src *model.Source) (*SyncSummary, error) {
	files, err := s.walkSource(ctx, src)
	if err != nil {
		return &SyncSummary{}, err
	}

	summary := &SyncSummary{}

	var (
		mu      sync.Mutex
		inserts []*outcome
		updates []*outcome
	)

	// Fan the walked files out to a bounded classifier pool. Workers never
	// return an error: per-file failures go into the summary.
	var g errgroup.Group
	g.SetLimit(s.workers)

	for wf := range files {
		wf := wf
		g.Go(func() error {
			var out *outcome
			var cerr error
			if src.Local() {
				out, cerr = s.classify(ctx, caseID, src, wf)
			} else {
				out, cerr = s.classifyRemote(ctx, caseID, src, wf)
			}

			mu.Lock()
			defer mu.Unlock()
			if cerr != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", wf.AbsolutePath, cerr))
				return nil
			}
			switch out.action {
			case actionInsert:
				inserts = append(inserts, out)
			case actionUpdate:
				updates = append(updates, out)
			default:
				summary.Skipped++
			}
			return nil
		})
	}
	g.Wait()

	// Apply all inserts in one transaction, then all updates in another.
	if len(inserts) > 0 {
		recs, details := splitOutcomes(inserts)
		if err := s.store.InsertFiles(ctx, recs, details, s.clock.Now()); err != nil {
			return summary, fmt.Errorf("applying inserts: %w", err)
		}
		summary.Inserted = len(inserts)
	}
	if len(updates) > 0 {
		recs, details := splitOutcomes(updates)
		if err := s.store.UpdateFiles(ctx, recs, details, s.clock.Now()); err != nil {
			return summary, fmt.Errorf("applying updates: %w", err)
		}
		summary.Updated = len(updates)
	}

	// Duplicate grouping only applies to local sources: a remote descriptor's
	// notion of "same file" cannot be trusted.
	if src.Local() && len(inserts) > 0 {
		recs, _ := splitOutcomes(inserts)
		if err := s.groupDuplicates(ctx, caseID, recs); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// walkSource produces the walked-file stream for a source: the filesystem
// walker for local roots, the remote lister otherwise.
func (s *Service) walkSource(ctx context.Context, src *model.Source) (<-chan WalkedFile, error) {
	if src.Local() {
		files, err := s.fsmgr.WalkFiles(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("walking source: %w", err)
		}
		return files, nil
	}

	if s.remotes == nil {
		return nil, fmt.Errorf("no remote lister configured for source location %s", src.Location)
	}
	lister, err := s.remotes(src)
	if err != nil {
		return nil, fmt.Errorf("creating remote lister: %w", err)
	}
	objects, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing remote source: %w", err)
	}

	out := make(chan WalkedFile, len(objects))
	for _, obj := range objects {
		out <- WalkedFile{
			Name:         path.Base(obj.Key),
			FolderPath:   remoteFolder(obj.Key),
			AbsolutePath: src.Path + "/" + obj.Key,
			Size:         obj.Size,
			CreatedAt:    obj.ModifiedAt,
			ModifiedAt:   obj.ModifiedAt,
		}
	}
	close(out)
	return out, nil
}

func remoteFolder(key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func splitOutcomes(outs []*outcome) ([]*model.FileRecord, []*model.FileDetail) {
	recs := make([]*model.FileRecord, len(outs))
	details := make([]*model.FileDetail, len(outs))
	for i, o := range outs {
		recs[i] = o.record
		details[i] = o.detail
	}
	return recs, details
}
