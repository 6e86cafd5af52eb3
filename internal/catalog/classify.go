package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"casefile/internal/model"
)

// action is the classifier's verdict for one walked file.
type action int

const (
	actionSkip action = iota
	actionInsert
	actionUpdate
)

func (a action) String() string {
	switch a {
	case actionInsert:
		return "insert"
	case actionUpdate:
		return "update"
	default:
		return "skip"
	}
}

// outcome is one classified file, ready for the batch writer. For updates
// the record carries the identity of the existing row (possibly reclaimed
// by rename resolution).
type outcome struct {
	action action
	record *model.FileRecord
	detail *model.FileDetail
}

// classify decides insert/update/skip for one walked file of a local source.
//
// The size/mtime check is near-free and rules out the overwhelming majority
// of unchanged files; entries in a critical status are re-verified by
// content regardless, so silent tampering after review is caught.
func (s *Service) classify(ctx context.Context, caseID string, src *model.Source, wf WalkedFile) (*outcome, error) {
	existing, err := s.store.FindFileByPath(ctx, caseID, wf.AbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("looking up path: %w", err)
	}

	if existing != nil && existing.Deleted() {
		// The user removed this entry from the case; a file reappearing at
		// the same path must not silently resurrect it.
		return &outcome{action: actionSkip}, nil
	}

	if existing != nil {
		metaMatch := wf.Size == existing.Size && wf.ModifiedAt.Equal(existing.ModifiedAt)
		if metaMatch && !model.CriticalStatus(existing.Status) {
			return &outcome{action: actionSkip}, nil
		}

		hash, err := Fingerprint(s.fsmgr, wf.AbsolutePath)
		if err != nil {
			return nil, err
		}
		if existing.Fingerprint != "" && hash == existing.Fingerprint {
			// Content provably unchanged despite metadata drift (a touch).
			return &outcome{action: actionSkip}, nil
		}

		return s.buildOutcome(actionUpdate, existing.ID, caseID, src, wf, hash), nil
	}

	// No match by path: hash first, then try to reclaim a renamed entry
	// before minting a new identity.
	hash, err := Fingerprint(s.fsmgr, wf.AbsolutePath)
	if err != nil {
		return nil, err
	}

	renamed, err := s.resolveRename(ctx, caseID, src, wf, hash)
	if err != nil {
		return nil, err
	}
	if renamed != nil {
		s.logger.Debug("rename detected", "file_id", renamed.ID, "old_path", renamed.AbsolutePath, "new_path", wf.AbsolutePath)
		return s.buildOutcome(actionUpdate, renamed.ID, caseID, src, wf, hash), nil
	}

	return s.buildOutcome(actionInsert, s.idgen.New(), caseID, src, wf, hash), nil
}

// resolveRename searches the same case and source for an entry with the same
// fingerprint whose recorded path has vanished from disk. Requiring the old
// path to be absent avoids stealing the identity of a duplicate that still
// exists at its original location. Candidates arrive ordered by catalog
// creation time then id, so the choice is deterministic when several paths
// vanished at once.
func (s *Service) resolveRename(ctx context.Context, caseID string, src *model.Source, wf WalkedFile, hash string) (*model.FileRecord, error) {
	candidates, err := s.store.FindFilesByFingerprint(ctx, caseID, src.ID, hash, wf.AbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("searching rename candidates: %w", err)
	}

	for _, cand := range candidates {
		if !s.fsmgr.Exists(cand.AbsolutePath) {
			return cand, nil
		}
	}
	return nil, nil
}

// classifyRemote decides insert/update/skip for one remote object. Remote
// descriptors cannot be hashed, so size and modification time are the whole
// signal: no touch tolerance, no rename detection.
func (s *Service) classifyRemote(ctx context.Context, caseID string, src *model.Source, wf WalkedFile) (*outcome, error) {
	existing, err := s.store.FindFileByPath(ctx, caseID, wf.AbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("looking up path: %w", err)
	}

	if existing != nil && existing.Deleted() {
		return &outcome{action: actionSkip}, nil
	}

	if existing != nil {
		if wf.Size == existing.Size && wf.ModifiedAt.Equal(existing.ModifiedAt) {
			return &outcome{action: actionSkip}, nil
		}
		return s.buildOutcome(actionUpdate, existing.ID, caseID, src, wf, ""), nil
	}

	return s.buildOutcome(actionInsert, s.idgen.New(), caseID, src, wf, ""), nil
}

// buildOutcome assembles the record and enrichment row for an insert or
// update verdict.
func (s *Service) buildOutcome(act action, id, caseID string, src *model.Source, wf WalkedFile, hash string) *outcome {
	rec := &model.FileRecord{
		ID:           id,
		CaseID:       caseID,
		SourceID:     src.ID,
		Name:         wf.Name,
		FolderPath:   wf.FolderPath,
		AbsolutePath: wf.AbsolutePath,
		Fingerprint:  hash,
		Size:         wf.Size,
		CreatedAt:    wf.CreatedAt,
		ModifiedAt:   wf.ModifiedAt,
		Status:       model.StatusUnreviewed,
	}
	return &outcome{
		action: act,
		record: rec,
		detail: &model.FileDetail{
			FileID:        id,
			InventoryData: inventoryJSON(wf),
		},
	}
}

// inventoryJSON builds the enrichment payload from walk metadata. The keys
// mirror what the spreadsheet and UI collaborators consume.
func inventoryJSON(wf WalkedFile) string {
	ext := strings.TrimPrefix(filepath.Ext(wf.Name), ".")
	parent := filepath.Base(wf.FolderPath)
	if wf.FolderPath == "" {
		parent = ""
	}
	depth := 0
	if wf.FolderPath != "" {
		depth = strings.Count(filepath.ToSlash(wf.FolderPath), "/") + 1
	}

	return fmt.Sprintf(
		`{"file_size":%d,"file_extension":%q,"parent_folder":%q,"folder_depth":%d,"created_at":%d,"modified_at":%d}`,
		wf.Size, strings.ToUpper(ext), parent, depth,
		wf.CreatedAt.Unix(), wf.ModifiedAt.Unix(),
	)
}
