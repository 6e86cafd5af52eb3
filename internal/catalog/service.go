package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"casefile/internal/model"
)

// RemoteObject is one object in a remote source listing. Remote descriptors
// carry only size and modification time; their identity cannot be trusted
// for hashing or deduplication.
type RemoteObject struct {
	Key        string
	Size       int64
	ModifiedAt time.Time
}

// RemoteLister enumerates the objects of a remote source.
type RemoteLister interface {
	List(ctx context.Context) ([]RemoteObject, error)
}

// RemoteListerFactory builds a lister for a remote source descriptor.
type RemoteListerFactory func(src *model.Source) (RemoteLister, error)

// Service is the catalog engine: it coordinates the store, the filesystem
// and remote listers to run sync passes, duplicate grouping, staleness
// checks and orphan cleanup.
type Service struct {
	store   Store
	fsmgr   FilesystemManager
	remotes RemoteListerFactory
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	workers int
	stale   *stalenessCache
}

// NewService creates a Service with the provided dependencies.
// workers bounds the classifier pool; values <= 0 select a small multiple
// of the available parallelism.
func NewService(store Store, fsmgr FilesystemManager, remotes RemoteListerFactory, logger Logger, clock Clock, idgen IDGenerator, workers int) *Service {
	if workers <= 0 {
		workers = 2 * runtime.GOMAXPROCS(0)
	}
	return &Service{
		store:   store,
		fsmgr:   fsmgr,
		remotes: remotes,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		workers: workers,
		stale:   newStalenessCache(stalenessTTL, stalenessCacheLimit),
	}
}

// CreateCase creates a new case.
func (s *Service) CreateCase(ctx context.Context, name string) (*model.Case, error) {
	if name == "" {
		return nil, fmt.Errorf("case name must not be empty")
	}

	now := s.clock.Now()
	c := &model.Case{
		ID:        s.idgen.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCase(ctx, c); err != nil {
		return nil, fmt.Errorf("creating case: %w", err)
	}

	s.logger.Info("case created", "case_id", c.ID, "name", name)
	return c, nil
}

// AddSource registers a source location for a case. Local sources must
// point at an existing directory; remote sources are accepted as opaque
// descriptors.
func (s *Service) AddSource(ctx context.Context, caseID, path, location string) (*model.Source, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	switch location {
	case model.LocationLocal:
		info, err := s.fsmgr.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("source path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source path is not a directory: %s", path)
		}
	case model.LocationS3:
		if path == "" {
			return nil, fmt.Errorf("remote source descriptor must not be empty")
		}
	default:
		return nil, fmt.Errorf("unknown source location: %s", location)
	}

	existing, err := s.store.FindSourceByPath(ctx, c.ID, path)
	if err != nil {
		return nil, fmt.Errorf("checking for existing source: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	src := &model.Source{
		ID:       s.idgen.New(),
		CaseID:   c.ID,
		Path:     path,
		Location: location,
		AddedAt:  s.clock.Now(),
	}
	if err := s.store.CreateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	s.logger.Info("source added", "case_id", c.ID, "path", path, "location", location)
	return src, nil
}

// AddNote attaches a note to a file (or to the case when fileID is empty).
// A file with any note is protected from automated cleanup.
func (s *Service) AddNote(ctx context.Context, caseID, fileID, content string) (*model.Note, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if fileID != "" {
		if _, err := s.requireFileInCase(ctx, fileID, c.ID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	n := &model.Note{
		ID:        s.idgen.New(),
		CaseID:    c.ID,
		FileID:    fileID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return n, nil
}

// AddFinding creates a finding referencing the given file ids. Referenced
// files are protected from automated cleanup.
func (s *Service) AddFinding(ctx context.Context, caseID, title, description, severity string, linkedFiles []string) (*model.Finding, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	for _, id := range linkedFiles {
		if _, err := s.requireFileInCase(ctx, id, c.ID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	f := &model.Finding{
		ID:          s.idgen.New(),
		CaseID:      c.ID,
		Title:       title,
		Description: description,
		Severity:    severity,
		LinkedFiles: linkedFiles,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateFinding(ctx, f); err != nil {
		return nil, fmt.Errorf("creating finding: %w", err)
	}
	return f, nil
}

// SetFileStatus updates the lifecycle status of a catalog entry.
func (s *Service) SetFileStatus(ctx context.Context, fileID, status string) error {
	switch status {
	case model.StatusUnreviewed, model.StatusInProgress, model.StatusReviewed, model.StatusFlagged, model.StatusFinalized:
	default:
		return fmt.Errorf("unknown status: %s", status)
	}

	rec, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("loading file: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("file not found: %s", fileID)
	}

	if err := s.store.SetFileStatus(ctx, fileID, status, s.clock.Now()); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return nil
}

// TagFile replaces the tag set of a catalog entry. An empty tag list
// clears the tags.
func (s *Service) TagFile(ctx context.Context, fileID string, tags []string) error {
	rec, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("loading file: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("file not found: %s", fileID)
	}

	encoded := ""
	if len(tags) > 0 {
		raw, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}
		encoded = string(raw)
	}
	if err := s.store.SetFileTags(ctx, fileID, encoded, s.clock.Now()); err != nil {
		return fmt.Errorf("updating tags: %w", err)
	}
	return nil
}

// GetHistory returns the most recent sync runs for a case, newest first.
func (s *Service) GetHistory(ctx context.Context, caseID string, limit int) ([]*model.SyncRun, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	runs, err := s.store.ListSyncRuns(ctx, c.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	return runs, nil
}

// DuplicateGroups returns each duplicate group of the case with its members,
// primary first.
func (s *Service) DuplicateGroups(ctx context.Context, caseID string) (map[string][]*model.GroupMember, error) {
	c, err := s.requireCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	ids, err := s.store.ListGroupIDs(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing duplicate groups: %w", err)
	}

	groups := make(map[string][]*model.GroupMember, len(ids))
	for _, id := range ids {
		members, err := s.store.GroupMembers(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading group %s: %w", id, err)
		}
		groups[id] = members
	}
	return groups, nil
}

// requireCase loads a case and rejects unknown ids before any mutation.
func (s *Service) requireCase(ctx context.Context, caseID string) (*model.Case, error) {
	c, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("loading case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("case not found: %s", caseID)
	}
	return c, nil
}

// requireSource loads a source and verifies it belongs to the case.
func (s *Service) requireSource(ctx context.Context, sourceID, caseID string) (*model.Source, error) {
	src, err := s.store.GetSource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	if src == nil {
		return nil, fmt.Errorf("source not found: %s", sourceID)
	}
	if src.CaseID != caseID {
		return nil, fmt.Errorf("source %s does not belong to case %s", sourceID, caseID)
	}
	return src, nil
}

// requireFileInCase loads a file record and verifies it belongs to the case.
func (s *Service) requireFileInCase(ctx context.Context, fileID, caseID string) (*model.FileRecord, error) {
	rec, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("loading file: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("file not found: %s", fileID)
	}
	if rec.CaseID != caseID {
		return nil, fmt.Errorf("file %s does not belong to case %s", fileID, caseID)
	}
	return rec, nil
}
