package catalog

import (
	"context"
	"time"

	"casefile/internal/model"
)

// Store provides an interface for catalog persistence. Implementations must
// make InsertFiles, UpdateFiles and AddGroupMembers atomic: either every row
// in the batch is applied or none is.
type Store interface {
	// Case operations

	// CreateCase creates a new case.
	CreateCase(ctx context.Context, c *model.Case) error

	// GetCase returns a case by id, or nil if it does not exist.
	GetCase(ctx context.Context, id string) (*model.Case, error)

	// ListCases returns all cases ordered by creation time.
	ListCases(ctx context.Context) ([]*model.Case, error)

	// Source operations

	// CreateSource registers a source location for a case.
	CreateSource(ctx context.Context, src *model.Source) error

	// GetSource returns a source by id, or nil if it does not exist.
	GetSource(ctx context.Context, id string) (*model.Source, error)

	// FindSourceByPath returns the source with the given path within a case,
	// or nil if none exists.
	FindSourceByPath(ctx context.Context, caseID, path string) (*model.Source, error)

	// ListSources returns all sources for a case.
	ListSources(ctx context.Context, caseID string) ([]*model.Source, error)

	// File operations

	// GetFile returns a file record by id (soft-deleted included), or nil.
	GetFile(ctx context.Context, id string) (*model.FileRecord, error)

	// FindFileByPath returns the record at (case, absolute path), including
	// soft-deleted records, or nil if none exists.
	FindFileByPath(ctx context.Context, caseID, absolutePath string) (*model.FileRecord, error)

	// FindFilesByFingerprint returns non-deleted records in the given case and
	// source sharing the fingerprint, excluding the given absolute path.
	// Results are ordered by catalog creation time, then id, so callers get a
	// deterministic candidate order.
	FindFilesByFingerprint(ctx context.Context, caseID, sourceID, fingerprint, excludePath string) ([]*model.FileRecord, error)

	// FindLocalFilesByFingerprint returns non-deleted records in the case that
	// share the fingerprint and belong to a local source, excluding the given
	// file id. Ordered by catalog creation time, then id.
	FindLocalFilesByFingerprint(ctx context.Context, caseID, fingerprint, excludeFileID string) ([]*model.FileRecord, error)

	// ListFilesBySource returns all non-deleted records for (case, source).
	ListFilesBySource(ctx context.Context, caseID, sourceID string) ([]*model.FileRecord, error)

	// InsertFiles inserts the records and their enrichment rows in one
	// transaction. UpdatedAt and the enrichment LastScannedAt are set to now.
	InsertFiles(ctx context.Context, files []*model.FileRecord, details []*model.FileDetail, now time.Time) error

	// UpdateFiles applies the records' path, fingerprint, size and timestamp
	// fields to the existing rows in one transaction, refreshing enrichment
	// rows. Rows in status reviewed or flagged whose content changed (the
	// incoming fingerprint is empty or differs from the stored one) are
	// demoted to in_progress; a rename carries an identical fingerprint and
	// keeps its status.
	UpdateFiles(ctx context.Context, files []*model.FileRecord, details []*model.FileDetail, now time.Time) error

	// SetFileStatus sets the lifecycle status of one record.
	SetFileStatus(ctx context.Context, id, status string, now time.Time) error

	// SetFileTags replaces the tag set (JSON array) of one record.
	SetFileTags(ctx context.Context, id, tags string, now time.Time) error

	// Cleanup support. The id-set queries are chunked internally to stay
	// under the store's bound-parameter limit.

	// FilesWithNonDefaultStatus returns the subset of ids whose status is not
	// the initial default.
	FilesWithNonDefaultStatus(ctx context.Context, caseID string, ids []string) ([]string, error)

	// FilesWithNotes returns the subset of ids that have at least one note.
	FilesWithNotes(ctx context.Context, caseID string, ids []string) ([]string, error)

	// FilesLinkedToFindings returns the subset of ids referenced by any
	// finding in the case.
	FilesLinkedToFindings(ctx context.Context, caseID string, ids []string) ([]string, error)

	// SoftDeleteFiles marks the records deleted, in chunked batches.
	// Returns the number of rows affected.
	SoftDeleteFiles(ctx context.Context, ids []string, deletedAt time.Time) (int, error)

	// Duplicate group operations

	// GroupMemberCount returns the number of members in a group (0 when the
	// group does not exist).
	GroupMemberCount(ctx context.Context, groupID string) (int, error)

	// GroupMembers returns the members of a group, primary first.
	GroupMembers(ctx context.Context, groupID string) ([]*model.GroupMember, error)

	// AddGroupMembers inserts members in one transaction. Existing
	// (group, file) pairs are left untouched.
	AddGroupMembers(ctx context.Context, members []*model.GroupMember) error

	// ListGroupIDs returns the distinct group ids whose members belong to the
	// given case.
	ListGroupIDs(ctx context.Context, caseID string) ([]string, error)

	// Annotation operations (collaborator surface)

	// CreateNote attaches a note to a case or file.
	CreateNote(ctx context.Context, n *model.Note) error

	// CreateFinding creates a finding with its linked file ids.
	CreateFinding(ctx context.Context, f *model.Finding) error

	// Sync run history

	// CreateSyncRun records the start of a sync pass and returns its id.
	CreateSyncRun(ctx context.Context, run *model.SyncRun) (int64, error)

	// FinishSyncRun records the outcome of a sync pass.
	FinishSyncRun(ctx context.Context, run *model.SyncRun) error

	// ListSyncRuns returns the most recent sync runs, newest first.
	ListSyncRuns(ctx context.Context, caseID string, limit int) ([]*model.SyncRun, error)

	// Close closes the store.
	Close() error
}
