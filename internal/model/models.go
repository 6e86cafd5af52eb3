package model

import "time"

// Lifecycle statuses for a catalog entry. New entries start as
// StatusUnreviewed; the critical statuses force content verification on
// every sync pass.
const (
	StatusUnreviewed = "unreviewed"
	StatusInProgress = "in_progress"
	StatusReviewed   = "reviewed"
	StatusFlagged    = "flagged"
	StatusFinalized  = "finalized"
)

// CriticalStatus reports whether a status requires content verification
// even when the size/mtime fast path matches.
func CriticalStatus(status string) bool {
	return status == StatusReviewed || status == StatusFlagged || status == StatusFinalized
}

// Source location kinds.
const (
	LocationLocal = "local"
	LocationS3    = "s3"
)

// Case is one investigation scope. All catalog entries, notes, findings
// and duplicate groups belong to exactly one case.
type Case struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Source is one location files are cataloged from: a local directory tree
// or a remote (S3) descriptor. Remote sources are excluded from hashing,
// duplicate grouping and orphan cleanup.
type Source struct {
	ID       string
	CaseID   string
	Path     string // local root directory, or bucket/prefix descriptor for s3
	Location string // LocationLocal or LocationS3
	AddedAt  time.Time
}

// Local reports whether the source is a local directory tree.
func (s *Source) Local() bool { return s.Location == LocationLocal }

// FileRecord is one catalog entry: the persisted record of a tracked file
// within a case. A record keeps its identity across renames; soft deletion
// marks DeletedAt instead of removing the row.
type FileRecord struct {
	ID           string
	CaseID       string
	SourceID     string
	Name         string // display name (base name)
	FolderPath   string // path of the parent folder relative to the source root
	AbsolutePath string
	Fingerprint  string // SHA-256 hex of content; empty when never hashed (remote sources)
	Size         int64
	CreatedAt    time.Time // file creation time (best effort)
	ModifiedAt   time.Time // file modification time
	UpdatedAt    time.Time // last catalog mutation
	Status       string
	Tags         string // JSON array, empty when untagged
	DeletedAt    *time.Time
}

// Deleted reports whether the record has been soft-deleted.
func (f *FileRecord) Deleted() bool { return f.DeletedAt != nil }

// FileDetail is the enrichment record written alongside every insert and
// update: free-form inventory JSON plus the instant the file was last seen
// by a sync pass.
type FileDetail struct {
	FileID        string
	InventoryData string
	LastScannedAt time.Time
}

// GroupMember links a catalog entry into a duplicate group. The group id is
// the shared content fingerprint; exactly one member per group is primary.
type GroupMember struct {
	GroupID   string
	FileID    string
	IsPrimary bool
	CreatedAt time.Time
}

// Note is a user-authored annotation attached to a case and optionally to
// one file. A file with any note is protected from automated cleanup.
type Note struct {
	ID        string
	CaseID    string
	FileID    string // empty for case-level notes
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Finding is a user-authored conclusion referencing zero or more files.
// Referenced files are protected from automated cleanup.
type Finding struct {
	ID          string
	CaseID      string
	Title       string
	Description string
	Severity    string
	LinkedFiles []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SyncRun records one synchronization pass over a source.
type SyncRun struct {
	ID         int64
	CaseID     string
	SourceID   string
	StartedAt  time.Time
	FinishedAt *time.Time
	Inserted   int
	Updated    int
	Skipped    int
	Failed     int
	Status     string // "success" or "error"
}
