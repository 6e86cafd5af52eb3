package catalog

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// WalkedFile is one regular file produced by a walk of a source root.
type WalkedFile struct {
	Name         string // base name
	FolderPath   string // parent folder relative to the walk root ("" at the root)
	AbsolutePath string
	Size         int64
	CreatedAt    time.Time // best effort; falls back to ModifiedAt
	ModifiedAt   time.Time
}

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access so the engine can be exercised against temp
// directories in tests without special fakes.
type FilesystemManager interface {
	// WalkFiles walks the tree rooted at root and streams a metadata record
	// per regular file. The returned channel is closed when the walk is done;
	// ordering is not guaranteed. Unreadable entries are logged and skipped.
	WalkFiles(ctx context.Context, root string) (<-chan WalkedFile, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// Stat returns fresh file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// Exists reports whether a path currently exists on disk.
	Exists(path string) bool
}
