package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"casefile/internal/catalog"
)

// walkBuffer sizes the walk output channel. Classification is slower than
// directory listing, so a modest buffer keeps walkers from stalling without
// holding a large tree in memory.
const walkBuffer = 256

// OSFilesystemManager is the real filesystem implementation of
// catalog.FilesystemManager. It performs actual filesystem operations using
// the os package.
type OSFilesystemManager struct {
	ignore      []string
	concurrency int64
	logger      catalog.Logger
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. ignore patterns from config apply to every walk;
// concurrency bounds how many directories are listed in parallel (<= 0
// selects a default based on available parallelism).
func NewOSFilesystemManager(ignore []string, concurrency int64, logger catalog.Logger) *OSFilesystemManager {
	if concurrency <= 0 {
		concurrency = int64(2 * runtime.GOMAXPROCS(0))
	}
	if logger == nil {
		logger = catalog.NewNopLogger()
	}
	return &OSFilesystemManager{
		ignore:      ignore,
		concurrency: concurrency,
		logger:      logger,
	}
}

// WalkFiles walks the tree rooted at root and streams a metadata record per
// regular file. Each directory is listed by its own goroutine; a semaphore
// bounds how many run at once, so deep or wide trees cannot exhaust file
// descriptors. Unreadable directories and entries are logged and skipped.
func (m *OSFilesystemManager) WalkFiles(ctx context.Context, root string) (<-chan catalog.WalkedFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walk root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walk root is not a directory: %s", root)
	}

	filePatterns, err := ParseIgnoreFile(filepath.Join(root, ignoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := append([]string{}, defaultIgnorePatterns...)
	patterns = append(patterns, m.ignore...)
	patterns = append(patterns, filePatterns...)
	matcher := NewIgnoreMatcher(patterns)

	out := make(chan catalog.WalkedFile, walkBuffer)
	sem := semaphore.NewWeighted(m.concurrency)
	var wg sync.WaitGroup

	var walkDir func(dir string)
	walkDir = func(dir string) {
		defer wg.Done()

		if err := sem.Acquire(ctx, 1); err != nil {
			return // context cancelled
		}
		entries, err := os.ReadDir(dir)
		sem.Release(1)
		if err != nil {
			m.logger.Warn("skipping unreadable directory", "dir", dir, "error", err)
			return
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, err := filepath.Rel(root, full)
			if err != nil {
				rel = entry.Name()
			}
			if matcher.Match(rel) {
				continue
			}

			if entry.IsDir() {
				wg.Add(1)
				go walkDir(full)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				m.logger.Warn("skipping unreadable entry", "path", full, "error", err)
				continue
			}

			wf := catalog.WalkedFile{
				Name:         entry.Name(),
				FolderPath:   relativeFolder(root, dir),
				AbsolutePath: full,
				Size:         info.Size(),
				CreatedAt:    creationTime(info),
				ModifiedAt:   info.ModTime(),
			}
			select {
			case out <- wf:
			case <-ctx.Done():
				return
			}
		}
	}

	wg.Add(1)
	go walkDir(root)
	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether a path currently exists on disk.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// relativeFolder returns dir relative to root, "" when dir is the root.
func relativeFolder(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return ""
	}
	return rel
}

// Compile-time check that OSFilesystemManager implements catalog.FilesystemManager
var _ catalog.FilesystemManager = (*OSFilesystemManager)(nil)
