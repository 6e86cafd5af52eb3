//go:build unix

package fs

import (
	"io/fs"
	"syscall"
	"time"
)

// creationTime extracts a best-effort creation time from a FileInfo.
// Most Unix filesystems do not expose birth time, so the inode change time
// stands in; callers fall back to ModTime when nothing better is available.
func creationTime(info fs.FileInfo) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}
