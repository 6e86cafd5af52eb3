package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// hashBufferSize is the read buffer used when fingerprinting content.
const hashBufferSize = 64 * 1024

// Fingerprint computes the SHA-256 hex digest of a file's content. This is
// the expensive half of change detection; callers are expected to rule out
// unchanged files with the size/mtime fast path first.
func Fingerprint(fsmgr FilesystemManager, path string) (string, error) {
	f, err := fsmgr.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashBufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing file content: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
