package source

import (
	"context"

	"casefile/internal/catalog"
)

// MemoryLister is an in-memory remote source, used in tests and for the
// "memory" remote type in config.
type MemoryLister struct {
	Objects []catalog.RemoteObject
}

// List returns a copy of the configured objects.
func (l *MemoryLister) List(ctx context.Context) ([]catalog.RemoteObject, error) {
	out := make([]catalog.RemoteObject, len(l.Objects))
	copy(out, l.Objects)
	return out, nil
}

// Compile-time check that MemoryLister implements catalog.RemoteLister
var _ catalog.RemoteLister = (*MemoryLister)(nil)
