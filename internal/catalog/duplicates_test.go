package catalog_test

import (
	"context"
	"testing"
	"time"

	"casefile/internal/catalog"
	"casefile/internal/model"
	"casefile/internal/testutil"
)

func TestDuplicateGrouping_ThreeIdenticalFiles(t *testing.T) {
	e := newEnv(t)
	content := "identical bytes"
	e.write(t, "one.txt", content)
	e.write(t, "two.txt", content)
	e.write(t, "sub/three.txt", content)
	e.write(t, "unrelated.txt", "different")
	e.sync(t)

	groups, err := e.svc.DuplicateGroups(context.Background(), e.caseID)
	if err != nil {
		t.Fatalf("DuplicateGroups() error = %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}

	fingerprint := testutil.SHA256Hex([]byte(content))
	members, ok := groups[fingerprint]
	if !ok {
		t.Fatalf("group id is not the shared fingerprint; groups = %v", groups)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}

	primaries := 0
	for _, m := range members {
		if m.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Errorf("primaries = %d, want exactly 1", primaries)
	}
	if !members[0].IsPrimary {
		t.Error("primary member should sort first")
	}
}

func TestDuplicateGrouping_LateCopyJoinsExistingGroup(t *testing.T) {
	e := newEnv(t)
	content := "identical bytes"
	e.write(t, "one.txt", content)
	e.write(t, "two.txt", content)
	e.sync(t)

	groups, err := e.svc.DuplicateGroups(context.Background(), e.caseID)
	if err != nil {
		t.Fatalf("DuplicateGroups() error = %v", err)
	}
	fingerprint := testutil.SHA256Hex([]byte(content))
	if len(groups[fingerprint]) != 2 {
		t.Fatalf("initial group size = %d, want 2", len(groups[fingerprint]))
	}
	var primary string
	for _, m := range groups[fingerprint] {
		if m.IsPrimary {
			primary = m.FileID
		}
	}

	// A third copy in a later pass joins as non-primary; the primary is
	// never re-elected.
	e.write(t, "three.txt", content)
	e.sync(t)

	groups, err = e.svc.DuplicateGroups(context.Background(), e.caseID)
	if err != nil {
		t.Fatalf("DuplicateGroups() error = %v", err)
	}
	members := groups[fingerprint]
	if len(members) != 3 {
		t.Fatalf("group size after late copy = %d, want 3", len(members))
	}
	if !members[0].IsPrimary || members[0].FileID != primary {
		t.Errorf("primary changed: was %s, now %+v", primary, members[0])
	}
}

func TestDuplicateGrouping_UniqueFilesFormNoGroups(t *testing.T) {
	e := newEnv(t)
	e.write(t, "a.txt", "aaa")
	e.write(t, "b.txt", "bbb")
	e.sync(t)

	groups, err := e.svc.DuplicateGroups(context.Background(), e.caseID)
	if err != nil {
		t.Fatalf("DuplicateGroups() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0", len(groups))
	}
}

func TestDuplicateGrouping_RemoteObjectsExcluded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.write(t, "local.txt", "shared")
	e.sync(t)

	src, err := e.svc.AddSource(ctx, e.caseID, "s3://bucket/intake", model.LocationS3)
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}
	e.remote.Objects = []catalog.RemoteObject{
		{Key: "remote.txt", Size: 6, ModifiedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
	}
	if _, err := e.svc.SyncSource(ctx, e.caseID, src.ID); err != nil {
		t.Fatalf("SyncSource() error = %v", err)
	}

	// Remote descriptors carry no fingerprint, so no group can form.
	groups, err := e.svc.DuplicateGroups(ctx, e.caseID)
	if err != nil {
		t.Fatalf("DuplicateGroups() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0", len(groups))
	}
}
