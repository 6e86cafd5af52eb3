package catalog_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"casefile/internal/model"
)

func TestCleanupSource_SoftDeletesMissingFiles(t *testing.T) {
	e := newEnv(t)
	e.write(t, "keep.txt", "stays")
	gone := e.write(t, "gone.txt", "vanishes")
	e.sync(t)
	goneRec := e.fileAt(t, "gone.txt")

	if err := os.Remove(gone); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	result, err := e.svc.CleanupSource(context.Background(), e.caseID, e.sourceID)
	if err != nil {
		t.Fatalf("CleanupSource() error = %v", err)
	}
	if result.Deleted != 1 || result.Protected != 0 {
		t.Errorf("result = %+v, want 1 deleted, 0 protected", result)
	}

	after, err := e.store.GetFile(context.Background(), goneRec.ID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if !after.Deleted() {
		t.Error("missing file was not soft-deleted")
	}
	if keep := e.fileAt(t, "keep.txt"); keep == nil || keep.Deleted() {
		t.Error("present file was touched by cleanup")
	}
}

func TestCleanupSource_ProtectsAnnotatedFiles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	noted := e.write(t, "noted.txt", "has note")
	found := e.write(t, "found.txt", "in finding")
	flagged := e.write(t, "flagged.txt", "flagged")
	plain := e.write(t, "plain.txt", "nothing special")
	e.sync(t)

	notedRec := e.fileAt(t, "noted.txt")
	foundRec := e.fileAt(t, "found.txt")
	flaggedRec := e.fileAt(t, "flagged.txt")
	plainRec := e.fileAt(t, "plain.txt")

	if _, err := e.svc.AddNote(ctx, e.caseID, notedRec.ID, "do not lose this"); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	if _, err := e.svc.AddFinding(ctx, e.caseID, "exfil trail", "", "high", []string{foundRec.ID}); err != nil {
		t.Fatalf("AddFinding() error = %v", err)
	}
	if err := e.svc.SetFileStatus(ctx, flaggedRec.ID, model.StatusFlagged); err != nil {
		t.Fatalf("SetFileStatus() error = %v", err)
	}

	for _, path := range []string{noted, found, flagged, plain} {
		if err := os.Remove(path); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
	}

	result, err := e.svc.CleanupSource(ctx, e.caseID, e.sourceID)
	if err != nil {
		t.Fatalf("CleanupSource() error = %v", err)
	}
	if result.Deleted != 1 || result.Protected != 3 {
		t.Errorf("result = %+v, want 1 deleted, 3 protected", result)
	}

	for _, tt := range []struct {
		id   string
		want bool
	}{
		{notedRec.ID, false},
		{foundRec.ID, false},
		{flaggedRec.ID, false},
		{plainRec.ID, true},
	} {
		rec, err := e.store.GetFile(ctx, tt.id)
		if err != nil {
			t.Fatalf("GetFile() error = %v", err)
		}
		if rec.Deleted() != tt.want {
			t.Errorf("file %s deleted = %v, want %v", tt.id, rec.Deleted(), tt.want)
		}
	}
}

func TestCleanupSource_LargeBatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Catalog entries whose backing files never existed: every one is
	// missing, and the batch spans several chunks.
	const total = 2500
	files := make([]*model.FileRecord, 0, total)
	details := make([]*model.FileDetail, 0, total)
	now := e.clock.Now()
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("bulk-%04d", i)
		files = append(files, &model.FileRecord{
			ID:           id,
			CaseID:       e.caseID,
			SourceID:     e.sourceID,
			Name:         fmt.Sprintf("%04d.bin", i),
			AbsolutePath: filepath.Join(e.dir, fmt.Sprintf("%04d.bin", i)),
			Size:         1,
			CreatedAt:    now,
			ModifiedAt:   now,
			Status:       model.StatusUnreviewed,
		})
		details = append(details, &model.FileDetail{FileID: id, InventoryData: "{}"})
	}
	if err := e.store.InsertFiles(ctx, files, details, now); err != nil {
		t.Fatalf("InsertFiles() error = %v", err)
	}

	result, err := e.svc.CleanupSource(ctx, e.caseID, e.sourceID)
	if err != nil {
		t.Fatalf("CleanupSource() error = %v", err)
	}
	if result.Deleted != total {
		t.Errorf("Deleted = %d, want %d", result.Deleted, total)
	}

	remaining, err := e.store.ListFilesBySource(ctx, e.caseID, e.sourceID)
	if err != nil {
		t.Fatalf("ListFilesBySource() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("live entries after cleanup = %d, want 0", len(remaining))
	}
}

func TestCleanupSource_IsIdempotent(t *testing.T) {
	e := newEnv(t)
	gone := e.write(t, "gone.txt", "vanishes")
	e.sync(t)

	if err := os.Remove(gone); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	ctx := context.Background()
	if _, err := e.svc.CleanupSource(ctx, e.caseID, e.sourceID); err != nil {
		t.Fatalf("first CleanupSource() error = %v", err)
	}

	result, err := e.svc.CleanupSource(ctx, e.caseID, e.sourceID)
	if err != nil {
		t.Fatalf("second CleanupSource() error = %v", err)
	}
	if result.Deleted != 0 {
		t.Errorf("second pass Deleted = %d, want 0", result.Deleted)
	}
}

func TestCleanupSource_RejectsRemoteSources(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	src, err := e.svc.AddSource(ctx, e.caseID, "s3://bucket/intake", model.LocationS3)
	if err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}

	if _, err := e.svc.CleanupSource(ctx, e.caseID, src.ID); err == nil {
		t.Error("expected error for remote source cleanup")
	}
}

func TestCleanupSource_SurvivesDeletedTimestamp(t *testing.T) {
	e := newEnv(t)
	gone := e.write(t, "gone.txt", "vanishes")
	e.sync(t)
	rec := e.fileAt(t, "gone.txt")

	if err := os.Remove(gone); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	e.clock.Advance(42 * time.Minute)
	deletedAt := e.clock.Now()

	if _, err := e.svc.CleanupSource(context.Background(), e.caseID, e.sourceID); err != nil {
		t.Fatalf("CleanupSource() error = %v", err)
	}

	after, err := e.store.GetFile(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if after.DeletedAt == nil || !after.DeletedAt.Equal(deletedAt) {
		t.Errorf("DeletedAt = %v, want %v", after.DeletedAt, deletedAt)
	}
}
