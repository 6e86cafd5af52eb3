package catalog_test

import (
	"context"
	"testing"

	"casefile/internal/model"
)

func TestCreateCase_RejectsEmptyName(t *testing.T) {
	e := newEnv(t)
	if _, err := e.svc.CreateCase(context.Background(), ""); err == nil {
		t.Error("expected error for empty case name")
	}
}

func TestAddSource(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("same path returns existing source", func(t *testing.T) {
		again, err := e.svc.AddSource(ctx, e.caseID, e.dir, model.LocationLocal)
		if err != nil {
			t.Fatalf("AddSource() error = %v", err)
		}
		if again.ID != e.sourceID {
			t.Errorf("duplicate registration minted a new source: %s != %s", again.ID, e.sourceID)
		}
	})

	t.Run("local path must be a directory", func(t *testing.T) {
		file := e.write(t, "not-a-dir.txt", "x")
		if _, err := e.svc.AddSource(ctx, e.caseID, file, model.LocationLocal); err == nil {
			t.Error("expected error for file path")
		}
	})

	t.Run("local path must exist", func(t *testing.T) {
		if _, err := e.svc.AddSource(ctx, e.caseID, "/nonexistent/evidence", model.LocationLocal); err == nil {
			t.Error("expected error for missing path")
		}
	})

	t.Run("unknown location", func(t *testing.T) {
		if _, err := e.svc.AddSource(ctx, e.caseID, e.dir, "ftp"); err == nil {
			t.Error("expected error for unknown location")
		}
	})

	t.Run("empty remote descriptor", func(t *testing.T) {
		if _, err := e.svc.AddSource(ctx, e.caseID, "", model.LocationS3); err == nil {
			t.Error("expected error for empty descriptor")
		}
	})

	t.Run("unknown case", func(t *testing.T) {
		if _, err := e.svc.AddSource(ctx, "no-such-case", e.dir, model.LocationLocal); err == nil {
			t.Error("expected error for unknown case")
		}
	})
}

func TestAddNote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.write(t, "a.txt", "alpha")
	e.sync(t)
	rec := e.fileAt(t, "a.txt")

	t.Run("file note", func(t *testing.T) {
		n, err := e.svc.AddNote(ctx, e.caseID, rec.ID, "interesting header bytes")
		if err != nil {
			t.Fatalf("AddNote() error = %v", err)
		}
		if n.FileID != rec.ID {
			t.Errorf("FileID = %q, want %q", n.FileID, rec.ID)
		}
	})

	t.Run("case-level note", func(t *testing.T) {
		n, err := e.svc.AddNote(ctx, e.caseID, "", "general observations")
		if err != nil {
			t.Fatalf("AddNote() error = %v", err)
		}
		if n.FileID != "" {
			t.Errorf("FileID = %q, want empty", n.FileID)
		}
	})

	t.Run("unknown case", func(t *testing.T) {
		if _, err := e.svc.AddNote(ctx, "no-such-case", "", "x"); err == nil {
			t.Error("expected error for unknown case")
		}
	})

	t.Run("unknown file", func(t *testing.T) {
		if _, err := e.svc.AddNote(ctx, e.caseID, "no-such-file", "x"); err == nil {
			t.Error("expected error for unknown file")
		}
	})

	t.Run("file from another case", func(t *testing.T) {
		other, err := e.svc.CreateCase(ctx, "Other Case")
		if err != nil {
			t.Fatalf("CreateCase() error = %v", err)
		}
		if _, err := e.svc.AddNote(ctx, other.ID, rec.ID, "x"); err == nil {
			t.Error("expected error for cross-case file reference")
		}
	})
}

func TestAddFinding(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.write(t, "a.txt", "alpha")
	e.sync(t)
	rec := e.fileAt(t, "a.txt")

	t.Run("with linked files", func(t *testing.T) {
		f, err := e.svc.AddFinding(ctx, e.caseID, "staged archive", "found in temp dir", "high", []string{rec.ID})
		if err != nil {
			t.Fatalf("AddFinding() error = %v", err)
		}
		if len(f.LinkedFiles) != 1 || f.LinkedFiles[0] != rec.ID {
			t.Errorf("LinkedFiles = %v, want [%s]", f.LinkedFiles, rec.ID)
		}
	})

	t.Run("without linked files", func(t *testing.T) {
		if _, err := e.svc.AddFinding(ctx, e.caseID, "timeline gap", "", "low", nil); err != nil {
			t.Fatalf("AddFinding() error = %v", err)
		}
	})

	t.Run("unknown linked file", func(t *testing.T) {
		if _, err := e.svc.AddFinding(ctx, e.caseID, "bad link", "", "low", []string{"no-such-file"}); err == nil {
			t.Error("expected error for unknown linked file")
		}
	})

	t.Run("unknown case", func(t *testing.T) {
		if _, err := e.svc.AddFinding(ctx, "no-such-case", "t", "", "low", nil); err == nil {
			t.Error("expected error for unknown case")
		}
	})
}

func TestSetFileStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.write(t, "a.txt", "alpha")
	e.sync(t)
	rec := e.fileAt(t, "a.txt")

	t.Run("valid transition", func(t *testing.T) {
		if err := e.svc.SetFileStatus(ctx, rec.ID, model.StatusFlagged); err != nil {
			t.Fatalf("SetFileStatus() error = %v", err)
		}
		after, err := e.store.GetFile(ctx, rec.ID)
		if err != nil {
			t.Fatalf("GetFile() error = %v", err)
		}
		if after.Status != model.StatusFlagged {
			t.Errorf("Status = %q, want flagged", after.Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		if err := e.svc.SetFileStatus(ctx, rec.ID, "archived"); err == nil {
			t.Error("expected error for unknown status")
		}
	})

	t.Run("unknown file", func(t *testing.T) {
		if err := e.svc.SetFileStatus(ctx, "no-such-file", model.StatusReviewed); err == nil {
			t.Error("expected error for unknown file")
		}
	})
}

func TestTagFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.write(t, "a.txt", "alpha")
	e.sync(t)
	rec := e.fileAt(t, "a.txt")

	t.Run("set and clear", func(t *testing.T) {
		if err := e.svc.TagFile(ctx, rec.ID, []string{"malware", "stage-2"}); err != nil {
			t.Fatalf("TagFile() error = %v", err)
		}
		after, err := e.store.GetFile(ctx, rec.ID)
		if err != nil {
			t.Fatalf("GetFile() error = %v", err)
		}
		if after.Tags != `["malware","stage-2"]` {
			t.Errorf("Tags = %q, want JSON array", after.Tags)
		}

		if err := e.svc.TagFile(ctx, rec.ID, nil); err != nil {
			t.Fatalf("TagFile() clearing error = %v", err)
		}
		after, err = e.store.GetFile(ctx, rec.ID)
		if err != nil {
			t.Fatalf("GetFile() error = %v", err)
		}
		if after.Tags != "" {
			t.Errorf("Tags after clear = %q, want empty", after.Tags)
		}
	})

	t.Run("unknown file", func(t *testing.T) {
		if err := e.svc.TagFile(ctx, "no-such-file", []string{"x"}); err == nil {
			t.Error("expected error for unknown file")
		}
	})
}

func TestQueries_RejectUnknownCase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.GetHistory(ctx, "no-such-case", 10); err == nil {
		t.Error("GetHistory: expected error for unknown case")
	}
	if _, err := e.svc.DuplicateGroups(ctx, "no-such-case"); err == nil {
		t.Error("DuplicateGroups: expected error for unknown case")
	}
	if _, err := e.svc.CleanupSource(ctx, "no-such-case", e.sourceID); err == nil {
		t.Error("CleanupSource: expected error for unknown case")
	}
}
