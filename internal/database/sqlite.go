package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casefile/internal/catalog"
	"casefile/internal/database/migrations"
	"casefile/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the catalog.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens a SQLite catalog at path (":memory:" for an
// in-memory catalog) and verifies the schema is current.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection. Foreign keys are
// enforced and writers wait for locks instead of failing immediately.
// In-memory databases are pinned to a single connection: every pooled
// connection would otherwise see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Case operations

func (s *SQLiteStore) CreateCase(ctx context.Context, c *model.Case) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cases (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting case: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCase(ctx context.Context, id string) (*model.Case, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM cases WHERE id = ?`, id)

	var c model.Case
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading case: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCases(ctx context.Context) ([]*model.Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM cases ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	var cases []*model.Case
	for rows.Next() {
		var c model.Case
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		cases = append(cases, &c)
	}
	return cases, rows.Err()
}

// Source operations

func (s *SQLiteStore) CreateSource(ctx context.Context, src *model.Source) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (id, case_id, path, location, added_at) VALUES (?, ?, ?, ?, ?)`,
		src.ID, src.CaseID, src.Path, src.Location, src.AddedAt)
	if err != nil {
		return fmt.Errorf("inserting source: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSource(ctx context.Context, id string) (*model.Source, error) {
	return s.scanSource(s.db.QueryRowContext(ctx,
		`SELECT id, case_id, path, location, added_at FROM sources WHERE id = ?`, id))
}

func (s *SQLiteStore) FindSourceByPath(ctx context.Context, caseID, path string) (*model.Source, error) {
	return s.scanSource(s.db.QueryRowContext(ctx,
		`SELECT id, case_id, path, location, added_at FROM sources WHERE case_id = ? AND path = ?`,
		caseID, path))
}

func (s *SQLiteStore) ListSources(ctx context.Context, caseID string) ([]*model.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, case_id, path, location, added_at FROM sources WHERE case_id = ? ORDER BY added_at, id`,
		caseID)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		var src model.Source
		if err := rows.Scan(&src.ID, &src.CaseID, &src.Path, &src.Location, &src.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

func (s *SQLiteStore) scanSource(row *sql.Row) (*model.Source, error) {
	var src model.Source
	if err := row.Scan(&src.ID, &src.CaseID, &src.Path, &src.Location, &src.AddedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading source: %w", err)
	}
	return &src, nil
}

// File operations

const fileColumns = `id, case_id, source_id, name, folder_path, absolute_path,
	fingerprint, size, created_at, modified_at, updated_at, status, tags, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.FileRecord, error) {
	var (
		rec         model.FileRecord
		fingerprint sql.NullString
		tags        sql.NullString
		deletedAt   sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.CaseID, &rec.SourceID, &rec.Name, &rec.FolderPath,
		&rec.AbsolutePath, &fingerprint, &rec.Size, &rec.CreatedAt, &rec.ModifiedAt,
		&rec.UpdatedAt, &rec.Status, &tags, &deletedAt)
	if err != nil {
		return nil, err
	}
	rec.Fingerprint = fingerprint.String
	rec.Tags = tags.String
	if deletedAt.Valid {
		t := deletedAt.Time
		rec.DeletedAt = &t
	}
	return &rec, nil
}

func (s *SQLiteStore) queryFiles(ctx context.Context, query string, queryArgs ...any) ([]*model.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, rec)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*model.FileRecord, error) {
	rec, err := scanFile(s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading file: %w", err)
	}
	return rec, nil
}

// FindFileByPath prefers the live row at a path; when only soft-deleted rows
// remain, the most recently updated one is returned so the classifier can
// honor the user's removal.
func (s *SQLiteStore) FindFileByPath(ctx context.Context, caseID, absolutePath string) (*model.FileRecord, error) {
	rec, err := scanFile(s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE case_id = ? AND absolute_path = ?
		 ORDER BY (deleted_at IS NULL) DESC, updated_at DESC
		 LIMIT 1`,
		caseID, absolutePath))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding file by path: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) FindFilesByFingerprint(ctx context.Context, caseID, sourceID, fingerprint, excludePath string) ([]*model.FileRecord, error) {
	files, err := s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE case_id = ? AND source_id = ? AND fingerprint = ?
		   AND absolute_path != ? AND deleted_at IS NULL
		 ORDER BY created_at, id`,
		caseID, sourceID, fingerprint, excludePath)
	if err != nil {
		return nil, fmt.Errorf("finding files by fingerprint: %w", err)
	}
	return files, nil
}

func (s *SQLiteStore) FindLocalFilesByFingerprint(ctx context.Context, caseID, fingerprint, excludeFileID string) ([]*model.FileRecord, error) {
	files, err := s.queryFiles(ctx,
		`SELECT f.id, f.case_id, f.source_id, f.name, f.folder_path, f.absolute_path,
		        f.fingerprint, f.size, f.created_at, f.modified_at, f.updated_at,
		        f.status, f.tags, f.deleted_at
		 FROM files f
		 INNER JOIN sources s ON s.id = f.source_id
		 WHERE f.case_id = ? AND f.fingerprint = ? AND f.id != ?
		   AND f.deleted_at IS NULL AND s.location = 'local'
		 ORDER BY f.created_at, f.id`,
		caseID, fingerprint, excludeFileID)
	if err != nil {
		return nil, fmt.Errorf("finding local files by fingerprint: %w", err)
	}
	return files, nil
}

func (s *SQLiteStore) ListFilesBySource(ctx context.Context, caseID, sourceID string) ([]*model.FileRecord, error) {
	files, err := s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE case_id = ? AND source_id = ? AND deleted_at IS NULL
		 ORDER BY absolute_path`,
		caseID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing files by source: %w", err)
	}
	return files, nil
}

func (s *SQLiteStore) InsertFiles(ctx context.Context, files []*model.FileRecord, details []*model.FileDetail, now time.Time) error {
	if len(files) == 0 {
		return nil
	}
	if len(details) != len(files) {
		return fmt.Errorf("insert batch mismatch: %d files, %d details", len(files), len(details))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	fileStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (id, case_id, source_id, name, folder_path, absolute_path,
		                    fingerprint, size, created_at, modified_at, updated_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing file insert: %w", err)
	}
	defer fileStmt.Close()

	detailStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO file_details (file_id, inventory_data, last_scanned_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing detail insert: %w", err)
	}
	defer detailStmt.Close()

	for i, f := range files {
		_, err := fileStmt.ExecContext(ctx,
			f.ID, f.CaseID, f.SourceID, f.Name, f.FolderPath, f.AbsolutePath,
			nullString(f.Fingerprint), f.Size, f.CreatedAt, f.ModifiedAt, now, f.Status)
		if err != nil {
			return fmt.Errorf("inserting file %s: %w", f.AbsolutePath, err)
		}
		if _, err := detailStmt.ExecContext(ctx, f.ID, details[i].InventoryData, now); err != nil {
			return fmt.Errorf("inserting details for %s: %w", f.AbsolutePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing inserts: %w", err)
	}
	return nil
}

// UpdateFiles applies path, fingerprint, size and timestamp changes in one
// transaction. When the content actually changed, rows in status reviewed or
// flagged are demoted to in_progress: the review no longer stands. A rename
// arrives with the stored fingerprint intact and keeps its status.
func (s *SQLiteStore) UpdateFiles(ctx context.Context, files []*model.FileRecord, details []*model.FileDetail, now time.Time) error {
	if len(files) == 0 {
		return nil
	}
	if len(details) != len(files) {
		return fmt.Errorf("update batch mismatch: %d files, %d details", len(files), len(details))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for i, f := range files {
		var (
			status string
			stored sql.NullString
		)
		if err := tx.QueryRowContext(ctx, `SELECT status, fingerprint FROM files WHERE id = ?`, f.ID).Scan(&status, &stored); err != nil {
			return fmt.Errorf("loading status for %s: %w", f.ID, err)
		}

		// A matching fingerprint means the content is provably unchanged (a
		// rename). An empty incoming fingerprint means the change could not
		// be verified, which counts as a content change.
		contentChanged := f.Fingerprint == "" || f.Fingerprint != stored.String
		if contentChanged && (status == model.StatusReviewed || status == model.StatusFlagged) {
			status = model.StatusInProgress
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE files SET name = ?, folder_path = ?, absolute_path = ?, fingerprint = ?,
			                  size = ?, created_at = ?, modified_at = ?, updated_at = ?, status = ?
			 WHERE id = ?`,
			f.Name, f.FolderPath, f.AbsolutePath, nullString(f.Fingerprint),
			f.Size, f.CreatedAt, f.ModifiedAt, now, status, f.ID)
		if err != nil {
			return fmt.Errorf("updating file %s: %w", f.ID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO file_details (file_id, inventory_data, last_scanned_at) VALUES (?, ?, ?)
			 ON CONFLICT(file_id) DO UPDATE SET inventory_data = excluded.inventory_data,
			                                    last_scanned_at = excluded.last_scanned_at`,
			f.ID, details[i].InventoryData, now)
		if err != nil {
			return fmt.Errorf("updating details for %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing updates: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetFileStatus(ctx context.Context, id, status string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE files SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	if err != nil {
		return fmt.Errorf("setting file status: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetFileTags(ctx context.Context, id, tags string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE files SET tags = ?, updated_at = ? WHERE id = ?`, nullString(tags), now, id)
	if err != nil {
		return fmt.Errorf("setting file tags: %w", err)
	}
	return nil
}

// Cleanup support

func (s *SQLiteStore) FilesWithNonDefaultStatus(ctx context.Context, caseID string, ids []string) ([]string, error) {
	var out []string
	err := forEachChunk(ids, maxBatchParams, func(chunk []string) error {
		query := `SELECT id FROM files WHERE case_id = ? AND status != ? AND id IN (` + placeholders(len(chunk)) + `)`
		return s.collectIDs(ctx, &out, query, args([]any{caseID, model.StatusUnreviewed}, chunk)...)
	})
	if err != nil {
		return nil, fmt.Errorf("checking file status: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) FilesWithNotes(ctx context.Context, caseID string, ids []string) ([]string, error) {
	var out []string
	err := forEachChunk(ids, maxBatchParams, func(chunk []string) error {
		query := `SELECT DISTINCT file_id FROM notes
		          WHERE case_id = ? AND file_id IS NOT NULL AND file_id IN (` + placeholders(len(chunk)) + `)`
		return s.collectIDs(ctx, &out, query, args([]any{caseID}, chunk)...)
	})
	if err != nil {
		return nil, fmt.Errorf("checking notes: %w", err)
	}
	return out, nil
}

// FilesLinkedToFindings scans the findings' linked-file JSON arrays. The
// linkage lives in JSON rather than a join table, so the filtering happens
// here instead of in SQL.
func (s *SQLiteStore) FilesLinkedToFindings(ctx context.Context, caseID string, ids []string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT linked_files FROM findings WHERE case_id = ? AND linked_files IS NOT NULL`, caseID)
	if err != nil {
		return nil, fmt.Errorf("checking findings: %w", err)
	}
	defer rows.Close()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning finding links: %w", err)
		}
		var linked []string
		if err := json.Unmarshal([]byte(raw), &linked); err != nil {
			continue // malformed rows never block cleanup
		}
		for _, id := range linked {
			if _, ok := wanted[id]; !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SoftDeleteFiles(ctx context.Context, ids []string, deletedAt time.Time) (int, error) {
	total := 0
	err := forEachChunk(ids, maxBatchParams, func(chunk []string) error {
		query := `UPDATE files SET deleted_at = ? WHERE deleted_at IS NULL AND id IN (` + placeholders(len(chunk)) + `)`
		res, err := s.db.ExecContext(ctx, query, args([]any{deletedAt}, chunk)...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		total += int(n)
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("soft-deleting files: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) collectIDs(ctx context.Context, out *[]string, query string, queryArgs ...any) error {
	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		*out = append(*out, id)
	}
	return rows.Err()
}

// Duplicate group operations

func (s *SQLiteStore) GroupMemberCount(ctx context.Context, groupID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM duplicate_group_members WHERE group_id = ?`, groupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting group members: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) GroupMembers(ctx context.Context, groupID string) ([]*model.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, file_id, is_primary, created_at FROM duplicate_group_members
		 WHERE group_id = ?
		 ORDER BY is_primary DESC, created_at, file_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing group members: %w", err)
	}
	defer rows.Close()

	var members []*model.GroupMember
	for rows.Next() {
		var m model.GroupMember
		if err := rows.Scan(&m.GroupID, &m.FileID, &m.IsPrimary, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (s *SQLiteStore) AddGroupMembers(ctx context.Context, members []*model.GroupMember) error {
	if len(members) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO duplicate_group_members (group_id, file_id, is_primary, created_at)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing member insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range members {
		if _, err := stmt.ExecContext(ctx, m.GroupID, m.FileID, m.IsPrimary, m.CreatedAt); err != nil {
			return fmt.Errorf("inserting group member %s: %w", m.FileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing group members: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListGroupIDs(ctx context.Context, caseID string) ([]string, error) {
	var out []string
	err := s.collectIDs(ctx, &out,
		`SELECT DISTINCT m.group_id FROM duplicate_group_members m
		 INNER JOIN files f ON f.id = m.file_id
		 WHERE f.case_id = ?
		 ORDER BY m.group_id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing group ids: %w", err)
	}
	return out, nil
}

// Annotation operations

func (s *SQLiteStore) CreateNote(ctx context.Context, n *model.Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, case_id, file_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.CaseID, nullString(n.FileID), n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateFinding(ctx context.Context, f *model.Finding) error {
	var linked any
	if len(f.LinkedFiles) > 0 {
		raw, err := json.Marshal(f.LinkedFiles)
		if err != nil {
			return fmt.Errorf("encoding linked files: %w", err)
		}
		linked = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO findings (id, case_id, title, description, severity, linked_files, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CaseID, f.Title, f.Description, f.Severity, linked, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting finding: %w", err)
	}
	return nil
}

// Sync run history

func (s *SQLiteStore) CreateSyncRun(ctx context.Context, run *model.SyncRun) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (case_id, source_id, started_at, status) VALUES (?, ?, ?, ?)`,
		run.CaseID, run.SourceID, run.StartedAt, run.Status)
	if err != nil {
		return 0, fmt.Errorf("inserting sync run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading sync run id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) FinishSyncRun(ctx context.Context, run *model.SyncRun) error {
	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET finished_at = ?, inserted = ?, updated = ?, skipped = ?, failed = ?, status = ?
		 WHERE id = ?`,
		finished, run.Inserted, run.Updated, run.Skipped, run.Failed, run.Status, run.ID)
	if err != nil {
		return fmt.Errorf("finishing sync run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSyncRuns(ctx context.Context, caseID string, limit int) ([]*model.SyncRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, case_id, source_id, started_at, finished_at, inserted, updated, skipped, failed, status
		 FROM sync_runs WHERE case_id = ? ORDER BY id DESC LIMIT ?`,
		caseID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.SyncRun
	for rows.Next() {
		var (
			run      model.SyncRun
			finished sql.NullTime
		)
		err := rows.Scan(&run.ID, &run.CaseID, &run.SourceID, &run.StartedAt, &finished,
			&run.Inserted, &run.Updated, &run.Skipped, &run.Failed, &run.Status)
		if err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Path returns the database file path (empty for wrapped connections).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the catalog schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// BackupTo writes a complete copy of the catalog to destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec(`VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("backing up catalog: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// Compile-time check that SQLiteStore implements catalog.Store.
var _ catalog.Store = (*SQLiteStore)(nil)
