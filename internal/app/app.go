package app

import (
	"fmt"
	"os"
	"time"

	"casefile/internal/catalog"
	"casefile/internal/config"
	"casefile/internal/database"
	"casefile/internal/encryption"
	"casefile/internal/fs"
	"casefile/internal/source"
)

// App is the application layer between the CLI and the catalog Service.
// It constructs all dependencies from config and manages the store
// lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	fsmgr   catalog.FilesystemManager
	service *catalog.Service
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapted := &slogAdapter{l: logger}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore, cfg.Sync.WalkConcurrency, adapted)

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating catalog store: %w", err)
	}

	remotes := source.NewListerFactory(cfg.Remotes)

	svc := catalog.NewService(store, fsmgr, remotes, adapted,
		catalog.RealClock{}, catalog.UUIDGenerator{}, cfg.Sync.Workers)

	return &App{
		cfg:     cfg,
		store:   store,
		fsmgr:   fsmgr,
		service: svc,
		logFile: logFile,
	}, nil
}

// Service returns the catalog engine.
func (a *App) Service() *catalog.Service {
	return a.service
}

// Store returns the underlying catalog store.
func (a *App) Store() *database.SQLiteStore {
	return a.store
}

// Backup writes an age-encrypted snapshot of the catalog database to destPath.
// The snapshot is taken with VACUUM INTO, so it is consistent even while the
// database is open.
func (a *App) Backup(destPath, passphrase string) error {
	tmpFile, err := os.CreateTemp("", "casefile-backup-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for backup: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath) // VACUUM INTO refuses to overwrite an existing file
	defer os.Remove(tmpPath)

	if err := a.store.BackupTo(tmpPath); err != nil {
		return err
	}

	snapshot, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer snapshot.Close()

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer dest.Close()

	if err := encryption.EncryptWithPassphrase(snapshot, dest, passphrase); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}

// Restore decrypts an encrypted catalog backup into destPath. The running
// store is not touched; the caller points the config at the restored file.
func Restore(archivePath, destPath, passphrase string) error {
	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening backup archive: %w", err)
	}
	defer archive.Close()

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating restored database: %w", err)
	}
	defer dest.Close()

	if err := encryption.DecryptWithPassphrase(archive, dest, passphrase); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}

// Close closes the store and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
