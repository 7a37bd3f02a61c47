// Package importer loads historical training logs from CSV exports into
// the database. Already-imported files are skipped via a local SQLite
// state database keyed on path, size, and content hash.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsCreated int
	SetsInserted    int64
	SetsDuplicated  int64
}

// Importer reads CSV files from a directory and inserts sessions and set
// records into the DB.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	state  *StateDB
	userID int
	dryRun bool
	stats  Stats

	// exerciseIDs caches name-to-ID lookups across files.
	exerciseIDs map[string]uuid.UUID
}

// New creates a new Importer. state may be nil, disabling file-level
// dedup (set records are still key-deduplicated by the database).
func New(db *storage.DB, state *StateDB, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{
		db:          db,
		log:         log,
		state:       state,
		userID:      userID,
		dryRun:      dryRun,
		exerciseIDs: make(map[string]uuid.UUID),
	}
}

// Import processes all .csv files under dir.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		skip, err := imp.alreadyImported(f)
		if err != nil {
			return &imp.stats, err
		}
		if skip {
			imp.stats.FilesSkipped++
			continue
		}

		if err := imp.importFile(ctx, f); err != nil {
			imp.log.Warn("import failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imp.stats.FilesProcessed++

		if imp.state != nil && !imp.dryRun {
			if err := imp.markImported(f); err != nil {
				return &imp.stats, err
			}
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) alreadyImported(path string) (bool, error) {
	if imp.state == nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return false, fmt.Errorf("hashing %s: %w", path, err)
	}
	return imp.state.IsImported(filepath.Base(path), info.Size(), hash)
}

func (imp *Importer) markImported(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	return imp.state.MarkImported(filepath.Base(path), info.Size(), hash)
}

// importFile parses one CSV and writes its sessions.
func (imp *Importer) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil
	}

	for _, group := range groupSessions(rows) {
		if err := imp.importSession(ctx, group); err != nil {
			return fmt.Errorf("session %s: %w", group.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (imp *Importer) importSession(ctx context.Context, group sessionGroup) error {
	recs := make([]models.SetRecord, 0, len(group.Rows))
	for _, row := range group.Rows {
		exID, err := imp.exerciseID(ctx, row.Exercise)
		if err != nil {
			return err
		}
		recs = append(recs, models.SetRecord{
			ID:           uuid.New(),
			ExerciseID:   exID,
			SetNumber:    row.SetNumber,
			SetType:      row.SetType,
			WeightKg:     row.WeightKg,
			Reps:         row.Reps,
			RIR:          row.RIR,
			Estimated1RM: formula.Estimate1RM(row.WeightKg, row.Reps),
			LoggedAt:     row.Date,
		})
	}

	if imp.dryRun {
		imp.stats.SessionsCreated++
		imp.stats.SetsInserted += int64(len(recs))
		return nil
	}

	sessionID := uuid.New()
	if err := imp.db.CreateSession(ctx, imp.userID, sessionID, nil, group.Date); err != nil {
		return err
	}
	inserted, err := imp.db.InsertSetRecords(ctx, imp.userID, sessionID, recs)
	if err != nil {
		return err
	}
	if err := imp.db.CloseSession(ctx, imp.userID, sessionID, 0, ""); err != nil {
		return err
	}

	imp.stats.SessionsCreated++
	imp.stats.SetsInserted += inserted
	imp.stats.SetsDuplicated += int64(len(recs)) - inserted
	return nil
}

func (imp *Importer) exerciseID(ctx context.Context, name string) (uuid.UUID, error) {
	if id, ok := imp.exerciseIDs[name]; ok {
		return id, nil
	}
	if imp.dryRun {
		id := uuid.New()
		imp.exerciseIDs[name] = id
		return id, nil
	}
	id, err := imp.db.UpsertExercise(ctx, models.Exercise{ID: uuid.New(), Name: name})
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving exercise %q: %w", name, err)
	}
	imp.exerciseIDs[name] = id
	return id, nil
}
