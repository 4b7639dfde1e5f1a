package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voightp/esofile-storage/internal/blob"
	"github.com/voightp/esofile-storage/internal/ir"
)

// timestampLayout is how capture timestamps are written to files.timestamp.
const timestampLayout = time.RFC3339Nano

// StoredFile summarises one stored file.
type StoredFile struct {
	Name      string `json:"name"`
	ID        int64  `json:"id"`
	Variables int    `json:"variables"`
}

// BatchReport is the outcome of one Store call.
type BatchReport struct {
	// BatchID correlates the log lines of one call (UUIDv7).
	BatchID string
	Stored  []StoredFile
	Failed  []*FileError
}

// OK reports whether every file was stored.
func (r *BatchReport) OK() bool {
	return len(r.Failed) == 0
}

// Err joins the per-file failures, or returns nil.
func (r *BatchReport) Err() error {
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// preparedFile is a file ready to insert: its row and encoded variables.
type preparedFile struct {
	record  ir.FileRecord
	entries []blob.Entry
}

// Store writes each file in its own transaction.
//
// A file that cannot be read or encoded, or whose name is already stored,
// is rolled back alone: the failure is logged and recorded in the report,
// and the next file is processed. The returned error is non-nil only when
// the engine itself fails or ctx is done; the report then lists what was
// stored before the failure.
func (s *Store) Store(ctx context.Context, files ...ir.ResultFile) (*BatchReport, error) {
	report := &BatchReport{
		BatchID: uuid.Must(uuid.NewV7()).String(),
		Stored:  []StoredFile{},
		Failed:  []*FileError{},
	}
	log := s.log.With("batch", report.BatchID)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("store: %w", err)
		}

		if f == nil {
			report.Failed = append(report.Failed, &FileError{Err: errors.New("nil result file")})
			log.Warn("file not stored", "error", "nil result file")
			continue
		}

		prepared, err := s.prepareFile(f)
		if err != nil {
			report.Failed = append(report.Failed, &FileError{Name: f.Name(), Err: err})
			log.Warn("file not stored", "file", f.Name(), "error", err)
			continue
		}

		id, err := s.insertFile(ctx, prepared)
		switch {
		case errors.Is(err, ErrDuplicateFile):
			report.Failed = append(report.Failed, &FileError{Name: f.Name(), Err: err})
			log.Warn("file not stored", "file", f.Name(), "error", err)
			continue
		case err != nil:
			return report, &FileError{Name: f.Name(), Err: err}
		}

		report.Stored = append(report.Stored, StoredFile{
			Name:      prepared.record.Name,
			ID:        id,
			Variables: len(prepared.entries),
		})
		log.Debug("file stored", "file", prepared.record.Name, "id", id, "variables", len(prepared.entries))
	}

	if !report.OK() {
		log.Warn("batch finished with failures", "stored", len(report.Stored), "failed", len(report.Failed))
	}
	return report, nil
}

// prepareFile reads every interval table of f and encodes its variables.
// Nothing touches the database here.
func (s *Store) prepareFile(f ir.ResultFile) (preparedFile, error) {
	if f.Name() == "" {
		return preparedFile{}, errors.New("file has no name")
	}

	p := preparedFile{
		record: ir.FileRecord{
			Path:      f.Path(),
			Name:      f.Name(),
			Timestamp: f.Timestamp().UTC(),
			Complete:  f.Complete(),
		},
	}

	for _, interval := range f.Intervals() {
		table, err := f.Table(interval)
		if err != nil {
			return preparedFile{}, fmt.Errorf("read %s table: %w", interval, err)
		}

		rows := make([]ir.Row, len(table.Rows))
		for i, row := range table.Rows {
			if row.Index.Interval == "" {
				row.Index.Interval = interval
			}
			row.Index.Descriptor = row.Index.Descriptor.Normalize()
			rows[i] = row
		}

		entries, err := blob.EncodeEntries(rows, blob.WithSeparator(s.cfg.Separator))
		if err != nil {
			return preparedFile{}, fmt.Errorf("encode %s table: %w", interval, err)
		}
		p.entries = append(p.entries, entries...)
	}

	return p, nil
}

// insertFile inserts the file row and all its variable rows in one
// transaction. A UNIQUE violation on the name is reported as
// ErrDuplicateFile.
func (s *Store) insertFile(ctx context.Context, p preparedFile) (int64, error) {
	var fileID int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := s.exec(ctx, tx, `
			INSERT INTO files (path, name, timestamp, complete)
			VALUES (?, ?, ?, ?)
		`,
			p.record.Path,
			p.record.Name,
			p.record.Timestamp.Format(timestampLayout),
			p.record.Complete,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrDuplicateFile, p.record.Name)
			}
			return fmt.Errorf("insert file: %w", err)
		}

		fileID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert file: last insert id: %w", err)
		}

		if len(p.entries) == 0 {
			return nil
		}

		const insertVariable = `
			INSERT INTO variables (var_id, file_id, "interval", "key", variable, units, vals)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.PrepareContext(ctx, insertVariable)
		if err != nil {
			return fmt.Errorf("prepare variable insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range p.entries {
			args := []any{
				e.ID.VarID,
				fileID,
				e.ID.Interval,
				e.ID.Key,
				e.ID.Variable,
				e.ID.Units,
				e.Blob,
			}
			s.echo(ctx, insertVariable, args)
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert variable %s: %w", e.ID.Descriptor, err)
			}
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err) && !errors.Is(err, ErrDuplicateFile) {
			// Commit-time uniqueness failure
			return 0, fmt.Errorf("%w: %q: %w", ErrDuplicateFile, p.record.Name, err)
		}
		return 0, err
	}

	return fileID, nil
}
