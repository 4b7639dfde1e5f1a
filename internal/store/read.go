package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voightp/esofile-storage/internal/blob"
	"github.com/voightp/esofile-storage/internal/ir"
)

// FetchFile returns the stored file named name.
// Returns nil, nil if no such file exists.
func (s *Store) FetchFile(ctx context.Context, name string) (*ir.FileRecord, error) {
	row := s.queryRow(ctx, s.db, `
		SELECT id, path, name, timestamp, complete
		FROM files
		WHERE name = ?
	`, name)

	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch file %q: %w", name, err)
	}
	return &rec, nil
}

// ListFiles returns every stored file ordered by id.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListFiles(ctx context.Context) ([]ir.FileRecord, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT id, path, name, timestamp, complete
		FROM files
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files := []ir.FileRecord{}
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// FetchVariables returns the variable records of fileName matching any of
// descriptors, in descriptor order and by id within one descriptor.
//
// A record matched by several descriptors is returned once per match.
// No descriptors matches every variable. An unknown file yields an empty
// slice, not an error.
func (s *Store) FetchVariables(ctx context.Context, fileName string, descriptors ...ir.Descriptor) ([]ir.VariableRecord, error) {
	query, params, err := s.compiler.Compile(resolveDescriptors(fileName, descriptors))
	if err != nil {
		return nil, fmt.Errorf("resolve descriptors: %w", err)
	}

	records := []ir.VariableRecord{}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := s.query(ctx, tx, query, params...)
		if err != nil {
			return fmt.Errorf("query variables: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanVariable(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate variables: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch variables of %q: %w", fileName, err)
	}

	return records, nil
}

// Fetch returns the decoded table of every variable of fileName matching
// any of descriptors.
//
// Records are grouped by interval in order of first appearance, each group
// is decoded on its own and the groups are joined column-wise. Groups that
// disagree on sample count cannot form one table: Fetch then fails with an
// error wrapping blob.ErrSampleCount and FetchByInterval should be used.
// No match yields an empty table and a nil error.
func (s *Store) Fetch(ctx context.Context, fileName string, descriptors ...ir.Descriptor) (*ir.Table, error) {
	groups, order, err := s.fetchGroups(ctx, fileName, descriptors)
	if err != nil {
		return nil, err
	}

	tables := make([]*ir.Table, 0, len(order))
	for _, interval := range order {
		t, err := s.decode(fileName, interval, groups[interval])
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	table, err := blob.Combine(tables...)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: combine intervals %v: %w", fileName, order, err)
	}
	return table, nil
}

// FetchByInterval is Fetch without the final combination: one table per
// matched interval. The map is empty when nothing matched.
func (s *Store) FetchByInterval(ctx context.Context, fileName string, descriptors ...ir.Descriptor) (map[string]*ir.Table, error) {
	groups, order, err := s.fetchGroups(ctx, fileName, descriptors)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*ir.Table, len(order))
	for _, interval := range order {
		t, err := s.decode(fileName, interval, groups[interval])
		if err != nil {
			return nil, err
		}
		out[interval] = t
	}
	return out, nil
}

// fetchGroups resolves descriptors and buckets the matched records by
// interval, returning the intervals in order of first appearance.
func (s *Store) fetchGroups(ctx context.Context, fileName string, descriptors []ir.Descriptor) (map[string][]blob.Entry, []string, error) {
	records, err := s.FetchVariables(ctx, fileName, descriptors...)
	if err != nil {
		return nil, nil, err
	}

	groups := make(map[string][]blob.Entry)
	var order []string
	for _, r := range records {
		if _, ok := groups[r.Interval]; !ok {
			order = append(order, r.Interval)
		}
		groups[r.Interval] = append(groups[r.Interval], blob.Entry{ID: r.Ident(), Blob: r.Blob})
	}
	return groups, order, nil
}

func (s *Store) decode(fileName, interval string, entries []blob.Entry) (*ir.Table, error) {
	t, err := blob.Decode(entries, blob.WithSeparator(s.cfg.Separator))
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %s: %w", fileName, interval, err)
	}
	return t, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFile(sc scanner) (ir.FileRecord, error) {
	var (
		rec ir.FileRecord
		ts  string
	)
	if err := sc.Scan(&rec.ID, &rec.Path, &rec.Name, &ts, &rec.Complete); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.FileRecord{}, err
		}
		return ir.FileRecord{}, fmt.Errorf("scan file: %w", err)
	}

	parsed, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return ir.FileRecord{}, fmt.Errorf("scan file %q: timestamp: %w", rec.Name, err)
	}
	rec.Timestamp = parsed
	return rec, nil
}

// scanVariable reads one row produced by resolveDescriptors.
func scanVariable(sc scanner) (ir.VariableRecord, error) {
	var (
		rec      ir.VariableRecord
		fileName string
	)
	err := sc.Scan(
		&rec.ID,
		&rec.VarID,
		&rec.FileID,
		&rec.Interval,
		&rec.Key,
		&rec.Variable,
		&rec.Units,
		&rec.Blob,
		&fileName,
	)
	if err != nil {
		return ir.VariableRecord{}, fmt.Errorf("scan variable: %w", err)
	}
	return rec, nil
}
