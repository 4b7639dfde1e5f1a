package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// withTx runs fn inside a transaction: begin, fn, commit. Any error from fn
// or from commit rolls back, and the transaction is always released.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CreateTables creates the files and variables tables and their indexes.
// This function is idempotent: a database already at the current schema
// version with both tables present is left untouched.
func (s *Store) CreateTables(ctx context.Context) error {
	var version int
	if err := s.queryRow(ctx, s.db, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if version == currentSchemaVersion {
		present, err := s.hasSchema(ctx)
		if err != nil {
			return err
		}
		if present {
			s.log.Debug("schema up to date", "version", version)
			return nil
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, schemaSQL); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
		if _, err := s.exec(ctx, tx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("schema created", "version", currentSchemaVersion)
	return nil
}

// DropTables removes both tables and every stored record.
func (s *Store) DropTables(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// variables first: it references files
		for _, table := range []string{"variables", "files"} {
			if _, err := s.exec(ctx, tx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("drop %s: %w", table, err)
			}
		}
		if _, err := s.exec(ctx, tx, "PRAGMA user_version = 0"); err != nil {
			return fmt.Errorf("reset user_version: %w", err)
		}
		return nil
	})
}

// hasSchema reports whether both tables exist.
func (s *Store) hasSchema(ctx context.Context) (bool, error) {
	var count int
	err := s.queryRow(ctx, s.db, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('files', 'variables')
	`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check schema: %w", err)
	}
	return count == 2, nil
}

// DeleteDB closes the store and removes the database file along with its
// WAL and shared-memory siblings. For an in-memory store it only closes.
// The Store must not be used afterwards.
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("delete db: close: %w", err)
	}
	if s.cfg.InMemory() {
		return nil
	}

	var errs []error
	for _, p := range []string{s.cfg.Path, s.cfg.Path + "-wal", s.cfg.Path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("delete db: %w", err)
	}

	s.log.Info("database deleted", "path", s.cfg.Path)
	return nil
}
