package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s := createTestStoreWith(t, Config{Path: path})

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Create database
	s1, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	// Reopen database
	s2 := createTestStoreWith(t, Config{Path: path})

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM variables").Scan(&count); err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(Config{Path: path})
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s := createTestStoreWith(t, Config{Path: path})

	// Verify schema is intact
	for _, table := range []string{"files", "variables"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(Config{Path: "/nonexistent/dir/test.db"})
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unknown driver", Config{Driver: "postgres"}, "unsupported driver"},
		{"negative busy timeout", Config{BusyTimeout: -time.Second}, "busy timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestOpen_InMemory(t *testing.T) {
	for _, path := range []string{"", MemoryPath} {
		s := createTestStoreWith(t, Config{Path: path})

		if !s.cfg.InMemory() {
			t.Errorf("path %q: expected in-memory store", path)
		}
		if s.Path() != MemoryPath {
			t.Errorf("Path() = %q, want %q", s.Path(), MemoryPath)
		}

		ok, err := s.hasSchema(context.Background())
		if err != nil {
			t.Fatalf("hasSchema() failed: %v", err)
		}
		if !ok {
			t.Errorf("path %q: schema missing on in-memory store", path)
		}
	}
}

func TestOpen_PureGoDriver(t *testing.T) {
	s := createTestStoreWith(t, Config{
		Path:   filepath.Join(t.TempDir(), "test.db"),
		Driver: DriverPure,
	})

	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_JournalModeInMemory(t *testing.T) {
	s := createTestStoreWith(t, Config{Path: MemoryPath})

	if err := s.verifyPragma("journal_mode", "memory"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_CustomBusyTimeout(t *testing.T) {
	s := createTestStoreWith(t, Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 250 * time.Millisecond,
	})

	if err := s.verifyPragma("busy_timeout", "250"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)

	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_FilesTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "files")
	for _, col := range []string{"id", "path", "name", "timestamp", "complete"} {
		if !contains(columns, col) {
			t.Errorf("files table missing column %q, got %v", col, columns)
		}
	}
}

func TestSchema_VariablesTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "variables")
	for _, col := range []string{"id", "var_id", "file_id", "interval", "key", "variable", "units", "vals"} {
		if !contains(columns, col) {
			t.Errorf("variables table missing column %q, got %v", col, columns)
		}
	}
}

func TestSchema_VariablesIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "variables")
	expected := []string{
		"idx_variables_file_id",
		"idx_variables_interval",
		"idx_variables_key",
		"idx_variables_variable",
		"idx_variables_units",
	}
	for _, idx := range expected {
		if !contains(indexes, idx) {
			t.Errorf("variables table missing index %q, got %v", idx, indexes)
		}
	}
}

func TestConstraint_FileNameUnique(t *testing.T) {
	for _, driver := range []string{DriverCGo, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			s := createTestStoreWith(t, Config{Path: filepath.Join(t.TempDir(), "test.db"), Driver: driver})

			insert := "INSERT INTO files (path, name, timestamp, complete) VALUES ('/a', 'run1', '2024-01-01T00:00:00Z', 1)"
			if _, err := s.db.Exec(insert); err != nil {
				t.Fatalf("first insert failed: %v", err)
			}

			_, err := s.db.Exec(insert)
			if err == nil {
				t.Fatal("expected UNIQUE violation, got nil")
			}
			if !isUniqueViolation(err) {
				t.Errorf("isUniqueViolation(%v) = false, want true", err)
			}
		})
	}
}

func TestConstraint_ForeignKeyVariableToFile(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO variables (var_id, file_id, "interval", "key", variable, units, vals)
		VALUES (1, 999, 'hourly', 'ZONE1', 'T', 'C', '1')
	`)
	if err == nil {
		t.Error("expected foreign key violation, got nil")
	}
	if isUniqueViolation(err) {
		t.Error("foreign key violation reported as UNIQUE violation")
	}
}

func TestConstraint_DeleteFileCascades(t *testing.T) {
	s := createTestStore(t)
	mustStore(t, s, zoneTemperatures("run1"))

	if _, err := s.db.Exec("DELETE FROM files WHERE name = 'run1'"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM variables").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("variables left after file delete: %d", count)
	}
}

// Schema version tests

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestMigration_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open(DriverCGo, path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	_, err = Open(Config{Path: path})
	if err == nil {
		t.Fatal("expected error for newer schema version, got nil")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("unexpected error: %v", err)
	}
}

// Lifecycle tests

func TestLifecycle_DropAndCreateTables(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	mustStore(t, s, zoneTemperatures("run1"))

	if err := s.DropTables(ctx); err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	ok, err := s.hasSchema(ctx)
	if err != nil {
		t.Fatalf("hasSchema() failed: %v", err)
	}
	if ok {
		t.Error("schema still present after DropTables()")
	}

	// Dropping twice is harmless
	if err := s.DropTables(ctx); err != nil {
		t.Errorf("second DropTables() failed: %v", err)
	}

	if err := s.CreateTables(ctx); err != nil {
		t.Fatalf("CreateTables() failed: %v", err)
	}
	ok, err = s.hasSchema(ctx)
	if err != nil {
		t.Fatalf("hasSchema() failed: %v", err)
	}
	if !ok {
		t.Error("schema missing after CreateTables()")
	}

	// Recreated schema is empty
	rec, err := s.FetchFile(ctx, "run1")
	if err != nil {
		t.Fatalf("FetchFile() failed: %v", err)
	}
	if rec != nil {
		t.Errorf("FetchFile() after drop = %+v, want nil", rec)
	}
}

func TestLifecycle_CreateTablesIdempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	mustStore(t, s, zoneTemperatures("run1"))

	if err := s.CreateTables(ctx); err != nil {
		t.Fatalf("CreateTables() failed: %v", err)
	}

	rec, err := s.FetchFile(ctx, "run1")
	if err != nil {
		t.Fatalf("FetchFile() failed: %v", err)
	}
	if rec == nil {
		t.Error("CreateTables() on existing schema lost data")
	}
}

func TestLifecycle_CreateTablesLeavesCurrentSchema(t *testing.T) {
	ctx := context.Background()
	logger, buf := captureLogger()
	s := createTestStoreWith(t, Config{Path: MemoryPath, Echo: true, Logger: logger})

	buf.Reset()
	if err := s.CreateTables(ctx); err != nil {
		t.Fatalf("CreateTables() failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "schema up to date") {
		t.Errorf("expected schema to be reported up to date, got %s", out)
	}
	if strings.Contains(out, "CREATE TABLE") {
		t.Errorf("CreateTables() re-ran DDL on a current schema: %s", out)
	}

	if err := s.DropTables(ctx); err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	buf.Reset()
	if err := s.CreateTables(ctx); err != nil {
		t.Fatalf("CreateTables() failed: %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, "CREATE TABLE") || !strings.Contains(out, "schema created") {
		t.Errorf("expected schema to be created after DropTables(), got %s", out)
	}
}

func TestLifecycle_DeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	mustStore(t, s, zoneTemperatures("run1"))

	if err := s.DeleteDB(); err != nil {
		t.Fatalf("DeleteDB() failed: %v", err)
	}

	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists after DeleteDB()", p)
		}
	}
}

func TestLifecycle_DeleteDBInMemory(t *testing.T) {
	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.DeleteDB(); err != nil {
		t.Errorf("DeleteDB() on in-memory store failed: %v", err)
	}
}

// Echo tests

func TestEcho_LogsStatements(t *testing.T) {
	logger, buf := captureLogger()
	s := createTestStoreWith(t, Config{Path: MemoryPath, Echo: true, Logger: logger})

	if _, err := s.FetchFile(context.Background(), "run1"); err != nil {
		t.Fatalf("FetchFile() failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"msg":"sql"`) {
		t.Errorf("expected sql log lines, got %s", out)
	}
	if !strings.Contains(out, "FROM files") {
		t.Errorf("expected files query to be echoed, got %s", out)
	}
}

func TestEcho_LogsEachVariableInsert(t *testing.T) {
	logger, buf := captureLogger()
	s := createTestStoreWith(t, Config{Path: MemoryPath, Echo: true, Logger: logger})

	buf.Reset()
	mustStore(t, s, zoneTemperatures("run1"))

	var inserts int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.Contains(line, "INSERT INTO variables") {
			continue
		}
		inserts++
		if strings.Contains(line, `"args":null`) {
			t.Errorf("variable insert echoed without arguments: %s", line)
		}
	}
	if inserts != 4 {
		t.Errorf("echoed %d variable inserts, want 4", inserts)
	}
	if !strings.Contains(buf.String(), `"ZONE2"`) {
		t.Errorf("expected insert arguments in echo, got %s", buf.String())
	}
}

func TestEcho_OffByDefault(t *testing.T) {
	logger, buf := captureLogger()
	s := createTestStoreWith(t, Config{Path: MemoryPath, Logger: logger})

	if _, err := s.FetchFile(context.Background(), "run1"); err != nil {
		t.Fatalf("FetchFile() failed: %v", err)
	}

	if strings.Contains(buf.String(), `"msg":"sql"`) {
		t.Errorf("statements echoed with Echo off: %s", buf.String())
	}
}

// Helper functions

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
