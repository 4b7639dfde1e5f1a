package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Text(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "file", "run1")
	require.NoError(t, err)
	assertGolden(t, "file_text", stdout)
}

func TestFile_JSON(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "--format", "json", "file", "run2")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID        int64     `json:"id"`
			Name      string    `json:"name"`
			Path      string    `json:"path"`
			Timestamp time.Time `json:"timestamp"`
			Complete  bool      `json:"complete"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(2), resp.Data.ID)
	assert.Equal(t, "run2", resp.Data.Name)
	assert.Equal(t, "/sim/run2.eso", resp.Data.Path)
	assert.True(t, resp.Data.Timestamp.Equal(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, resp.Data.Complete)
}

func TestFile_NotFound(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "file", "run9")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, `file "run9" not found`, err.Error())
	assert.Empty(t, stdout)
}

func TestFile_NotFoundJSON(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "--format", "json", "file", "run9")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestFiles_Text(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "files")
	require.NoError(t, err)
	assertGolden(t, "files_text", stdout)
}

func TestFiles_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "results.db")

	stdout, _, err := execute(t, "--db", db, "files")
	require.NoError(t, err)
	assert.Equal(t, "No files stored.\n", stdout)

	stdout, _, err = execute(t, "--db", db, "--format", "json", "files")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"data": []`)
}

func TestExec_Text(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "exec", "SELECT name, path FROM files ORDER BY id")
	require.NoError(t, err)
	assertGolden(t, "exec_text", stdout)
}

func TestExec_JSON(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "--format", "json", "exec", "SELECT COUNT(*) AS n FROM variables")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Columns []string `json:"columns"`
			Rows    [][]any  `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, []string{"n"}, resp.Data.Columns)
	require.Len(t, resp.Data.Rows, 1)
	assert.EqualValues(t, 4, resp.Data.Rows[0][0])
}

func TestExec_NoResultSet(t *testing.T) {
	db := seededDB(t)

	stdout, _, err := execute(t, "--db", db, "exec", "DELETE FROM files WHERE name = 'run2'")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", stdout)

	stdout, _, err = execute(t, "--db", db, "exec", "SELECT COUNT(*) FROM variables")
	require.NoError(t, err)
	assert.Equal(t, "COUNT(*)\n3\n", stdout)
}

func TestExec_Error(t *testing.T) {
	db := seededDB(t)

	_, _, err := execute(t, "--db", db, "exec", "SELECT * FROM nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no such table")

	stdout, _, err := execute(t, "--db", db, "--format", "json", "exec", "SELECT * FROM nope")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStatement, resp.Error.Code)
}
