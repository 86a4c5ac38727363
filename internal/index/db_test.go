package index

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Time, AccX, AccY, AccZ, GyroX, GyroY, GyroZ"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "senlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeSession(t *testing.T, path string, rows ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := header + "\n"
	for _, r := range rows {
		content += r + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBeginEndSession(t *testing.T) {
	db := openTestDB(t)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err := db.BeginSession(SessionRow{
		DataRoot:   "/data",
		SessionKey: "lumos/lumos_7",
		Movement:   "lumos",
		FileID:     7,
		FilePath:   "/data/lumos/lumos_7.csv",
		RunID:      "run-1",
		StartedAt:  FormatTime(started),
	})
	require.NoError(t, err)

	s, err := db.GetSessionByKey("/data", "lumos/lumos_7")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, StatusRecording, s.Status)
	assert.Equal(t, "2026-03-01T10:00:00Z", s.StartedAt)
	assert.Equal(t, 7, s.FileID)

	require.NoError(t, db.EndSession("/data", "lumos/lumos_7", 12, started.Add(time.Minute), StatusComplete))

	s, err = db.GetSessionByKey("/data", "lumos/lumos_7")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, s.Status)
	assert.Equal(t, 12, s.Rows)
	assert.Equal(t, "2026-03-01T10:01:00Z", s.EndedAt)

	rows, err := db.RowCount("/data")
	require.NoError(t, err)
	assert.Equal(t, 12, rows)

	counts, err := db.StatusCounts("")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{StatusComplete: 1}, counts)
}

func TestEndSession_Unknown(t *testing.T) {
	db := openTestDB(t)
	err := db.EndSession("/data", "nope/nope_1", 0, time.Now(), StatusComplete)
	assert.Error(t, err)
}

func TestGetSessionByKey_Missing(t *testing.T) {
	db := openTestDB(t)
	s, err := db.GetSessionByKey("/data", "missing")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestIndexAll(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()

	a := filepath.Join(root, "lumos", "lumos_1.csv")
	b := filepath.Join(root, "nox", "nox_2.csv")
	writeSession(t, a, "1,0,0,0,0,0,0", "2,0,0,0,0,0,0")
	writeSession(t, b, "5,0,0,0,0,0,0")

	stats, err := IndexAll(db, root, header)
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 2, Updated: 2}, stats)

	s, err := db.GetSessionByKey(root, "lumos/lumos_1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, "lumos", s.Movement)
	assert.Equal(t, 1, s.FileID)
	assert.Equal(t, StatusImported, s.Status)

	// unchanged files are skipped
	stats, err = IndexAll(db, root, header)
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 2, Skipped: 2}, stats)

	// removed files are pruned
	require.NoError(t, os.Remove(b))
	stats, err = IndexAll(db, root, header)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)

	n, err := db.SessionCount(root)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIndexAll_KeepsRecorderFields(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	path := filepath.Join(root, "lumos", "lumos_4.csv")
	writeSession(t, path, "1,0,0,0,0,0,0")

	require.NoError(t, db.BeginSession(SessionRow{
		DataRoot:   root,
		SessionKey: "lumos/lumos_4",
		Movement:   "lumos",
		FileID:     4,
		FilePath:   path,
		RunID:      "run-abc",
		StartedAt:  "2026-01-01T00:00:00Z",
	}))
	require.NoError(t, db.EndSession(root, "lumos/lumos_4", 1, time.Now(), StatusInterrupted))

	_, err := IndexAll(db, root, header)
	require.NoError(t, err)

	s, err := db.GetSessionByKey(root, "lumos/lumos_4")
	require.NoError(t, err)
	assert.Equal(t, "run-abc", s.RunID)
	assert.Equal(t, StatusInterrupted, s.Status)
	assert.Equal(t, "2026-01-01T00:00:00Z", s.StartedAt)
	assert.Equal(t, 1, s.Rows)
	assert.NotZero(t, s.Size)
}

func TestIndexAll_SeparateRoots(t *testing.T) {
	db := openTestDB(t)
	rootA := t.TempDir()
	rootB := t.TempDir()

	pathA := filepath.Join(rootA, "lumos", "lumos_1.csv")
	writeSession(t, pathA, "1,0,0,0,0,0,0")
	require.NoError(t, db.BeginSession(SessionRow{
		DataRoot:   rootA,
		SessionKey: "lumos/lumos_1",
		Movement:   "lumos",
		FileID:     1,
		FilePath:   pathA,
		RunID:      "run-a",
	}))
	require.NoError(t, db.EndSession(rootA, "lumos/lumos_1", 1, time.Now(), StatusComplete))
	_, err := IndexAll(db, rootA, header)
	require.NoError(t, err)

	// an empty root prunes nothing elsewhere
	stats, err := IndexAll(db, rootB, header)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	// the same key under another root is a separate session
	pathB := filepath.Join(rootB, "lumos", "lumos_1.csv")
	writeSession(t, pathB, "1,0,0,0,0,0,0", "2,0,0,0,0,0,0")
	stats, err = IndexAll(db, rootB, header)
	require.NoError(t, err)
	assert.Equal(t, Stats{Scanned: 1, Updated: 1}, stats)

	a, err := db.GetSessionByKey(rootA, "lumos/lumos_1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "run-a", a.RunID)
	assert.Equal(t, StatusComplete, a.Status)
	assert.Equal(t, 1, a.Rows)
	assert.Equal(t, pathA, a.FilePath)

	b, err := db.GetSessionByKey(rootB, "lumos/lumos_1")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, StatusImported, b.Status)
	assert.Equal(t, 2, b.Rows)

	n, err := db.SessionCount("")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = db.SessionCount(rootA)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIndexAll_DuringRecording(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	path := filepath.Join(root, "lumos", "lumos_8.csv")
	writeSession(t, path)

	require.NoError(t, db.BeginSession(SessionRow{
		DataRoot:   root,
		SessionKey: "lumos/lumos_8",
		Movement:   "lumos",
		FileID:     8,
		FilePath:   path,
	}))

	// rows arrive and the catalog is indexed before the session ends
	writeSession(t, path, "1,0,0,0,0,0,0", "2,0,0,0,0,0,0")
	_, err := IndexAll(db, root, header)
	require.NoError(t, err)

	s, err := db.GetSessionByKey(root, "lumos/lumos_8")
	require.NoError(t, err)
	assert.Equal(t, StatusRecording, s.Status)
	assert.Equal(t, 0, s.Rows)

	require.NoError(t, db.EndSession(root, "lumos/lumos_8", 2, time.Now(), StatusComplete))

	s, err = db.GetSessionByKey(root, "lumos/lumos_8")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, s.Status)
	assert.Equal(t, 2, s.Rows)

	rows, err := db.RowCount(root)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	// the next run re-reads the file and agrees
	stats, err := IndexAll(db, root, header)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	s, err = db.GetSessionByKey(root, "lumos/lumos_8")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, StatusComplete, s.Status)
}

func TestOpenDB_MigratesV1(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "senlog.db")

	raw, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = raw.Exec(`
CREATE TABLE sessions (
    session_key TEXT PRIMARY KEY,
    movement    TEXT NOT NULL,
    file_id     INTEGER NOT NULL DEFAULT -1,
    file_path   TEXT NOT NULL,
    run_id      TEXT NOT NULL DEFAULT '',
    started_at  TEXT NOT NULL DEFAULT '',
    ended_at    TEXT NOT NULL DEFAULT '',
    row_count   INTEGER NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'imported',
    mtime       INTEGER NOT NULL DEFAULT 0,
    size        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX sessions_movement ON sessions(movement);
CREATE INDEX sessions_started ON sessions(started_at);
CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT);
INSERT INTO meta VALUES ('schema_version', '1');
INSERT INTO sessions (session_key, movement, file_id, file_path, run_id, row_count, status, mtime, size)
VALUES ('lumos/lumos_3', 'lumos', 3, '/data/lumos/lumos_3.csv', 'run-old', 5, 'complete', 100, 200);
`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	s, err := db.GetSessionByKey("/data", "lumos/lumos_3")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "run-old", s.RunID)
	assert.Equal(t, StatusComplete, s.Status)
	assert.Equal(t, 5, s.Rows)
	assert.Zero(t, s.Mtime)
}
