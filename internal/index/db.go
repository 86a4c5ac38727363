package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	StatusRecording   = "recording"
	StatusComplete    = "complete"
	StatusInterrupted = "interrupted"
	StatusImported    = "imported"
)

const timeLayout = "2006-01-02T15:04:05Z"

const baseSchema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// Sessions are keyed per data root, so several data roots can share one
// catalog without colliding or pruning each other.
const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    data_root   TEXT NOT NULL,
    session_key TEXT NOT NULL,
    movement    TEXT NOT NULL,
    file_id     INTEGER NOT NULL DEFAULT -1,
    file_path   TEXT NOT NULL,
    run_id      TEXT NOT NULL DEFAULT '',
    started_at  TEXT NOT NULL DEFAULT '',
    ended_at    TEXT NOT NULL DEFAULT '',
    row_count   INTEGER NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'imported',
    mtime       INTEGER NOT NULL DEFAULT 0,
    size        INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (data_root, session_key)
);

CREATE INDEX IF NOT EXISTS sessions_movement ON sessions(movement);
CREATE INDEX IF NOT EXISTS sessions_started ON sessions(started_at);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(baseSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return d, nil
}

// schemaVersion should be bumped whenever file summarising changes
// to force a full re-index.
const schemaVersion = "2"

func (d *DB) migrate() error {
	var ver string
	_ = d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)

	if ver == "1" {
		if err := d.migrateV1(); err != nil {
			return err
		}
	}
	if _, err := d.db.Exec(sessionsSchema); err != nil {
		return err
	}
	if ver != schemaVersion {
		// force re-index by resetting all session mtime/size to 0
		if _, err := d.db.Exec("UPDATE sessions SET mtime = 0, size = 0"); err != nil {
			return err
		}
		if _, err := d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// migrateV1 moves v1 rows, keyed on session_key alone, into the per-root
// table. The data root is what file_path has in front of "/<key>.csv".
func (d *DB) migrateV1() error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		"DROP INDEX IF EXISTS sessions_movement",
		"DROP INDEX IF EXISTS sessions_started",
		"ALTER TABLE sessions RENAME TO sessions_v1",
		sessionsSchema,
		`INSERT OR IGNORE INTO sessions (data_root, session_key, movement, file_id, file_path, run_id, started_at, ended_at, row_count, status, mtime, size)
		 SELECT substr(file_path, 1, length(file_path) - length(session_key) - 5),
		        session_key, movement, file_id, file_path, run_id, started_at, ended_at, row_count, status, mtime, size
		 FROM sessions_v1`,
		"DROP TABLE sessions_v1",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type SessionRow struct {
	DataRoot   string
	SessionKey string
	Movement   string
	FileID     int
	FilePath   string
	RunID      string
	StartedAt  string
	EndedAt    string
	Rows       int
	Status     string
	Mtime      int64
	Size       int64
}

// BeginSession records a session the recorder has just opened. A row left
// over from an earlier recording into the same file is replaced, keeping
// its row count: the file is appended to.
func (d *DB) BeginSession(s SessionRow) error {
	_, err := d.db.Exec(
		`INSERT INTO sessions (data_root, session_key, movement, file_id, file_path, run_id, started_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(data_root, session_key) DO UPDATE SET
		     file_path = excluded.file_path,
		     run_id = excluded.run_id,
		     started_at = excluded.started_at,
		     ended_at = '',
		     status = excluded.status`,
		s.DataRoot, s.SessionKey, s.Movement, s.FileID, s.FilePath, s.RunID, s.StartedAt, StatusRecording,
	)
	if err != nil {
		return fmt.Errorf("begin session %s: %w", s.SessionKey, err)
	}
	return nil
}

// EndSession marks a session finished with the given status and adds the
// rows it wrote. The stored mtime is cleared so the next index run
// re-reads the file.
func (d *DB) EndSession(dataRoot, sessionKey string, rows int, endedAt time.Time, status string) error {
	res, err := d.db.Exec(
		`UPDATE sessions SET row_count = row_count + ?, ended_at = ?, status = ?, mtime = 0, size = 0
		 WHERE data_root = ? AND session_key = ?`,
		rows, endedAt.UTC().Format(timeLayout), status, dataRoot, sessionKey,
	)
	if err != nil {
		return fmt.Errorf("end session %s: %w", sessionKey, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("end session %s: not found", sessionKey)
	}
	return nil
}

type SessionInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetSessionInfo(dataRoot, sessionKey string) (*SessionInfo, error) {
	var info SessionInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE data_root = ? AND session_key = ?",
		dataRoot, sessionKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// SessionKeys returns the keys catalogued under dataRoot.
func (d *DB) SessionKeys(dataRoot string) (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT session_key FROM sessions WHERE data_root = ?", dataRoot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteSession(dataRoot, sessionKey string) error {
	_, err := d.db.Exec("DELETE FROM sessions WHERE data_root = ? AND session_key = ?", dataRoot, sessionKey)
	return err
}

// rootFilter restricts a count to dataRoot; "" counts every root.
func rootFilter(dataRoot string) (string, []any) {
	if dataRoot == "" {
		return "", nil
	}
	return " WHERE data_root = ?", []any{dataRoot}
}

func (d *DB) SessionCount(dataRoot string) (int, error) {
	where, args := rootFilter(dataRoot)
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions"+where, args...).Scan(&n)
	return n, err
}

func (d *DB) RowCount(dataRoot string) (int, error) {
	where, args := rootFilter(dataRoot)
	var n int
	err := d.db.QueryRow("SELECT COALESCE(SUM(row_count), 0) FROM sessions"+where, args...).Scan(&n)
	return n, err
}

// StatusCounts returns the number of sessions per status.
func (d *DB) StatusCounts(dataRoot string) (map[string]int, error) {
	where, args := rootFilter(dataRoot)
	rows, err := d.db.Query("SELECT status, COUNT(*) FROM sessions"+where+" GROUP BY status", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

const sessionColumns = "data_root, session_key, movement, file_id, file_path, run_id, started_at, ended_at, row_count, status, mtime, size"

// ScanSession reads one row selected with sessionColumns.
func ScanSession(sc interface{ Scan(...any) error }) (SessionRow, error) {
	var s SessionRow
	err := sc.Scan(&s.DataRoot, &s.SessionKey, &s.Movement, &s.FileID, &s.FilePath, &s.RunID,
		&s.StartedAt, &s.EndedAt, &s.Rows, &s.Status, &s.Mtime, &s.Size)
	return s, err
}

// SessionColumns is the column list ScanSession expects.
func SessionColumns() string {
	return sessionColumns
}

func (d *DB) GetSessionByKey(dataRoot, sessionKey string) (*SessionRow, error) {
	row := d.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE data_root = ? AND session_key = ?", dataRoot, sessionKey)
	s, err := ScanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FormatTime formats t the way the catalog stores timestamps.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
