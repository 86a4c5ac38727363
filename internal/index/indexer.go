package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/sensor-logger/internal/parse"
	"github.com/Zuo-Peng/sensor-logger/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll brings the catalog in line with the session files under dataRoot.
// Sessions catalogued under other data roots are left alone.
func IndexAll(db *DB, dataRoot, header string) (Stats, error) {
	var stats Stats
	dataRoot = filepath.Clean(dataRoot)

	files, err := scan.ScanRoot(dataRoot)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := parse.SessionKey(dataRoot, fi.Path)
		seenKeys[key] = struct{}{}

		needs, err := needsUpdate(db, dataRoot, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		meta, err := parse.ParseSession(fi.Path, dataRoot, header)
		if err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: parse %s: %v\n", fi.Path, err)
			continue
		}
		if fi.Movement != "" {
			meta.Movement = fi.Movement
		}

		if err := indexSession(db, dataRoot, meta); err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: index %s: %v\n", fi.Path, err)
			continue
		}
		stats.Updated++
	}

	// prune sessions whose files no longer exist
	pruned, err := pruneSessions(db, dataRoot, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, dataRoot, sessionKey string, mtime, size int64) (bool, error) {
	info, err := db.GetSessionInfo(dataRoot, sessionKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new session
	}
	return info.Mtime != mtime || info.Size != size, nil
}

// indexSession upserts a file summary. Rows written by the recorder keep
// their run id, status and start time. While a session is still recording
// its row count belongs to the recorder, which adds the rows it wrote when
// the session ends.
func indexSession(db *DB, dataRoot string, meta *parse.SessionMeta) error {
	_, err := db.Raw().Exec(
		`INSERT INTO sessions (data_root, session_key, movement, file_id, file_path, started_at, ended_at, row_count, status, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(data_root, session_key) DO UPDATE SET
		     file_path = excluded.file_path,
		     row_count = CASE WHEN status = ? THEN row_count ELSE excluded.row_count END,
		     mtime = excluded.mtime,
		     size = excluded.size`,
		dataRoot,
		meta.SessionKey,
		meta.Movement,
		meta.FileID,
		meta.FilePath,
		FormatTime(meta.Mtime),
		FormatTime(meta.Mtime),
		meta.Rows,
		StatusImported,
		meta.Mtime.Unix(),
		meta.Size,
		StatusRecording,
	)
	return err
}

func pruneSessions(db *DB, dataRoot string, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.SessionKeys(dataRoot)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteSession(dataRoot, key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
