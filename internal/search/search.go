package search

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
)

type Options struct {
	DataRoot string // "" = every data root in the catalog
	Filter   string // case-insensitive substring of key or movement
	Movement string // "" = all
	Status   string // "" = all, "complete", "interrupted", ...
	Since    string // "" = no filter, e.g. "2024-01-01"
	Limit    int
}

// ListAll returns catalogued sessions, newest first.
func ListAll(db *index.DB, opts Options) ([]index.SessionRow, error) {
	var conditions []string
	var args []interface{}

	if opts.DataRoot != "" {
		conditions = append(conditions, "data_root = ?")
		args = append(args, opts.DataRoot)
	}

	if opts.Filter != "" {
		conditions = append(conditions, "(LOWER(session_key) LIKE ? ESCAPE '\\' OR LOWER(movement) LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(strings.ToLower(opts.Filter)) + "%"
		args = append(args, pattern, pattern)
	}

	// movement filter
	if opts.Movement != "" {
		conditions = append(conditions, "movement = ?")
		args = append(args, opts.Movement)
	}

	// status filter
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, opts.Status)
	}

	// since filter
	if opts.Since != "" {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, opts.Since)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		%s
		ORDER BY started_at DESC, session_key
	`, index.SessionColumns(), where)

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []index.SessionRow
	for rows.Next() {
		s, err := index.ScanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
