package recorder

import (
	"fmt"
	"os"
	"time"
)

// Session is one open output file.
type Session struct {
	Key       string
	ID        int
	Path      string
	StartedAt time.Time

	f    *os.File
	rows int
}

// createSession opens path for appending and writes the header row.
func createSession(path string, id int, header string) (*Session, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	if _, err := f.WriteString(header + "\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header to %s: %w", path, err)
	}
	return &Session{ID: id, Path: path, StartedAt: time.Now(), f: f}, nil
}

// Append writes one data row followed by a newline.
func (s *Session) Append(line string) error {
	if _, err := s.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	s.rows++
	return nil
}

// Rows is the number of data rows written so far.
func (s *Session) Rows() int {
	return s.rows
}

func (s *Session) Close() error {
	return s.f.Close()
}
