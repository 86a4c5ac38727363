package parse

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const maxLineSize = 1024 * 1024 // 1MB

// SessionKey derives the catalog key for a session file: its path relative
// to the data root, without the .csv extension.
func SessionKey(dataRoot, filePath string) string {
	rel, err := filepath.Rel(dataRoot, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(filePath)
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, ".csv"))
}

// SplitName splits "<movement>_<id>.csv" into its parts. id is -1 when the
// suffix is missing or not a number.
func SplitName(filePath string) (movement string, id int) {
	name := strings.TrimSuffix(filepath.Base(filePath), ".csv")
	i := strings.LastIndex(name, "_")
	if i <= 0 {
		return name, -1
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < 0 {
		return name, -1
	}
	return name[:i], n
}

// ParseSession summarises a session CSV. header is the expected header row;
// every line equal to it (after trimming) is counted as a header, since
// re-used files carry one header per recording.
func ParseSession(filePath, dataRoot, header string) (*SessionMeta, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	movement, id := SplitName(filePath)
	meta := &SessionMeta{
		SessionKey: SessionKey(dataRoot, filePath),
		Movement:   movement,
		FileID:     id,
		FilePath:   filePath,
		Mtime:      info.ModTime(),
		Size:       info.Size(),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	want := normalizeHeader(header)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if normalizeHeader(line) == want {
			meta.HasHeader = true
			continue
		}

		ts := firstField(line)
		if meta.Rows == 0 {
			meta.FirstTime = ts
		}
		meta.LastTime = ts
		meta.Rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	return meta, nil
}

func normalizeHeader(s string) string {
	fields := strings.Split(s, ",")
	for i, f := range fields {
		fields[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return strings.Join(fields, ",")
}

func firstField(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	return line
}
