package render

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
)

const (
	colorReset  = "\033[0m"
	colorHeader = "\033[1;34m" // bold blue
	colorTime   = "\033[1;32m" // bold green
	colorDim    = "\033[2m"
)

type Options struct {
	Header string // header row to highlight; "" highlights the first line only
	Head   int    // data rows from the start (0 with Tail 0 = all rows)
	Tail   int    // data rows from the end
	Width  int    // truncate lines to this many columns (0 = no limit)
	Color  bool
}

type table struct {
	header []string
	rows   [][]string
}

// RenderSession renders the file behind a catalogued session.
func RenderSession(db *index.DB, dataRoot, sessionKey string, opts Options) (string, error) {
	session, err := db.GetSessionByKey(dataRoot, sessionKey)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return "", fmt.Errorf("session not found: %s", sessionKey)
	}

	body, err := RenderFile(session.FilePath, opts)
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("--- %s [%s] %d rows ---", session.SessionKey, session.Status, session.Rows)
	if opts.Color {
		title = colorDim + title + colorReset
	}
	return title + "\n" + body, nil
}

// RenderFile renders a session CSV as aligned columns.
func RenderFile(path string, opts Options) (string, error) {
	t, err := readTable(path, opts.Header)
	if err != nil {
		return "", err
	}
	if len(t.header) == 0 && len(t.rows) == 0 {
		return "(empty session)\n", nil
	}

	shown, skipped, at := window(t.rows, opts.Head, opts.Tail)
	widths := columnWidths(t.header, shown)

	var b strings.Builder
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	if len(t.header) > 0 {
		writeLine(formatRow(t.header, widths, opts, colorHeader))
	}
	for i, row := range shown {
		if skipped > 0 && i == at {
			writeLine(dim(fmt.Sprintf("... (%d rows) ...", skipped), opts))
		}
		writeLine(formatRow(row, widths, opts, ""))
	}
	if skipped > 0 && at == len(shown) {
		writeLine(dim(fmt.Sprintf("... (%d rows) ...", skipped), opts))
	}
	return b.String(), nil
}

func readTable(path, header string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	want := splitRow(header)
	t := &table{}
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := splitRow(line)
		isHeader := (header == "" && first) || (header != "" && sameFields(fields, want))
		first = false
		if isHeader {
			// re-used files repeat the header; show it once
			if t.header == nil {
				t.header = fields
			}
			continue
		}
		t.rows = append(t.rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// window picks the rows to show. at is the index in shown where the
// skipped rows marker goes.
func window(rows [][]string, head, tail int) (shown [][]string, skipped, at int) {
	if head < 0 {
		head = 0
	}
	if tail < 0 {
		tail = 0
	}
	if (head == 0 && tail == 0) || head+tail >= len(rows) {
		return rows, 0, 0
	}
	shown = append(shown, rows[:head]...)
	shown = append(shown, rows[len(rows)-tail:]...)
	return shown, len(rows) - head - tail, head
}

func columnWidths(header []string, rows [][]string) []int {
	var widths []int
	grow := func(fields []string) {
		for i, f := range fields {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(f); w > widths[i] {
				widths[i] = w
			}
		}
	}
	grow(header)
	for _, r := range rows {
		grow(r)
	}
	return widths
}

func formatRow(fields []string, widths []int, opts Options, color string) string {
	cells := make([]string, len(fields))
	for i, f := range fields {
		if i < len(fields)-1 {
			f = runewidth.FillRight(f, widths[i])
		}
		cells[i] = f
	}
	line := strings.Join(cells, "  ")
	if opts.Width > 0 && runewidth.StringWidth(line) > opts.Width {
		line = runewidth.Truncate(line, opts.Width, "…")
	}
	if !opts.Color {
		return line
	}
	if color != "" {
		return color + line + colorReset
	}
	// highlight the time column
	if strings.HasPrefix(line, cells[0]) {
		w := len(cells[0])
		return colorTime + line[:w] + colorReset + line[w:]
	}
	return line
}

func dim(s string, opts Options) string {
	if opts.Color {
		return colorDim + s + colorReset
	}
	return s
}

func splitRow(line string) []string {
	if line == "" {
		return nil
	}
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
