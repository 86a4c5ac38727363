package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
)

// linesPerItem is the number of terminal lines each session occupies.
const linesPerItem = 2

// renderList renders the left panel: session list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := styleMuted.
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No sessions")
		return empty
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatResultLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

func renderStatus(status string) string {
	return statusStyle(status).Render(runewidth.FillRight(status, 11))
}

// formatResultLine formats a single session as two lines:
//
//	line 1: [>] status  MM-DD HH:MM  key
//	line 2:    rows, path (dimmed)
func formatResultLine(r index.SessionRow, width int, selected bool) []string {
	// "2026-01-27T10:04:05Z" -> "01-27 10:04"
	date := r.StartedAt
	if len(date) >= 16 {
		date = date[5:10] + " " + date[11:16]
	}

	key := r.SessionKey
	keyMax := width - 2 - 12 - 12 // prefix + status + date
	if keyMax < 0 {
		keyMax = 0
	}
	if runewidth.StringWidth(key) > keyMax {
		key = runewidth.Truncate(key, keyMax, "")
	}

	line1 := fmt.Sprintf("%s %s %s", renderStatus(r.Status), runewidth.FillRight(date, 11), key)
	if selected {
		line1 = styleCursor.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	detail := fmt.Sprintf("%d rows  %s", r.Rows, r.FilePath)
	detailMax := width - 4 // indent
	if detailMax < 0 {
		detailMax = 0
	}
	if runewidth.StringWidth(detail) > detailMax {
		detail = runewidth.Truncate(detail, detailMax, "")
	}
	line2 := "    " + styleMuted.Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
