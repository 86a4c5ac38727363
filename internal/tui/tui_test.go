package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/search"
)

const header = "Time, AccX, AccY, AccZ, GyroX, GyroY, GyroZ"

func sessions() []index.SessionRow {
	return []index.SessionRow{
		{SessionKey: "lumos/lumos_2", Status: index.StatusRecording, StartedAt: "2026-02-01T10:04:05Z", Rows: 3, FilePath: "/d/lumos/lumos_2.csv"},
		{SessionKey: "lumos/lumos_1", Status: index.StatusComplete, StartedAt: "2026-01-01T09:00:00Z", Rows: 9, FilePath: "/d/lumos/lumos_1.csv"},
	}
}

func loaded(t *testing.T) model {
	t.Helper()
	m := initialModel(nil, search.Options{}, header)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.(model).Update(listResultMsg{results: sessions()})
	return next.(model)
}

func TestFormatResultLine(t *testing.T) {
	lines := formatResultLine(sessions()[0], 60, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "recording")
	assert.Contains(t, lines[0], "02-01 10:04")
	assert.Contains(t, lines[0], "lumos/lumos_2")
	assert.Contains(t, lines[1], "3 rows")
	assert.Contains(t, lines[1], "/d/lumos/lumos_2.csv")
}

func TestUpdate_Navigation(t *testing.T) {
	m := loaded(t)
	assert.Len(t, m.results, 2)
	assert.Equal(t, 0, m.cursor)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)

	// cursor stays put at the end of the list
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NotNil(t, m.chosen)
	assert.Equal(t, "lumos/lumos_1", m.chosen.SessionKey)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestUpdate_RefreshKeepsSelection(t *testing.T) {
	m := loaded(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)

	refreshed := append([]index.SessionRow{{SessionKey: "lumos/lumos_3"}}, sessions()...)
	next, _ = m.Update(listResultMsg{results: refreshed})
	m = next.(model)
	assert.Equal(t, "lumos/lumos_1", m.results[m.cursor].SessionKey)
}

func TestUpdate_StaleResultsIgnored(t *testing.T) {
	m := loaded(t)
	m.filter = "nox"

	next, _ := m.Update(listResultMsg{filter: "lu", results: nil})
	m = next.(model)
	assert.Len(t, m.results, 2)
}

func TestUpdate_Preview(t *testing.T) {
	m := loaded(t)

	next, _ := m.Update(previewRenderedMsg{sessionKey: "lumos/lumos_1", content: "stale"})
	m = next.(model)
	assert.Empty(t, m.previewKey)

	next, _ = m.Update(previewRenderedMsg{sessionKey: "lumos/lumos_2", content: "Time  AccX\n1     0.5\n"})
	m = next.(model)
	assert.Equal(t, "lumos/lumos_2", m.previewKey)
	assert.Contains(t, m.View(), "1     0.5")
}

func TestLoadPreviewCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumos_1.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n1,2,3,4,5,6,7\n"), 0o644))

	msg := loadPreviewCmd(index.SessionRow{SessionKey: "k", FilePath: path}, header, 80, 10)()
	pm, ok := msg.(previewRenderedMsg)
	require.True(t, ok)
	require.NoError(t, pm.err)
	assert.Equal(t, "k", pm.sessionKey)
	assert.Contains(t, pm.content, "GyroZ")
}

func TestAdjustListScroll(t *testing.T) {
	m := model{cursor: 9}
	m.adjustListScroll(6) // 3 visible items
	assert.Equal(t, 7, m.listOffset)

	m.cursor = 2
	m.adjustListScroll(6)
	assert.Equal(t, 2, m.listOffset)
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, colorLive, previewFrame(index.StatusRecording).GetBorderTopForeground())
	assert.Equal(t, colorBroken, previewFrame(index.StatusInterrupted).GetBorderTopForeground())
	assert.Equal(t, colorFrame, previewFrame("").GetBorderTopForeground())

	assert.Equal(t, colorComplete, statusStyle(index.StatusComplete).GetForeground())
	assert.Equal(t, colorMuted, statusStyle("unknown").GetForeground())
}
