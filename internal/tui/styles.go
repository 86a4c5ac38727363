package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
)

// Session states get a fixed colour across the list and the preview frame:
// green while a recording grows, cyan once it ended on the sentinel, red
// when it was cut short.
var (
	colorLive     = lipgloss.Color("10")  // bright green
	colorComplete = lipgloss.Color("14")  // bright cyan
	colorBroken   = lipgloss.Color("9")   // bright red
	colorImported = lipgloss.Color("13")  // bright magenta
	colorCursor   = lipgloss.Color("11")  // bright yellow
	colorMuted    = lipgloss.Color("244") // gray
	colorFrame    = lipgloss.Color("238") // dark gray

	styleFilterPrompt = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	styleFilterText   = lipgloss.NewStyle().Foreground(colorCursor)

	styleCursor = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)

	statusColors = map[string]lipgloss.Color{
		index.StatusRecording:   colorLive,
		index.StatusComplete:    colorComplete,
		index.StatusInterrupted: colorBroken,
		index.StatusImported:    colorImported,
	}

	styleFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)

// statusStyle colours a session status; unknown states stay muted.
func statusStyle(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		return styleMuted
	}
	return lipgloss.NewStyle().Foreground(c)
}

// previewFrame borders the preview in the colour of the shown session.
func previewFrame(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = colorFrame
	}
	return styleFrame.BorderForeground(c)
}
