package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	sessionKey string
	content    string
	err        error
}

// loadPreviewCmd renders the newest rows of a session file async.
func loadPreviewCmd(s index.SessionRow, header string, width, rows int) tea.Cmd {
	return func() tea.Msg {
		content, err := render.RenderFile(s.FilePath, render.Options{
			Header: header,
			Tail:   rows,
			Width:  width,
		})
		return previewRenderedMsg{
			sessionKey: s.SessionKey,
			content:    content,
			err:        err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = styleFrame
	return vp
}
