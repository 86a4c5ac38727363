package open

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		line   int
		want   []string
	}{
		{"vim", 12, []string{"vim", "+12", "f.csv"}},
		{"nvim", 0, []string{"nvim", "+", "f.csv"}},
		{"code", 3, []string{"code", "--goto", "f.csv:3"}},
		{"code", 0, []string{"code", "f.csv"}},
		{"less", 0, []string{"less", "+G", "f.csv"}},
		{"less", 7, []string{"less", "+7", "f.csv"}},
		{"nano", 7, []string{"nano", "f.csv"}},
	}
	for _, tt := range tests {
		cmd := editorCommand(tt.editor, "f.csv", tt.line)
		assert.Equal(t, tt.want, cmd.Args, "%s line %d", tt.editor, tt.line)
	}
}

func TestOpenSession_Errors(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "senlog.db"))
	require.NoError(t, err)
	defer db.Close()

	err = OpenSession(db, "/data", "missing", 0)
	assert.ErrorContains(t, err, "session not found")

	require.NoError(t, db.BeginSession(index.SessionRow{
		DataRoot:   "/data",
		SessionKey: "lumos/lumos_1",
		Movement:   "lumos",
		FilePath:   filepath.Join(t.TempDir(), "gone.csv"),
	}))
	err = OpenSession(db, "/data", "lumos/lumos_1", 0)
	assert.ErrorContains(t, err, "file not found")
}
