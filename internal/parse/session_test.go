package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Time, AccX, AccY, AccZ, GyroX, GyroY, GyroZ"

func TestSessionKey(t *testing.T) {
	root := filepath.Join("data", "collected")
	path := filepath.Join(root, "lumos", "lumos_42.csv")

	assert.Equal(t, "lumos/lumos_42", SessionKey(root, path))
	assert.Equal(t, "stray_1", SessionKey(root, filepath.Join("elsewhere", "stray_1.csv")))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		path     string
		movement string
		id       int
	}{
		{"a/serpensortia_7.csv", "serpensortia", 7},
		{"a/wing_gardium_999.csv", "wing_gardium", 999},
		{"a/notes.csv", "notes", -1},
		{"a/run_x.csv", "run_x", -1},
		{"a/_5.csv", "_5", -1},
	}
	for _, tt := range tests {
		movement, id := SplitName(tt.path)
		assert.Equal(t, tt.movement, movement, tt.path)
		assert.Equal(t, tt.id, id, tt.path)
	}
}

func TestParseSession(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "lumos")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "lumos_3.csv")

	content := header + "\n" +
		"100, 0.1, 0.2, 9.8, 0, 0, 0\n" +
		"\n" +
		"110, 0.1, 0.2, 9.7, 1, 0, 0\n" +
		header + "\n" +
		"120, 0.0, 0.1, 9.8, 0, 1, 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	meta, err := ParseSession(path, root, header)
	require.NoError(t, err)

	assert.Equal(t, "lumos/lumos_3", meta.SessionKey)
	assert.Equal(t, "lumos", meta.Movement)
	assert.Equal(t, 3, meta.FileID)
	assert.True(t, meta.HasHeader)
	assert.Equal(t, 3, meta.Rows)
	assert.Equal(t, "100", meta.FirstTime)
	assert.Equal(t, "120", meta.LastTime)
	assert.Equal(t, int64(len(content)), meta.Size)
}

func TestParseSession_HeaderOnly(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "empty_1.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"), 0o644))

	meta, err := ParseSession(path, root, header)
	require.NoError(t, err)
	assert.True(t, meta.HasHeader)
	assert.Zero(t, meta.Rows)
	assert.Empty(t, meta.FirstTime)
}

func TestParseSession_Missing(t *testing.T) {
	_, err := ParseSession(filepath.Join(t.TempDir(), "nope.csv"), "", header)
	assert.Error(t, err)
}
