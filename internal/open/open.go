package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
)

// OpenSession opens the session file in $EDITOR. line <= 0 jumps to the
// last line, where a live recording is growing.
func OpenSession(db *index.DB, dataRoot, sessionKey string, line int) error {
	session, err := db.GetSessionByKey(dataRoot, sessionKey)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionKey)
	}

	filePath := session.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, line)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, line int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		if line <= 0 {
			return exec.Command(editor, "+", filePath)
		}
		return exec.Command(editor, fmt.Sprintf("+%d", line), filePath)
	case strings.Contains(editor, "code"):
		if line <= 0 {
			return exec.Command(editor, filePath)
		}
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(line))
	case strings.Contains(editor, "less"):
		if line <= 0 {
			return exec.Command(editor, "+G", filePath)
		}
		return exec.Command(editor, "+"+strconv.Itoa(line), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
