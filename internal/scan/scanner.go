package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path     string
	Movement string // name of the directory directly under the data root
	Mtime    int64
	Size     int64
}

// ScanRoot walks dataRoot for session CSV files. A missing root yields no
// files and no error.
func ScanRoot(dataRoot string) ([]FileInfo, error) {
	var files []FileInfo
	if dataRoot == "" {
		return nil, nil
	}

	err := filepath.Walk(dataRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dataRoot {
				return err
			}
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != dataRoot && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		files = append(files, FileInfo{
			Path:     path,
			Movement: movementOf(dataRoot, path),
			Mtime:    info.ModTime().Unix(),
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func movementOf(dataRoot, path string) string {
	rel, err := filepath.Rel(dataRoot, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
