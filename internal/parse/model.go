package parse

import "time"

type SessionMeta struct {
	SessionKey string
	Movement   string
	FileID     int // -1 when the file name carries no numeric suffix
	FilePath   string
	HasHeader  bool
	Rows       int    // data rows, headers excluded
	FirstTime  string // first column of the first data row
	LastTime   string // first column of the last data row
	Mtime      time.Time
	Size       int64
}
