package rule

import (
	"errors"
	"io/fs"
)

type overlayFS struct {
	upper, lower fs.FS
}

// Overlay returns a file system that serves files from upper and falls back
// to lower for files upper does not have. It lets a rules directory on disk
// replace individual embedded definition files.
func Overlay(upper, lower fs.FS) fs.FS {
	return overlayFS{upper: upper, lower: lower}
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.lower.Open(name)
}
