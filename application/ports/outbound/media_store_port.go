package outbound

import (
	"context"
	"io"
)

type MediaFile struct {
	FileName string
	Size     int64
}

type MediaStorePort interface {
	// Save writes content to dir/name and returns the full path.
	Save(ctx context.Context, dir string, name string, content io.Reader) (string, error)
	// List returns the files of dir whose extension is in exts, sorted by name.
	List(ctx context.Context, dir string, exts []string) ([]MediaFile, error)
}
