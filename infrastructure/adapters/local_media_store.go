package adapters

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slide-narrator/application/ports/outbound"
)

type localMediaStore struct {
	logger outbound.LoggerPort
}

func NewLocalMediaStore(logger outbound.LoggerPort) outbound.MediaStorePort {
	return &localMediaStore{
		logger: logger,
	}
}

func (s *localMediaStore) Save(ctx context.Context, dir string, name string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.ErrorWithFields(err, "Failed to create media directory", map[string]interface{}{
			"dir": dir,
		})
		return "", err
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to create media file", map[string]interface{}{
			"path": path,
		})
		return "", err
	}
	defer func(name string) {
		// no-op once the rename succeeded
		_ = os.Remove(name)
	}(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		_ = tmp.Close()
		s.logger.ErrorWithFields(err, "Failed to write media file", map[string]interface{}{
			"path": path,
		})
		return "", err
	}
	if err := tmp.Close(); err != nil {
		s.logger.ErrorWithFields(err, "Failed to close media file", map[string]interface{}{
			"path": path,
		})
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		s.logger.ErrorWithFields(err, "Failed to move media file into place", map[string]interface{}{
			"path": path,
		})
		return "", err
	}

	s.logger.DebugWithFields("media file saved", map[string]interface{}{
		"path": path,
	})
	return path, nil
}

func (s *localMediaStore) List(ctx context.Context, dir string, exts []string) ([]outbound.MediaFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read media directory %s: %w", dir, err)
	}

	wanted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		wanted[strings.ToLower(ext)] = struct{}{}
	}

	files := make([]outbound.MediaFile, 0)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.ErrorWithFields(err, "Failed to stat media file", map[string]interface{}{
				"file": entry.Name(),
			})
			return nil, err
		}
		files = append(files, outbound.MediaFile{
			FileName: filepath.Join(dir, entry.Name()),
			Size:     info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].FileName < files[j].FileName
	})

	return files, nil
}
