package adapters

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

type ffmpegVideoConcatenate struct {
	runner     CommandRunner
	logger     outbound.LoggerPort
	ffmpegPath string
}

func NewFFmpegVideoConcatenate(runner CommandRunner, ffmpegPath string, logger outbound.LoggerPort) outbound.ConcatenateVideosPort {
	return &ffmpegVideoConcatenate{
		runner:     runner,
		logger:     logger,
		ffmpegPath: ffmpegPath,
	}
}

func (f *ffmpegVideoConcatenate) Concatenate(ctx context.Context, segments []domain.VideoSegment, outputFile string) (err error) {
	sorted := make([]domain.VideoSegment, len(segments))
	copy(sorted, segments)
	sort.Sort(domain.VideoSegmentsAscByNumber(sorted))

	if err = os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		f.logger.Error(err, "Failed to create video output directory")
		return err
	}

	fileList, err := os.CreateTemp("", "narrator-concat-*.txt")
	if err != nil {
		f.logger.Error(err, "Failed to create video list file")
		return err
	}
	defer func(name string) {
		err := os.Remove(name)
		if err != nil {
			f.logger.Error(err, "Failed to remove video list file")
		}
	}(fileList.Name())

	writer := bufio.NewWriter(fileList)
	for _, s := range sorted {
		absName, absErr := filepath.Abs(s.FileName)
		if absErr != nil {
			absName = s.FileName
		}
		_, err = writer.WriteString(concatListEntry(absName))
		if err != nil {
			_ = fileList.Close()
			f.logger.Error(err, "Failed to write to video list file")
			return err
		}
	}
	if err = writer.Flush(); err != nil {
		_ = fileList.Close()
		f.logger.Error(err, "Failed to flush video list file")
		return err
	}
	if err = fileList.Close(); err != nil {
		f.logger.Error(err, "Failed to close video list file")
		return err
	}

	_, err = f.runner.Run(ctx, f.ffmpegPath, "-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", fileList.Name(), "-c", "copy", "-movflags", "faststart", outputFile)
	if err != nil {
		f.logger.ErrorWithFields(err, "Failed to concatenate videos", map[string]interface{}{
			"output":   outputFile,
			"segments": len(sorted),
		})
		return err
	}

	for _, s := range sorted {
		if err := os.Remove(s.FileName); err != nil && !os.IsNotExist(err) {
			f.logger.Error(err, "Failed to remove segment file")
		}
	}

	return nil
}

// concatListEntry quotes a path for the ffmpeg concat demuxer.
func concatListEntry(path string) string {
	return "file '" + strings.ReplaceAll(filepath.ToSlash(path), "'", `'\''`) + "'\n"
}
