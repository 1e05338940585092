package adapters

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"slide-narrator/application/ports/outbound"
)

type ffmpegVideoCreator struct {
	runner     CommandRunner
	prober     outbound.MediaProberPort
	logger     outbound.LoggerPort
	ffmpegPath string
}

func NewFFMPEGVideoCreator(runner CommandRunner, prober outbound.MediaProberPort, ffmpegPath string, logger outbound.LoggerPort) outbound.SegmentVideoCreator {
	return &ffmpegVideoCreator{
		runner:     runner,
		prober:     prober,
		logger:     logger,
		ffmpegPath: ffmpegPath,
	}
}

func (v *ffmpegVideoCreator) Create(ctx context.Context, req outbound.CreateSegmentRequest) (*outbound.CreateVideoResponse, error) {
	audioDuration, err := v.prober.Duration(ctx, req.Pair.AudioFileName)
	if err != nil {
		return nil, err
	}

	total := req.LeadSeconds + audioDuration + req.TrailSeconds
	outputFile := filepath.Join(req.OutputDir, fmt.Sprintf("segment_%03d_%s.mp4", req.Pair.Number, uuid.NewString()))

	_, err = v.runner.Run(ctx, v.ffmpegPath, segmentArgs(req, total, outputFile)...)
	if err != nil {
		v.logger.ErrorWithFields(err, "error creating video segment", map[string]interface{}{
			"page":  req.Pair.Number,
			"image": req.Pair.ImageFileName,
			"audio": req.Pair.AudioFileName,
		})
		return nil, err
	}

	v.logger.DebugWithFields("video segment created", map[string]interface{}{
		"page":     req.Pair.Number,
		"audio":    audioDuration,
		"duration": total,
		"file":     outputFile,
	})

	return &outbound.CreateVideoResponse{
		FileName: outputFile,
		Duration: total,
	}, nil
}

// segmentArgs holds the still image for the whole segment while the narration
// is delayed by the lead pause and padded with silence up to the total length.
func segmentArgs(req outbound.CreateSegmentRequest, total float64, outputFile string) []string {
	fps := strconv.Itoa(req.FPS)

	videoFilter := "scale=trunc(iw/2)*2:trunc(ih/2)*2"
	if req.Width > 0 && req.Height > 0 {
		videoFilter = fmt.Sprintf("scale=%d:%d", req.Width, req.Height)
	}
	videoFilter += ",format=yuv420p"

	leadMs := int64(req.LeadSeconds * 1000)
	audioFilter := fmt.Sprintf("adelay=%d:all=1,apad=whole_dur=%s", leadMs, formatSeconds(total))

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-loop", "1", "-framerate", fps, "-i", req.Pair.ImageFileName,
		"-i", req.Pair.AudioFileName,
		"-filter_complex", "[0:v]" + videoFilter + "[v];[1:a]" + audioFilter + "[a]",
		"-map", "[v]", "-map", "[a]",
		"-t", formatSeconds(total),
		"-r", fps,
		"-c:v", req.Codec,
	}
	if req.Codec == "libx264" {
		args = append(args, "-tune", "stillimage")
	}
	args = append(args, "-pix_fmt", "yuv420p", "-c:a", req.AudioCodec, "-b:a", "192k", outputFile)

	return args
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
