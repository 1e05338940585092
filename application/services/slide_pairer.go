package services

import (
	"context"
	"fmt"
	"sort"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
	"slide-narrator/domain"
)

type slidePairer struct {
	logger     outbound.LoggerPort
	mediaStore outbound.MediaStorePort
	inputs     config.InputSettings
}

func NewSlidePairer(logger outbound.LoggerPort, mediaStore outbound.MediaStorePort, inputs config.InputSettings) inbound.SlidePairerPort {
	return &slidePairer{
		logger:     logger,
		mediaStore: mediaStore,
		inputs:     inputs,
	}
}

func (s *slidePairer) Pair(ctx context.Context, dirs ...string) (*inbound.PairResult, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one input directory is required")
	}

	images := make(map[int]string)
	audios := make(map[int]string)

	for _, dir := range dirs {
		if err := s.collect(ctx, dir, s.inputs.ImageExtensions, images, "image"); err != nil {
			return nil, err
		}
		if err := s.collect(ctx, dir, s.inputs.AudioExtensions, audios, "audio"); err != nil {
			return nil, err
		}
	}

	result := &inbound.PairResult{
		Pairs:         make([]domain.SlidePair, 0),
		MissingAudio:  make([]int, 0),
		MissingImages: make([]int, 0),
	}

	for number, image := range images {
		audio, ok := audios[number]
		if !ok {
			result.MissingAudio = append(result.MissingAudio, number)
			continue
		}
		result.Pairs = append(result.Pairs, domain.SlidePair{
			Number:        number,
			ImageFileName: image,
			AudioFileName: audio,
		})
	}
	for number := range audios {
		if _, ok := images[number]; !ok {
			result.MissingImages = append(result.MissingImages, number)
		}
	}

	sort.Sort(domain.SlidePairsAscByNumber(result.Pairs))
	sort.Ints(result.MissingAudio)
	sort.Ints(result.MissingImages)

	if len(result.MissingAudio) > 0 {
		s.logger.WarnWithFields("images without matching audio", map[string]interface{}{
			"pages": result.MissingAudio,
		})
	}
	if len(result.MissingImages) > 0 {
		s.logger.WarnWithFields("audio without matching image", map[string]interface{}{
			"pages": result.MissingImages,
		})
	}

	if len(result.Pairs) == 0 {
		return result, inbound.ErrNoPairs
	}

	s.logger.InfoWithFields("matched slide pairs", map[string]interface{}{
		"pairs": len(result.Pairs),
	})

	return result, nil
}

// collect records the first file per page number. Files are listed in name
// order, so later duplicates are dropped.
func (s *slidePairer) collect(ctx context.Context, dir string, exts []string, into map[int]string, kind string) error {
	files, err := s.mediaStore.List(ctx, dir, exts)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	for _, file := range files {
		number, ok := pageNumber(file.FileName)
		if !ok {
			s.logger.DebugWithFields("skipping file without page number", map[string]interface{}{
				"file": file.FileName,
			})
			continue
		}
		if existing, dup := into[number]; dup {
			s.logger.WarnWithFields("duplicate page number, keeping first file", map[string]interface{}{
				"kind":    kind,
				"page":    number,
				"kept":    existing,
				"ignored": file.FileName,
			})
			continue
		}
		into[number] = file.FileName
	}

	return nil
}
