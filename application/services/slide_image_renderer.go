package services

import (
	"context"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

type slideImageRenderer struct {
	logger     outbound.LoggerPort
	renderer   outbound.SlideRendererPort
	mediaStore outbound.MediaStorePort
}

func NewSlideImageRenderer(logger outbound.LoggerPort, renderer outbound.SlideRendererPort, mediaStore outbound.MediaStorePort) inbound.SlideImageRendererPort {
	return &slideImageRenderer{
		logger:     logger,
		renderer:   renderer,
		mediaStore: mediaStore,
	}
}

func (s *slideImageRenderer) Render(ctx context.Context, params inbound.RenderImagesParams) ([]domain.PageImage, error) {
	version, err := s.renderer.Version(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.InfoWithFields("marp-cli available", map[string]interface{}{
		"version": version,
	})

	s.logger.InfoWithFields("rendering slides to images", map[string]interface{}{
		"slide": params.SlidePath,
		"dir":   params.OutputDir,
	})
	err = s.renderer.Render(ctx, outbound.RenderSlidesRequest{
		SlidePath: params.SlidePath,
		OutputDir: params.OutputDir,
	})
	if err != nil {
		return nil, err
	}

	files, err := s.mediaStore.List(ctx, params.OutputDir, []string{".png"})
	if err != nil {
		s.logger.Error(err, "Failed to list rendered images")
		return nil, err
	}

	images := make([]domain.PageImage, 0, len(files))
	for _, file := range files {
		number, ok := pageNumber(file.FileName)
		if !ok {
			continue
		}
		images = append(images, domain.PageImage{Number: number, FileName: file.FileName})
		s.logger.InfoWithFields("image generated", map[string]interface{}{
			"file": file.FileName,
			"size": file.Size,
		})
	}
	if len(images) == 0 {
		s.logger.Warn("no generated images found")
	}

	return images, nil
}
