package services

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"slide-narrator/application/ports/inbound"
	"slide-narrator/application/ports/outbound"
	"slide-narrator/domain"
)

const pageSeparator = "---"

type slideNoteExtractor struct {
	logger        outbound.LoggerPort
	commentRegexp *regexp.Regexp
}

func NewSlideNoteExtractor(logger outbound.LoggerPort) inbound.SlideNoteExtractorPort {
	return &slideNoteExtractor{
		logger:        logger,
		commentRegexp: regexp.MustCompile(`(?s)<!--\s*(.*?)\s*-->`),
	}
}

func (s *slideNoteExtractor) Extract(ctx context.Context, slidePath string) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(slidePath)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to read slide file", map[string]interface{}{
			"slide": slidePath,
		})
		return nil, fmt.Errorf("failed to read slide file %s: %w", slidePath, err)
	}

	pages := s.Parse(string(content))
	s.logger.InfoWithFields("speaker notes extracted", map[string]interface{}{
		"slide": slidePath,
		"pages": len(pages),
	})

	return pages, nil
}

func (s *slideNoteExtractor) Parse(content string) []domain.Page {
	chunks, frontMatter := splitPages(content)

	pages := make([]domain.Page, 0)
	pageNumber := 0
	for i, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" || strings.HasPrefix(trimmed, "marp:") || (frontMatter && i == 1) {
			continue
		}

		pageNumber++

		matches := s.commentRegexp.FindAllStringSubmatch(chunk, -1)
		notes := make([]string, 0, len(matches))
		for _, match := range matches {
			notes = append(notes, match[1])
		}

		text := strings.TrimSpace(strings.Join(notes, " "))
		if text == "" {
			continue
		}

		s.logger.DebugWithFields("page notes found", map[string]interface{}{
			"page":  pageNumber,
			"chars": len([]rune(text)),
		})
		pages = append(pages, domain.Page{Number: pageNumber, Notes: text})
	}

	return pages
}

// splitPages cuts the deck on separator lines. frontMatter is true when the
// document opens with a separator, which makes chunks[1] the front matter.
func splitPages(content string) (chunks []string, frontMatter bool) {
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var current strings.Builder
	for i, line := range lines {
		if strings.TrimSpace(line) == pageSeparator {
			if len(chunks) == 0 && strings.TrimSpace(current.String()) == "" && i == 0 {
				frontMatter = true
			}
			chunks = append(chunks, current.String())
			current.Reset()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	chunks = append(chunks, current.String())

	return chunks, frontMatter
}
