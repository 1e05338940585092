package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-narrator/domain"
)

func TestSlideNoteExtractor_Parse(t *testing.T) {
	extractor := NewSlideNoteExtractor(testLogger())

	tests := []struct {
		name    string
		content string
		want    []domain.Page
	}{
		{
			name: "front matter and notes",
			content: "---\nmarp: true\ntheme: default\n---\n\n# Title\n\n<!-- こんにちは -->\n\n---\n\n# Second\n<!--\n  multi\n  line\n-->\n",
			want: []domain.Page{
				{Number: 1, Notes: "こんにちは"},
				{Number: 2, Notes: "multi\n  line"},
			},
		},
		{
			name:    "front matter without marp key",
			content: "---\ntheme: gaia\n---\n# One\n<!-- first -->\n",
			want:    []domain.Page{{Number: 1, Notes: "first"}},
		},
		{
			name:    "page without notes keeps its number",
			content: "# One\n---\n# Two\n<!-- second -->\n",
			want:    []domain.Page{{Number: 2, Notes: "second"}},
		},
		{
			name:    "comments are joined with a space",
			content: "# One\n<!-- a --> text <!-- b -->\n",
			want:    []domain.Page{{Number: 1, Notes: "a b"}},
		},
		{
			name:    "empty chunks do not count",
			content: "# One\n<!-- one -->\n---\n\n---\n# Two\n<!-- two -->\n",
			want: []domain.Page{
				{Number: 1, Notes: "one"},
				{Number: 2, Notes: "two"},
			},
		},
		{
			name:    "crlf and bom",
			content: "\uFEFF---\r\nmarp: true\r\n---\r\n# One\r\n<!-- hi -->\r\n",
			want:    []domain.Page{{Number: 1, Notes: "hi"}},
		},
		{
			name:    "inline dashes are not separators",
			content: "# One --- still one\n<!-- note -->\n",
			want:    []domain.Page{{Number: 1, Notes: "note"}},
		},
		{
			name:    "no notes",
			content: "# One\n---\n# Two\n",
			want:    []domain.Page{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Parse(tt.content))
		})
	}
}

func TestSlideNoteExtractor_Extract(t *testing.T) {
	extractor := NewSlideNoteExtractor(testLogger())
	path := filepath.Join(t.TempDir(), "slide.md")
	require.NoError(t, os.WriteFile(path, []byte("# One\n<!-- hello -->\n"), 0o644))

	pages, err := extractor.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Page{{Number: 1, Notes: "hello"}}, pages)

	_, err = extractor.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPageNumber(t *testing.T) {
	tests := map[string]int{
		"page.001.png":          1,
		"slide_page_03.wav":     3,
		"/tmp/2024/page.12.png": 12,
		"v2_slide_7.mp3":        7,
		"deck_12.m4a":           12,
	}
	for name, want := range tests {
		got, ok := pageNumber(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"/tmp/123/cover.png", "intro.mp3", "outro.m4a"} {
		_, ok := pageNumber(name)
		assert.False(t, ok, name)
	}
}
