package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-narrator/cli"
	"slide-narrator/config"
)

func TestRun_Help(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, nil))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_UsageErrorExitCode(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"movie"})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_CreateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	out := &bytes.Buffer{}

	require.NoError(t, run(context.Background(), out, []string{"create-config", path}))
	assert.Contains(t, out.String(), path)

	loaded, err := config.LoadVideoConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.TemplateVideoConfigFile(), *loaded)
}

func TestRun_VoiceWithoutNotes(t *testing.T) {
	slide := filepath.Join(t.TempDir(), "slide.md")
	require.NoError(t, os.WriteFile(slide, []byte("# One\n---\n# Two\n"), 0o644))
	out := &bytes.Buffer{}

	require.NoError(t, run(context.Background(), out, []string{"voice", slide, "--output-dir", t.TempDir()}))
	assert.Contains(t, out.String(), "no speaker notes found")
}

func TestRun_BuildMissingSlide(t *testing.T) {
	err := run(context.Background(), &bytes.Buffer{}, []string{"build", filepath.Join(t.TempDir(), "missing.md")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
