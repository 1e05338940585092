package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
)

func testMarpConfig() *config.MarpConfig {
	return &config.MarpConfig{
		Command:        "npx",
		Package:        "@marp-team/marp-cli@latest",
		ImageScale:     2,
		VersionTimeout: time.Second,
		RenderTimeout:  time.Second,
	}
}

func TestMarpSlideRenderer_Version(t *testing.T) {
	runner := &fakeRunner{outputs: map[string][]byte{"npx": []byte("@marp-team/marp-cli v4.0.0\n")}}
	renderer := NewMarpSlideRenderer(runner, testMarpConfig(), testLogger())

	version, err := renderer.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "@marp-team/marp-cli v4.0.0", version)
	assert.Equal(t, []string{"-y", "@marp-team/marp-cli@latest", "--version"}, runner.lastCall().args)
}

func TestMarpSlideRenderer_VersionUnavailable(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"npx": ErrCommandNotFound}}
	renderer := NewMarpSlideRenderer(runner, testMarpConfig(), testLogger())

	_, err := renderer.Version(context.Background())
	assert.ErrorIs(t, err, outbound.ErrRendererUnavailable)
}

func TestMarpSlideRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	slide := filepath.Join(dir, "slide.md")
	require.NoError(t, os.WriteFile(slide, []byte("# hi"), 0o644))
	outDir := filepath.Join(dir, "images", "nested")

	runner := &fakeRunner{}
	renderer := NewMarpSlideRenderer(runner, testMarpConfig(), testLogger())

	require.NoError(t, renderer.Render(context.Background(), outbound.RenderSlidesRequest{SlidePath: slide, OutputDir: outDir}))
	assert.DirExists(t, outDir)

	call := runner.lastCall()
	assert.Equal(t, "npx", call.name)
	assert.Equal(t, []string{
		"-y", "@marp-team/marp-cli@latest",
		"--images", "png",
		"-o", filepath.ToSlash(filepath.Join(outDir, "page.png")),
		"--image-scale", "2",
		slide,
	}, call.args)
}

func TestMarpSlideRenderer_RenderWithoutNpx(t *testing.T) {
	slide := filepath.Join(t.TempDir(), "slide.md")
	require.NoError(t, os.WriteFile(slide, []byte("# hi"), 0o644))

	conf := testMarpConfig()
	conf.Command = "/usr/local/bin/marp"
	runner := &fakeRunner{}
	renderer := NewMarpSlideRenderer(runner, conf, testLogger())

	require.NoError(t, renderer.Render(context.Background(), outbound.RenderSlidesRequest{SlidePath: slide, OutputDir: t.TempDir()}))
	assert.Equal(t, "--images", runner.lastCall().args[0])
}

func TestMarpSlideRenderer_RenderErrors(t *testing.T) {
	renderer := NewMarpSlideRenderer(&fakeRunner{}, testMarpConfig(), testLogger())
	err := renderer.Render(context.Background(), outbound.RenderSlidesRequest{
		SlidePath: filepath.Join(t.TempDir(), "missing.md"),
		OutputDir: t.TempDir(),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)

	slide := filepath.Join(t.TempDir(), "slide.md")
	require.NoError(t, os.WriteFile(slide, []byte("# hi"), 0o644))
	renderer = NewMarpSlideRenderer(&fakeRunner{errs: map[string]error{"npx": ErrCommandNotFound}}, testMarpConfig(), testLogger())
	err = renderer.Render(context.Background(), outbound.RenderSlidesRequest{SlidePath: slide, OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, outbound.ErrRendererUnavailable)
}
