package config

// WorkspaceConfig holds the devcontainer paths the build task works with.
type WorkspaceConfig struct {
	// Root confines the paths accepted by the HTTP server.
	Root        string
	SlidePath   string
	ImagesDir   string
	AudioDir    string
	OutputDir   string
	VideoName   string
	FFmpegPath  string
	FFprobePath string
	TempDir     string
}

func GetWorkspaceConfig() *WorkspaceConfig {
	return &WorkspaceConfig{
		Root:        getEnv("WORKSPACE_ROOT", "/workspace"),
		SlidePath:   getEnv("SLIDE_PATH", "/workspace/slide.md"),
		ImagesDir:   getEnv("IMAGES_DIR", "/workspace/images"),
		AudioDir:    getEnv("AUDIO_DIR", "/workspace/output"),
		OutputDir:   getEnv("OUTPUT_DIR", "/workspace/output"),
		VideoName:   getEnv("VIDEO_NAME", "presentation.mp4"),
		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		TempDir:     getEnv("TEMP_DIR", ""),
	}
}
