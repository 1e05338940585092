package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type VideoSettings struct {
	FPS         int     `json:"fps"`
	Resolution  []int   `json:"resolution"`
	Codec       string  `json:"codec"`
	AudioCodec  string  `json:"audio_codec"`
	PauseBefore float64 `json:"pause_before"`
	PauseAfter  float64 `json:"pause_after"`
}

type InputSettings struct {
	ImageExtensions []string `json:"image_extensions"`
	AudioExtensions []string `json:"audio_extensions"`
}

// VideoConfigFile is the document written by `narrator create-config`.
type VideoConfigFile struct {
	VideoSettings VideoSettings `json:"video_settings"`
	InputSettings InputSettings `json:"input_settings"`
}

func DefaultVideoSettings() VideoSettings {
	return VideoSettings{
		FPS:         24,
		Resolution:  nil,
		Codec:       "libx264",
		AudioCodec:  "aac",
		PauseBefore: 0.75,
		PauseAfter:  0.75,
	}
}

func DefaultInputSettings() InputSettings {
	return InputSettings{
		ImageExtensions: []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff"},
		AudioExtensions: []string{".wav", ".mp3", ".aac", ".m4a", ".ogg"},
	}
}

func DefaultVideoConfigFile() VideoConfigFile {
	return VideoConfigFile{
		VideoSettings: DefaultVideoSettings(),
		InputSettings: DefaultInputSettings(),
	}
}

// Width and Height return 0 when the source image size should be kept.
func (v VideoSettings) Width() int {
	if len(v.Resolution) != 2 {
		return 0
	}
	return v.Resolution[0]
}

func (v VideoSettings) Height() int {
	if len(v.Resolution) != 2 {
		return 0
	}
	return v.Resolution[1]
}

func (v VideoSettings) Validate() error {
	if v.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", v.FPS)
	}
	if len(v.Resolution) != 0 {
		if len(v.Resolution) != 2 || v.Resolution[0] <= 0 || v.Resolution[1] <= 0 {
			return fmt.Errorf("resolution must be two positive integers, got %v", v.Resolution)
		}
	}
	if v.Codec == "" || v.AudioCodec == "" {
		return fmt.Errorf("codec and audio_codec must be set")
	}
	if v.PauseBefore < 0 || v.PauseAfter < 0 {
		return fmt.Errorf("pauses must not be negative")
	}
	return nil
}

// ParseResolution accepts WIDTHxHEIGHT, e.g. 1920x1080.
func ParseResolution(value string) ([]int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(value)), "x")
	if len(parts) != 2 {
		return nil, fmt.Errorf("resolution %q must look like WIDTHxHEIGHT", value)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("invalid resolution width %q", parts[0])
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("invalid resolution height %q", parts[1])
	}
	return []int{width, height}, nil
}

// LoadVideoConfigFile reads path on top of the defaults, so missing keys keep their default.
func LoadVideoConfigFile(path string) (*VideoConfigFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read video config %s: %w", path, err)
	}

	conf := DefaultVideoConfigFile()
	if err := json.Unmarshal(content, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse video config %s: %w", path, err)
	}
	if err := conf.VideoSettings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid video config %s: %w", path, err)
	}
	if len(conf.InputSettings.ImageExtensions) == 0 || len(conf.InputSettings.AudioExtensions) == 0 {
		return nil, fmt.Errorf("invalid video config %s: extension lists must not be empty", path)
	}

	return &conf, nil
}

// TemplateVideoConfigFile is the document written by create-config. Its
// extension lists are narrower than the defaults used when no file is given.
func TemplateVideoConfigFile() VideoConfigFile {
	return VideoConfigFile{
		VideoSettings: DefaultVideoSettings(),
		InputSettings: InputSettings{
			ImageExtensions: []string{".png", ".jpg", ".jpeg"},
			AudioExtensions: []string{".wav", ".mp3", ".aac"},
		},
	}
}

func WriteVideoConfigTemplate(path string) error {
	payload, err := json.MarshalIndent(TemplateVideoConfigFile(), "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}
