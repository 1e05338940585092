package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"slide-narrator/config"
)

// ExitError carries the process exit code for a failed invocation.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...interface{}) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

const (
	CommandImages       = "images"
	CommandVoice        = "voice"
	CommandMovie        = "movie"
	CommandCreateConfig = "create-config"
	CommandBuild        = "build"
	CommandServe        = "serve"
	CommandWatch        = "watch"
)

type ImagesOptions struct {
	SlidePath string
	OutputDir string
}

type VoiceOptions struct {
	SlidePath string
	OutputDir string
	SpeakerID int
}

type MovieOptions struct {
	InputDir   string
	Output     string
	ConfigFile string
	Quiet      bool
	Settings   config.VideoConfigFile
}

type CreateConfigOptions struct {
	Path string
}

type BuildOptions struct {
	SlidePath string
	OutputDir string
	Config    string
}

type ServeOptions struct {
	Addr string
}

type WatchOptions struct {
	URL   string
	Token string
}

// Invocation is a parsed command line. Exactly one of the option fields
// matching Command is set.
type Invocation struct {
	Command      string
	Images       *ImagesOptions
	Voice        *VoiceOptions
	Movie        *MovieOptions
	CreateConfig *CreateConfigOptions
	Build        *BuildOptions
	Serve        *ServeOptions
	Watch        *WatchOptions
}

// Parse reads the subcommand and its flags. shouldExit is true when help was
// printed and nothing else should run.
func Parse(args []string, output io.Writer, workspace *config.WorkspaceConfig) (*Invocation, bool, error) {
	if len(args) == 0 {
		printUsage(output)
		return nil, true, nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "-h", "--help", "help":
		printUsage(output)
		return nil, true, nil
	case CommandImages:
		return parseImages(rest, output, workspace)
	case CommandVoice:
		return parseVoice(rest, output, workspace)
	case CommandMovie:
		return parseMovie(rest, output, workspace)
	case CommandCreateConfig:
		return parseCreateConfig(rest, output)
	case CommandBuild:
		return parseBuild(rest, output, workspace)
	case CommandServe:
		return parseServe(rest, output)
	case CommandWatch:
		return parseWatch(rest, output)
	}

	printUsage(output)
	return nil, false, usageError("unknown command %q", command)
}

func printUsage(output io.Writer) {
	fmt.Fprint(output, `
narrator - turns a Marp slide deck into a narrated video.

Usage:
  narrator images [SLIDE] [-o DIR]
  narrator voice [SLIDE] [--output-dir DIR] [--speaker ID]
  narrator movie DIR [-o FILE] [--config FILE] [--fps N] [--resolution WxH]
                 [--codec NAME] [--audio-codec NAME] [--pause-before S] [--pause-after S] [-q]
  narrator create-config FILE
  narrator build [SLIDE] [--output-dir DIR] [--config FILE]
  narrator serve [--addr ADDR]
  narrator watch URL [--token TOKEN]

Run "narrator COMMAND -h" for the options of a command.
`)
}

func newFlagSet(name string, output io.Writer) *flag.FlagSet {
	flagSet := flag.NewFlagSet("narrator "+name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	return flagSet
}

// parseInterleaved lets flags follow positional arguments, which the flag
// package alone stops at.
func parseInterleaved(flagSet *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := flagSet.Parse(args); err != nil {
			return nil, err
		}
		args = flagSet.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// parseArgs runs parseInterleaved and maps its errors to the exit contract.
func parseArgs(flagSet *flag.FlagSet, args []string, maxPositional int) ([]string, bool, error) {
	positional, err := parseInterleaved(flagSet, args)
	if err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	if len(positional) > maxPositional {
		return nil, false, usageError("%s: unexpected arguments %s", flagSet.Name(), strings.Join(positional[maxPositional:], " "))
	}
	return positional, false, nil
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}

func parseImages(args []string, output io.Writer, workspace *config.WorkspaceConfig) (*Invocation, bool, error) {
	flagSet := newFlagSet(CommandImages, output)
	outputDir := flagSet.String("o", workspace.ImagesDir, "Output directory for the page images.")
	flagSet.StringVar(outputDir, "output-dir", workspace.ImagesDir, "Output directory for the page images.")

	positional, shouldExit, err := parseArgs(flagSet, args, 1)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}

	return &Invocation{
		Command: CommandImages,
		Images: &ImagesOptions{
			SlidePath: firstOr(positional, workspace.SlidePath),
			OutputDir: *outputDir,
		},
	}, false, nil
}

func parseVoice(args []string, output io.Writer, workspace *config.WorkspaceConfig) (*Invocation, bool, error) {
	flagSet := newFlagSet(CommandVoice, output)
	outputDir := flagSet.String("output-dir", workspace.AudioDir, "Output directory for the page audio.")
	speaker := flagSet.Int("speaker", -1, "VOICEVOX speaker id. Negative uses VOICEVOX_SPEAKER_ID.")

	positional, shouldExit, err := parseArgs(flagSet, args, 1)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}
	return &Invocation{
		Command: CommandVoice,
		Voice: &VoiceOptions{
			SlidePath: firstOr(positional, workspace.SlidePath),
			OutputDir: *outputDir,
			SpeakerID: *speaker,
		},
	}, false, nil
}

func parseMovie(args []string, output io.Writer, workspace *config.WorkspaceConfig) (*Invocation, bool, error) {
	defaults := config.DefaultVideoSettings()

	flagSet := newFlagSet(CommandMovie, output)
	out := flagSet.String("o", workspace.VideoName, "Output video file.")
	flagSet.StringVar(out, "output", workspace.VideoName, "Output video file.")
	configFile := flagSet.String("config", "", "Video settings file written by create-config.")
	fps := flagSet.Int("fps", defaults.FPS, "Frame rate.")
	resolution := flagSet.String("resolution", "", "Output resolution as WIDTHxHEIGHT. Empty keeps the image size.")
	codec := flagSet.String("codec", defaults.Codec, "Video codec.")
	audioCodec := flagSet.String("audio-codec", defaults.AudioCodec, "Audio codec.")
	pauseBefore := flagSet.Float64("pause-before", defaults.PauseBefore, "Seconds of silence before each slide but the first.")
	pauseAfter := flagSet.Float64("pause-after", defaults.PauseAfter, "Seconds of silence after each slide but the last.")
	quiet := flagSet.Bool("q", false, "Only log warnings and errors.")
	flagSet.BoolVar(quiet, "quiet", false, "Only log warnings and errors.")

	positional, shouldExit, err := parseArgs(flagSet, args, 1)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}
	if len(positional) == 0 {
		flagSet.Usage()
		return nil, false, usageError("movie: input directory is required")
	}

	settings := config.DefaultVideoConfigFile()
	if *configFile != "" {
		loaded, err := config.LoadVideoConfigFile(*configFile)
		if err != nil {
			return nil, false, usageError("%s", err.Error())
		}
		settings = *loaded
	}

	// explicit flags win over the settings file
	var flagErr error
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fps":
			settings.VideoSettings.FPS = *fps
		case "codec":
			settings.VideoSettings.Codec = *codec
		case "audio-codec":
			settings.VideoSettings.AudioCodec = *audioCodec
		case "pause-before":
			settings.VideoSettings.PauseBefore = *pauseBefore
		case "pause-after":
			settings.VideoSettings.PauseAfter = *pauseAfter
		case "resolution":
			res, err := config.ParseResolution(*resolution)
			if err != nil {
				flagErr = err
				return
			}
			settings.VideoSettings.Resolution = res
		}
	})
	if flagErr != nil {
		return nil, false, usageError("%s", flagErr.Error())
	}
	if err := settings.VideoSettings.Validate(); err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	return &Invocation{
		Command: CommandMovie,
		Movie: &MovieOptions{
			InputDir:   positional[0],
			Output:     *out,
			ConfigFile: *configFile,
			Quiet:      *quiet,
			Settings:   settings,
		},
	}, false, nil
}

func parseCreateConfig(args []string, output io.Writer) (*Invocation, bool, error) {
	flagSet := newFlagSet(CommandCreateConfig, output)
	positional, shouldExit, err := parseArgs(flagSet, args, 1)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}
	if len(positional) == 0 {
		return nil, false, usageError("create-config: config file path is required")
	}

	return &Invocation{
		Command:      CommandCreateConfig,
		CreateConfig: &CreateConfigOptions{Path: positional[0]},
	}, false, nil
}

func parseBuild(args []string, output io.Writer, workspace *config.WorkspaceConfig) (*Invocation, bool, error) {
	flagSet := newFlagSet(CommandBuild, output)
	outputDir := flagSet.String("output-dir", workspace.OutputDir, "Directory for images, audio and the video.")
	configFile := flagSet.String("config", "", "Video settings file written by create-config.")

	positional, shouldExit, err := parseArgs(flagSet, args, 1)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}

	return &Invocation{
		Command: CommandBuild,
		Build: &BuildOptions{
			SlidePath: firstOr(positional, workspace.SlidePath),
			OutputDir: *outputDir,
			Config:    *configFile,
		},
	}, false, nil
}

func parseServe(args []string, output io.Writer) (*Invocation, bool, error) {
	flagSet := newFlagSet(CommandServe, output)
	addr := flagSet.String("addr", "", "Listen address. Empty uses SERVER_ADDR.")

	_, shouldExit, err := parseArgs(flagSet, args, 0)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}

	return &Invocation{
		Command: CommandServe,
		Serve:   &ServeOptions{Addr: *addr},
	}, false, nil
}

func parseWatch(args []string, output io.Writer) (*Invocation, bool, error) {
	flagSet := newFlagSet(CommandWatch, output)
	token := flagSet.String("token", "", "Bearer token sent to the server. Empty uses NARRATOR_TOKEN.")

	positional, shouldExit, err := parseArgs(flagSet, args, 1)
	if err != nil || shouldExit {
		return nil, shouldExit, err
	}
	if len(positional) == 0 {
		return nil, false, usageError("watch: events url is required")
	}

	return &Invocation{
		Command: CommandWatch,
		Watch:   &WatchOptions{URL: positional[0], Token: *token},
	}, false, nil
}
