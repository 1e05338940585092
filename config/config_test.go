package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVoicevoxConfig_Defaults(t *testing.T) {
	for _, key := range []string{"VOICEVOX_URL", "VOICEVOX_SPEAKER_ID", "VOICEVOX_PAUSE", "VOICEVOX_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	conf, err := GetVoicevoxConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultVoicevoxURL, conf.ApiUrl)
	assert.Equal(t, ZundamonSpeakerID, conf.SpeakerID)
	assert.Equal(t, 500*time.Millisecond, conf.PauseBetween)
	assert.Equal(t, 1, conf.Concurrency)
	assert.Equal(t, 30*time.Second, conf.QueryTimeout)
	assert.Equal(t, 60*time.Second, conf.SynthesisTimeout)
}

func TestGetVoicevoxConfig_Overrides(t *testing.T) {
	t.Setenv("VOICEVOX_URL", "http://localhost:50021")
	t.Setenv("VOICEVOX_SPEAKER_ID", "1")
	t.Setenv("VOICEVOX_PAUSE", "0s")
	t.Setenv("VOICEVOX_CONCURRENCY", "4")

	conf, err := GetVoicevoxConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:50021", conf.ApiUrl)
	assert.Equal(t, 1, conf.SpeakerID)
	assert.Zero(t, conf.PauseBetween)
	assert.Equal(t, 4, conf.Concurrency)
}

func TestGetVoicevoxConfig_Invalid(t *testing.T) {
	t.Setenv("VOICEVOX_SPEAKER_ID", "zundamon")
	_, err := GetVoicevoxConfig()
	assert.Error(t, err)

	t.Setenv("VOICEVOX_SPEAKER_ID", "")
	t.Setenv("VOICEVOX_CONCURRENCY", "0")
	_, err = GetVoicevoxConfig()
	assert.Error(t, err)
}

func TestGetS3Config_RequiresBucketAndRegion(t *testing.T) {
	t.Setenv("BUCKET_NAME", "")
	t.Setenv("REGION", "")
	assert.False(t, S3Enabled())
	_, err := GetS3Config()
	assert.EqualError(t, err, "BUCKET_NAME must be set")

	t.Setenv("BUCKET_NAME", "slides")
	assert.True(t, S3Enabled())
	_, err = GetS3Config()
	assert.EqualError(t, err, "REGION must be set")

	t.Setenv("REGION", "ap-northeast-1")
	conf, err := GetS3Config()
	require.NoError(t, err)
	assert.Equal(t, "presentations", conf.KeyPrefix)
}

func TestGetLogConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	conf, err := GetLogConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.Level)
	assert.Equal(t, "json", conf.Format)

	t.Setenv("LOG_LEVEL", "trace")
	_, err = GetLogConfig()
	assert.Error(t, err)
}

func TestParseResolution(t *testing.T) {
	res, err := ParseResolution("1920x1080")
	require.NoError(t, err)
	assert.Equal(t, []int{1920, 1080}, res)

	for _, bad := range []string{"1920", "x1080", "0x10", "axb", "1x2x3"} {
		_, err := ParseResolution(bad)
		assert.Error(t, err, bad)
	}
}

func TestVideoConfigTemplate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, WriteVideoConfigTemplate(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"resolution": null`)
	assert.Contains(t, string(raw), `"pause_before": 0.75`)

	conf, err := LoadVideoConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, TemplateVideoConfigFile(), *conf)
	assert.Equal(t, DefaultVideoSettings(), conf.VideoSettings)
	assert.Equal(t, []string{".png", ".jpg", ".jpeg"}, conf.InputSettings.ImageExtensions)
	assert.Equal(t, []string{".wav", ".mp3", ".aac"}, conf.InputSettings.AudioExtensions)
}

func TestLoadVideoConfigFile_PartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"video_settings": {"fps": 30, "resolution": [1280, 720]}}`), 0o644))

	conf, err := LoadVideoConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, conf.VideoSettings.FPS)
	assert.Equal(t, 1280, conf.VideoSettings.Width())
	assert.Equal(t, 720, conf.VideoSettings.Height())
	assert.Equal(t, "libx264", conf.VideoSettings.Codec)
	assert.Equal(t, 0.75, conf.VideoSettings.PauseAfter)
	assert.Equal(t, DefaultInputSettings(), conf.InputSettings)
}

func TestLoadVideoConfigFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	badRes := filepath.Join(dir, "res.json")
	require.NoError(t, os.WriteFile(badRes, []byte(`{"video_settings": {"resolution": [1280]}}`), 0o644))
	_, err := LoadVideoConfigFile(badRes)
	assert.Error(t, err)

	negative := filepath.Join(dir, "neg.json")
	require.NoError(t, os.WriteFile(negative, []byte(`{"video_settings": {"pause_before": -1}}`), 0o644))
	_, err = LoadVideoConfigFile(negative)
	assert.Error(t, err)

	_, err = LoadVideoConfigFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetClientCredentialsConfig(t *testing.T) {
	t.Setenv("CLIENT_ID", "")
	assert.False(t, ClientCredentialsEnabled())

	t.Setenv("CLIENT_ID", "narrator")
	t.Setenv("CLIENT_SECRET", "")
	assert.True(t, ClientCredentialsEnabled())
	_, err := GetClientCredentialsConfig()
	assert.EqualError(t, err, "CLIENT_SECRET must be set")

	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("TOKEN_ENDPOINT", "https://auth.example.com/oauth2/token")
	conf, err := GetClientCredentialsConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/oauth2/token", conf.TokenEndpoint)
}

func TestGetServerConfig_BuildLimits(t *testing.T) {
	for _, key := range []string{"WORKER_POOL_SIZE", "MAX_CONCURRENT_BUILDS", "BUILD_SHUTDOWN_GRACE"} {
		t.Setenv(key, "")
	}
	conf, err := GetServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 64, conf.WorkerPoolSize)
	assert.Equal(t, 4, conf.MaxBuilds)
	assert.Equal(t, 30*time.Second, conf.BuildGrace)

	t.Setenv("MAX_CONCURRENT_BUILDS", "2")
	t.Setenv("BUILD_SHUTDOWN_GRACE", "5s")
	conf, err = GetServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, conf.MaxBuilds)
	assert.Equal(t, 5*time.Second, conf.BuildGrace)

	t.Setenv("MAX_CONCURRENT_BUILDS", "0")
	_, err = GetServerConfig()
	assert.EqualError(t, err, "MAX_CONCURRENT_BUILDS must be at least 1")

	t.Setenv("MAX_CONCURRENT_BUILDS", "")
	t.Setenv("BUILD_SHUTDOWN_GRACE", "soon")
	_, err = GetServerConfig()
	assert.ErrorContains(t, err, "failed to parse BUILD_SHUTDOWN_GRACE")
}

func TestGetWorkspaceConfig_Root(t *testing.T) {
	t.Setenv("WORKSPACE_ROOT", "")
	assert.Equal(t, "/workspace", GetWorkspaceConfig().Root)

	t.Setenv("WORKSPACE_ROOT", "/srv/decks")
	assert.Equal(t, "/srv/decks", GetWorkspaceConfig().Root)
}
