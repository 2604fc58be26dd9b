package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Camera, cfg.Camera)
	assert.Equal(t, def.Email, cfg.Email)
	assert.Equal(t, PaperA4, cfg.Printer.PaperSize)
	assert.True(t, cfg.SaveToDisk)
	assert.Empty(t, cfg.AvailableFrames)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"camera": {"device_id": 2}, "email": {"enabled": true, "sender_email": "booth@example.com"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Camera.DeviceID)
	assert.Equal(t, 1920, cfg.Camera.ResolutionWidth)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, "booth@example.com", cfg.Email.SenderEmail)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTPServer)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.True(t, cfg.Email.UseTLS)
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"camera": `), 0600))

	cfg, err := Load(path)
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Camera, cfg.Camera)
}

func TestLoadRepairsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"camera": {"type": "laser", "resolution_width": -1, "fps": 0},
		"printer": {"paper_size": "A0"},
		"compositor": {"crop_mode": "random", "effect": "vhs"},
		"available_frames": null,
		"photos_directory": ""
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, CameraWebcam, cfg.Camera.Type)
	assert.Equal(t, 1920, cfg.Camera.ResolutionWidth)
	assert.Equal(t, 1080, cfg.Camera.ResolutionHeight)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.Equal(t, PaperA4, cfg.Printer.PaperSize)
	assert.Equal(t, CropCenter, cfg.Compositor.CropMode)
	assert.Equal(t, EffectNone, cfg.Compositor.Effect)
	assert.NotNil(t, cfg.AvailableFrames)
	assert.Equal(t, def.PhotosDirectory, cfg.PhotosDirectory)
}

func TestSaveWritesWholeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := Default()
	cfg.Camera.DeviceID = 3
	cfg.Printer.PaperSize = Paper4x6
	cfg.LastSelectedFrame = "/frames/gold.png"
	cfg.AvailableFrames = []string{"/frames/gold.png"}
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// Defaults are written out too, not just overrides.
	assert.Contains(t, string(raw), `"smtp_server": "smtp.gmail.com"`)
	assert.NotContains(t, string(raw), "sender_password")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Camera.DeviceID)
	assert.Equal(t, Paper4x6, loaded.Printer.PaperSize)
	assert.Equal(t, "/frames/gold.png", loaded.LastSelectedFrame)
	assert.Equal(t, []string{"/frames/gold.png"}, loaded.AvailableFrames)
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	cfg.AvailableFrames = []string{"a.png"}

	cp := cfg.Clone()
	cp.AvailableFrames[0] = "b.png"
	cp.Camera.DeviceID = 9

	assert.Equal(t, "a.png", cfg.AvailableFrames[0])
	assert.Equal(t, 0, cfg.Camera.DeviceID)
}

func TestPaperSizes(t *testing.T) {
	for _, name := range PaperSizeNames() {
		ps, ok := PaperSizes[name]
		require.True(t, ok, name)
		assert.Equal(t, name, ps.Name)
		assert.Less(t, ps.Width, ps.Height, name)
	}
	assert.Equal(t, PaperSize{Name: Paper4x6, Width: 1016, Height: 1524}, PaperSizes[Paper4x6])
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate(), "disabled channels are never checked")

	cfg.Email.Enabled = true
	cfg.Cloud.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sender address")
	assert.Contains(t, err.Error(), "client id")

	cfg.Email.SenderEmail = "booth@example.com"
	cfg.Cloud.ClientID = "abc"
	assert.NoError(t, cfg.Validate())
}
