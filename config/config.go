package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the booth configuration persisted as JSON.
// Every field has a documented default in Default; a file only needs the fields it overrides.
type Config struct {
	Camera     CameraConfig     `json:"camera"`
	Email      EmailConfig      `json:"email"`
	Printer    PrinterConfig    `json:"printer"`
	Cloud      CloudConfig      `json:"onedrive"`
	Buttons    ButtonsConfig    `json:"buttons"`
	Compositor CompositorConfig `json:"compositor"`
	API        APIConfig        `json:"api"`
	Hotkey     HotkeyConfig     `json:"hotkey"`

	AvailableFrames    []string `json:"available_frames"`
	SaveToDisk         bool     `json:"save_to_disk"`
	PhotosDirectory    string   `json:"photos_directory"`
	FramesDirectory    string   `json:"frames_directory"`
	ShutterSoundPath   string   `json:"shutter_sound_path"`
	CountdownSoundPath string   `json:"countdown_sound_path"`

	HomeTitle           string `json:"home_title"`
	HomeSubtitle        string `json:"home_subtitle"`
	PreviewTitle        string `json:"preview_title"`
	HomeStartButtonText string `json:"home_start_button_text"`
	StartFullscreen     bool   `json:"start_fullscreen"`
	ShowNoFrameOption   bool   `json:"show_no_frame_option"`
	LastSelectedFrame   string `json:"last_selected_frame"`
}

// CameraConfig selects and tunes the camera source.
type CameraConfig struct {
	Type             string `json:"type"` // webcam, dslr or pattern
	DeviceID         int    `json:"device_id"`
	DeviceName       string `json:"device_name"`
	ResolutionWidth  int    `json:"resolution_width"`
	ResolutionHeight int    `json:"resolution_height"`
	FPS              int    `json:"fps"`
	FFmpegPath       string `json:"ffmpeg_path"`
	GPhoto2Path      string `json:"gphoto2_path"`
}

// EmailConfig holds the SMTP settings. The password normally lives in the keyring.
type EmailConfig struct {
	Enabled        bool   `json:"enabled"`
	SMTPServer     string `json:"smtp_server"`
	SMTPPort       int    `json:"smtp_port"`
	SenderEmail    string `json:"sender_email"`
	SenderPassword string `json:"sender_password,omitempty"`
	UseTLS         bool   `json:"use_tls"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
}

// PrinterConfig holds the print channel settings. An empty PrinterName means the system default.
type PrinterConfig struct {
	Enabled     bool   `json:"enabled"`
	PrinterName string `json:"printer_name"`
	PaperSize   string `json:"paper_size"`
}

// CloudConfig holds the OneDrive upload settings.
type CloudConfig struct {
	Enabled    bool   `json:"enabled"`
	ClientID   string `json:"client_id"`
	TenantID   string `json:"tenant_id"`
	FolderPath string `json:"folder_path"`
}

// ButtonsConfig lets an operator replace the stock buttons with custom artwork.
type ButtonsConfig struct {
	CaptureNormal      string `json:"capture_normal"`
	CapturePressed     string `json:"capture_pressed"`
	ChooseFrameNormal  string `json:"choose_frame_normal"`
	ChooseFramePressed string `json:"choose_frame_pressed"`
	GalleryNormal      string `json:"gallery_normal"`
	GalleryPressed     string `json:"gallery_pressed"`
	CaptureMode        string `json:"capture_mode"` // image or text
}

// CompositorConfig tunes how photos are fitted under frames.
type CompositorConfig struct {
	CropMode    string `json:"crop_mode"` // center, smart or face
	Effect      string `json:"effect"`    // none, grayscale or sepia
	FaceCascade string `json:"face_cascade"`
	LivePreview bool   `json:"live_preview"`
}

// APIConfig controls the local remote-control server.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

// HotkeyConfig controls the global capture shortcut.
type HotkeyConfig struct {
	Enabled bool `json:"enabled"`
}

// DataDir returns the per-user directory holding config, photos and frames.
func DataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "." + strings.ToLower(AppName)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName))
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(DataDir(), ConfigFileName)
}

// Default returns the configuration used when no file exists or a field is missing.
func Default() *Config {
	dataDir := DataDir()
	return &Config{
		Camera: CameraConfig{
			Type:             CameraWebcam,
			DeviceID:         0,
			DeviceName:       "Default Camera",
			ResolutionWidth:  1920,
			ResolutionHeight: 1080,
			FPS:              30,
			FFmpegPath:       "ffmpeg",
			GPhoto2Path:      "gphoto2",
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
			UseTLS:     true,
			Subject:    "Your Photobooth Photo",
			Message:    "Thank you for using our photobooth! Here's your photo.",
		},
		Printer: PrinterConfig{
			PaperSize: PaperA4,
		},
		Cloud: CloudConfig{
			TenantID:   "common",
			FolderPath: "/Photos/Photobooth",
		},
		Buttons: ButtonsConfig{
			CaptureMode: "image",
		},
		Compositor: CompositorConfig{
			CropMode:    CropCenter,
			Effect:      EffectNone,
			LivePreview: true,
		},
		API: APIConfig{
			Address: "127.0.0.1:49460",
		},
		Hotkey: HotkeyConfig{
			Enabled: true,
		},
		AvailableFrames:     []string{},
		SaveToDisk:          true,
		PhotosDirectory:     filepath.Join(dataDir, PhotosSubDir),
		FramesDirectory:     filepath.Join(dataDir, FramesSubDir),
		ShutterSoundPath:    filepath.Join(dataDir, SoundsSubDir, "shutter.wav"),
		CountdownSoundPath:  filepath.Join(dataDir, SoundsSubDir, "beep.wav"),
		HomeTitle:           "Bienvenue au Photobooth!",
		HomeSubtitle:        "Choisissez votre cadre préféré",
		PreviewTitle:        "Votre Photo!",
		HomeStartButtonText: "Commencer ➔",
		StartFullscreen:     true,
		ShowNoFrameOption:   true,
	}
}

// Load reads the configuration at path on top of Default.
// A missing file yields the defaults and no error. A malformed file yields the
// defaults together with the parse error so the caller can report it without aborting.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	overlay := Default()
	if err := json.Unmarshal(data, overlay); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	overlay.normalize()
	return overlay, nil
}

// Save writes the whole configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Rename(tmp, path)
}

// Clone returns a deep copy that can be edited without affecting holders of c.
func (c *Config) Clone() *Config {
	cp := *c
	cp.AvailableFrames = make([]string, len(c.AvailableFrames))
	copy(cp.AvailableFrames, c.AvailableFrames)
	return &cp
}

// Validate reports misconfiguration of the enabled delivery channels.
// It is consulted at send time and from the admin screen, never at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Email.Enabled {
		if c.Email.SMTPServer == "" || c.Email.SMTPPort <= 0 {
			errs = append(errs, errors.New("email: SMTP server and port are required"))
		}
		if c.Email.SenderEmail == "" {
			errs = append(errs, errors.New("email: sender address is required"))
		}
	}
	if c.Cloud.Enabled && c.Cloud.ClientID == "" {
		errs = append(errs, errors.New("onedrive: client id is required"))
	}
	if c.Printer.Enabled {
		if _, ok := PaperSizes[c.Printer.PaperSize]; !ok {
			errs = append(errs, fmt.Errorf("printer: unknown paper size %q", c.Printer.PaperSize))
		}
	}
	return errors.Join(errs...)
}

// normalize repairs values that decoded but make no sense, falling back to the defaults.
func (c *Config) normalize() {
	def := Default()

	switch c.Camera.Type {
	case CameraWebcam, CameraDSLR, CameraPattern:
	default:
		c.Camera.Type = def.Camera.Type
	}
	if c.Camera.ResolutionWidth <= 0 || c.Camera.ResolutionHeight <= 0 {
		c.Camera.ResolutionWidth = def.Camera.ResolutionWidth
		c.Camera.ResolutionHeight = def.Camera.ResolutionHeight
	}
	if c.Camera.FPS <= 0 {
		c.Camera.FPS = def.Camera.FPS
	}
	if _, ok := PaperSizes[c.Printer.PaperSize]; !ok {
		c.Printer.PaperSize = def.Printer.PaperSize
	}
	switch c.Compositor.CropMode {
	case CropCenter, CropSmart, CropFace:
	default:
		c.Compositor.CropMode = def.Compositor.CropMode
	}
	switch c.Compositor.Effect {
	case EffectNone, EffectGrayscale, EffectSepia:
	default:
		c.Compositor.Effect = def.Compositor.Effect
	}
	if c.AvailableFrames == nil {
		c.AvailableFrames = []string{}
	}
	if c.PhotosDirectory == "" {
		c.PhotosDirectory = def.PhotosDirectory
	}
	if c.FramesDirectory == "" {
		c.FramesDirectory = def.FramesDirectory
	}
}

// PaperSize describes a sheet in tenths of a millimetre.
type PaperSize struct {
	Name   string
	Width  int
	Height int
}

// PaperSizes is the fixed table of supported sheets.
var PaperSizes = map[string]PaperSize{
	PaperA4:      {Name: PaperA4, Width: 2100, Height: 2970},
	PaperLetter:  {Name: PaperLetter, Width: 2159, Height: 2794},
	Paper4x6:     {Name: Paper4x6, Width: 1016, Height: 1524},
	Paper10x15:   {Name: Paper10x15, Width: 1000, Height: 1500},
	Paper5x7:     {Name: Paper5x7, Width: 1270, Height: 1778},
	Paper100x148: {Name: Paper100x148, Width: 1000, Height: 1480},
}

// PaperSizeNames lists the paper table in a stable order for pickers.
func PaperSizeNames() []string {
	return []string{PaperA4, PaperLetter, Paper4x6, Paper10x15, Paper5x7, Paper100x148}
}
