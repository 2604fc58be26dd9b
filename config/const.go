package config

import "strings"

// AppVersion is the version of the application, set with -ldflags at build time.
var AppVersion = "0.1.0"

// AppName is the name of the application.
const AppName = "Cheese"

// AppID is the reverse-DNS identifier used for Fyne preferences.
const AppID = "com.dixieflatline76.cheese"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// ConfigFileName is the name of the booth configuration file inside the data directory.
const ConfigFileName = "config.json"

const (
	// PhotosSubDir holds captured photos.
	PhotosSubDir = "photos"
	// FramesSubDir holds decorative PNG frames.
	FramesSubDir = "frames"
	// SoundsSubDir holds countdown and shutter cues.
	SoundsSubDir = "sounds"
)

// Paper sizes understood by the printer channel.
const (
	PaperA4      = "A4"
	PaperLetter  = "Letter"
	Paper4x6     = "4x6"
	Paper10x15   = "10x15"
	Paper5x7     = "5x7"
	Paper100x148 = "100x148"
)

// Camera source types.
const (
	CameraWebcam  = "webcam"
	CameraDSLR    = "dslr"
	CameraPattern = "pattern"
)

// Crop modes for fitting a photo under a frame.
const (
	CropCenter = "center"
	CropSmart  = "smart"
	CropFace   = "face"
)

// Effects applied to the photo before the frame goes on.
const (
	EffectNone      = "none"
	EffectGrayscale = "grayscale"
	EffectSepia     = "sepia"
)
