// Package event carries booth notifications between the capture session, delivery and the screens.
package event

import (
	"time"

	"github.com/dixieflatline76/Cheese/pkg/photo"
)

// Kind names an event type on the wire (API websocket) and in logs.
type Kind string

// Event kinds.
const (
	KindStateChanged     Kind = "state_changed"
	KindCountdownTick    Kind = "countdown_tick"
	KindCaptureStarted   Kind = "capture_started"
	KindPhotoCaptured    Kind = "photo_captured"
	KindCaptureFailed    Kind = "capture_failed"
	KindDeliveryFinished Kind = "delivery_finished"
	KindFramesChanged    Kind = "frames_changed"
	KindConfigReloaded   Kind = "config_reloaded"
)

// Event is implemented by every booth event.
type Event interface {
	Kind() Kind
}

// StateChanged reports a capture session transition.
type StateChanged struct {
	SessionID string `json:"session_id,omitempty"`
	Phase     string `json:"phase"`
	Remaining int    `json:"remaining,omitempty"`
}

// CountdownTick reports the remaining count shown on screen.
type CountdownTick struct {
	SessionID string `json:"session_id"`
	Remaining int    `json:"remaining"`
}

// CaptureStarted is published when the shutter fires.
type CaptureStarted struct {
	SessionID string `json:"session_id"`
}

// PhotoCaptured carries the finished photo and where it was saved.
type PhotoCaptured struct {
	SessionID string       `json:"session_id"`
	Photo     *photo.Photo `json:"-"`
	Path      string       `json:"path"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Framed    bool         `json:"framed"`
}

// CaptureFailed is published once per failed capture; the session is already back to idle.
type CaptureFailed struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// DeliveryFinished reports one channel's outcome for one file.
type DeliveryFinished struct {
	Path     string        `json:"path"`
	Channel  string        `json:"channel"`
	Target   string        `json:"target,omitempty"`
	OK       bool          `json:"ok"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// FramesChanged is published when the frames directory changes on disk.
type FramesChanged struct {
	Frames []string `json:"frames"`
}

// ConfigReloaded is published after an admin save swaps in a new configuration.
type ConfigReloaded struct{}

func (StateChanged) Kind() Kind     { return KindStateChanged }
func (CountdownTick) Kind() Kind    { return KindCountdownTick }
func (CaptureStarted) Kind() Kind   { return KindCaptureStarted }
func (PhotoCaptured) Kind() Kind    { return KindPhotoCaptured }
func (CaptureFailed) Kind() Kind    { return KindCaptureFailed }
func (DeliveryFinished) Kind() Kind { return KindDeliveryFinished }
func (FramesChanged) Kind() Kind    { return KindFramesChanged }
func (ConfigReloaded) Kind() Kind   { return KindConfigReloaded }
