// Package station assembles a running booth from its configuration: camera, frames,
// compositor, capture session, gallery and delivery. The kiosk UI and the headless
// server both drive the same station.
package station

import (
	"context"
	"errors"
	"image"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/dixieflatline76/Cheese/asset"
	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/api"
	"github.com/dixieflatline76/Cheese/pkg/booth"
	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/compositor"
	"github.com/dixieflatline76/Cheese/pkg/delivery"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/pkg/gallery"
	"github.com/dixieflatline76/Cheese/pkg/hotkey"
	"github.com/dixieflatline76/Cheese/util/log"
)

// Station is one booth.
type Station struct {
	Config  *config.Holder
	Secrets config.Secrets
	Bus     *event.Bus
	Camera  *camera.Owner
	Gallery *gallery.Store
	Session *booth.Session
	Preview *booth.Preview
	Assets  *asset.Manager

	frames atomic.Pointer[frame.Library]
	comp   atomic.Pointer[compositor.Compositor]
	camCfg atomic.Pointer[config.CameraConfig]
	cloud  atomic.Pointer[cloudAuth]
}

type cloudAuth struct {
	cfg  config.CloudConfig
	auth *delivery.DeviceAuth
}

// Options tunes a station. Zero values take the booth defaults; a nil Player is silent.
type Options struct {
	Session   booth.Options
	Scheduler booth.Scheduler
	Player    booth.Player
}

// Open builds a station from the current configuration. Nothing touches the camera until
// someone acquires it.
func Open(h *config.Holder, secrets config.Secrets, opts Options) (*Station, error) {
	cfg := h.Get()
	s := &Station{
		Config:  h,
		Secrets: secrets,
		Bus:     event.NewBus(),
		Camera:  camera.NewOwner(camera.New(cfg.Camera)),
		Assets:  asset.NewManager(),
	}
	camCfg := cfg.Camera
	s.camCfg.Store(&camCfg)

	store, err := gallery.Open(gallery.DirFor(cfg))
	if err != nil {
		return nil, err
	}
	s.Gallery = store

	s.frames.Store(frame.NewLibrary(cfg.FramesDirectory))
	if err := s.installFrames(cfg.FramesDirectory); err != nil {
		log.Printf("Installing bundled frames: %v", err)
	}
	s.setCompositor(cfg.Compositor)

	sessOpts := opts.Session
	sessOpts.CountdownSound = cfg.CountdownSoundPath
	sessOpts.ShutterSound = cfg.ShutterSoundPath
	s.Session = booth.NewSession(booth.Deps{
		Camera:     s.Camera.Source,
		Frames:     frameLoader{s},
		Compositor: compositorRef{s},
		Saver:      store,
		Bus:        s.Bus,
		Scheduler:  opts.Scheduler,
		Player:     opts.Player,
	}, sessOpts)
	s.Preview = booth.NewPreview(s.Camera.Source, s.Session, frameLoader{s}, compositorRef{s}, cfg.Compositor.LivePreview)

	s.restoreFrame(cfg)
	h.OnChange(s.reload)
	return s, nil
}

// Close stops the camera and closes the gallery.
func (s *Station) Close() error {
	s.Session.Cancel()
	s.Camera.Source().Stop()
	s.Bus.Close()
	return s.Gallery.Close()
}

// Frames returns the current frame library.
func (s *Station) Frames() *frame.Library {
	return s.frames.Load()
}

// Compositor returns the current compositor.
func (s *Station) Compositor() *compositor.Compositor {
	return s.comp.Load()
}

// FrameChoices lists the frames guests may pick from: the configured subset when one is set,
// otherwise everything in the frames directory.
func (s *Station) FrameChoices() ([]string, error) {
	all, err := s.Frames().List()
	if err != nil {
		return nil, err
	}
	allowed := s.Config.Get().AvailableFrames
	if len(allowed) == 0 {
		return all, nil
	}
	keep := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		keep[frame.NameOf(a)] = true
	}
	var out []string
	for _, p := range all {
		if keep[frame.NameOf(p)] {
			out = append(out, p)
		}
	}
	return out, nil
}

// SelectFrame selects the frame for the next capture and remembers it across restarts.
// An empty path selects no frame.
func (s *Station) SelectFrame(path string) {
	s.Session.SelectFrame(path)
	if s.Config.Get().LastSelectedFrame == path {
		return
	}
	if err := s.Config.Update(func(c *config.Config) { c.LastSelectedFrame = path }); err != nil {
		log.Printf("Saving selected frame: %v", err)
	}
}

// WatchFrames publishes FramesChanged whenever the frames directory changes, until ctx is done.
func (s *Station) WatchFrames(ctx context.Context) {
	lib := s.Frames()
	err := lib.Watch(ctx, func() {
		frames, err := s.FrameChoices()
		if err != nil {
			return
		}
		if sel := s.Session.Frame(); sel != "" {
			if _, err := os.Stat(sel); err != nil {
				log.Printf("Selected frame %s disappeared, using no frame", sel)
				s.SelectFrame("")
			}
		}
		s.Bus.Publish(event.FramesChanged{Frames: frames})
	})
	if err != nil {
		log.Printf("Watching frames: %v", err)
	}
}

// CloudAuth returns the sign-in handle for the cloud channel. It is rebuilt when the cloud
// settings change. Interactive sign-in goes through DeviceAuth.Login.
func (s *Station) CloudAuth() *delivery.DeviceAuth {
	cfg := s.Config.Get().Cloud
	cur := s.cloud.Load()
	if cur != nil && cur.cfg == cfg {
		return cur.auth
	}
	next := &cloudAuth{cfg: cfg, auth: delivery.NewDeviceAuth(cfg, s.Secrets, nil)}
	if s.cloud.CompareAndSwap(cur, next) {
		return next.auth
	}
	return s.cloud.Load().auth
}

// Dispatcher builds a delivery dispatcher from the current configuration snapshot.
func (s *Station) Dispatcher() (*delivery.Dispatcher, error) {
	cfg := s.Config.Get()

	body, err := s.Assets.GetText("email_body.md")
	if err != nil {
		body = delivery.DefaultBodyTemplate
	}
	email, err := delivery.NewEmail(cfg.Email, config.SMTPPassword(cfg.Email, s.Secrets), body)
	if err != nil {
		return nil, err
	}

	printer := delivery.NewPrinter(cfg.Printer)
	printer.Caption = cfg.HomeTitle

	return &delivery.Dispatcher{
		Email:    email,
		Cloud:    delivery.NewCloud(cfg.Cloud, s.CloudAuth(), &http.Client{Timeout: delivery.UploadTimeout}),
		Printer:  printer,
		Bus:      s.Bus,
		Recorder: s.Gallery,
	}, nil
}

// Deliver sends the photo at path over the requested channels.
func (s *Station) Deliver(ctx context.Context, path string, req delivery.Request) ([]delivery.Result, error) {
	d, err := s.Dispatcher()
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, path, req), nil
}

// StartAPI runs the remote-control server when it is enabled, until ctx is done.
func (s *Station) StartAPI(ctx context.Context) (*api.Server, error) {
	cfg := s.Config.Get().API
	if !cfg.Enabled {
		return nil, nil
	}
	srv := api.NewServer(s.Session, s.Gallery, nil)
	go srv.Forward(ctx, s.Bus)
	go func() {
		if err := srv.Start(cfg.Address); err != nil {
			log.Printf("API server stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		if err := srv.Stop(); err != nil {
			log.Printf("Stopping API server: %v", err)
		}
	}()
	return srv, nil
}

// StartHotkey registers the global capture shortcut when it is enabled.
func (s *Station) StartHotkey(ctx context.Context) {
	if !s.Config.Get().Hotkey.Enabled {
		return
	}
	l := hotkey.NewListener(func() {
		if _, err := s.Session.Trigger(); err != nil && !errors.Is(err, booth.ErrBusy) {
			log.Printf("Hotkey capture: %v", err)
		}
	}, 2*time.Second)
	if err := l.Start(ctx); err != nil && !errors.Is(err, hotkey.ErrUnsupported) {
		log.Printf("Registering hotkey: %v", err)
	}
}

// Snapshot returns the latest camera image for screens that do not run the preview loop.
func (s *Station) Snapshot() (image.Image, bool) {
	return s.Camera.Source().GetFrame()
}

func (s *Station) installFrames(dir string) error {
	existing, err := frame.NewLibrary(dir).List()
	if err != nil || len(existing) > 0 {
		return err
	}
	written, err := s.Assets.InstallFrames(dir)
	if len(written) > 0 {
		log.Printf("Installed %d bundled frames into %s", len(written), dir)
	}
	return err
}

func (s *Station) setCompositor(cfg config.CompositorConfig) {
	c, err := compositor.FromConfig(cfg)
	if err != nil {
		log.Printf("Compositor: %v, using center crop", err)
	}
	s.comp.Store(c)
}

func (s *Station) restoreFrame(cfg *config.Config) {
	last := cfg.LastSelectedFrame
	if last == "" {
		return
	}
	if _, err := os.Stat(last); err != nil {
		log.Printf("Last selected frame %s is gone, using no frame", last)
		s.SelectFrame("")
		return
	}
	s.Session.SelectFrame(last)
}

// reload applies a new configuration snapshot to the running station.
func (s *Station) reload(cfg *config.Config) {
	s.setCompositor(cfg.Compositor)
	s.Preview.SetLive(cfg.Compositor.LivePreview)
	s.Session.SetSounds(cfg.CountdownSoundPath, cfg.ShutterSoundPath)

	if cfg.FramesDirectory != s.Frames().Dir() {
		s.frames.Store(frame.NewLibrary(cfg.FramesDirectory))
	}
	camCfg := cfg.Camera
	if prev := s.camCfg.Swap(&camCfg); prev == nil || *prev != camCfg {
		log.Printf("Camera settings changed, switching to %s", camCfg.Type)
		s.Camera.Replace(camera.New(camCfg))
	}
	if gallery.DirFor(cfg) != s.Gallery.Dir() {
		log.Printf("Photos directory changed to %s; it takes effect after a restart", gallery.DirFor(cfg))
	}
	s.Bus.Publish(event.ConfigReloaded{})
}

// frameLoader and compositorRef always reach the current library and compositor,
// which a configuration reload may replace.
type frameLoader struct{ s *Station }

func (f frameLoader) Get(path string) (*frame.Frame, error) {
	return f.s.Frames().Get(path)
}

type compositorRef struct{ s *Station }

func (c compositorRef) Compose(img image.Image, fr *frame.Frame) image.Image {
	return c.s.Compositor().Compose(img, fr)
}

func (c compositorRef) Preview(img image.Image, fr *frame.Frame) image.Image {
	return c.s.Compositor().Preview(img, fr)
}
