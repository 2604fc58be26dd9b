package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/urfave/cli/v2"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/booth"
	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/station"
	"github.com/dixieflatline76/Cheese/ui"
	"github.com/dixieflatline76/Cheese/util/log"
)

const serveHolder = "serve"

func runCmd() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Start the kiosk (default)",
		Action: runKiosk,
	}
}

func runKiosk(c *cli.Context) error {
	ok, err := acquireLock()
	if err != nil {
		return outputError(err)
	}
	if !ok {
		return cli.Exit(config.AppName+" is already running", 1)
	}
	defer releaseLock()

	st, err := openStation(c, loadHolder(c), station.Options{Player: booth.CommandPlayer{}})
	if err != nil {
		return err
	}
	defer st.Close()

	a := app.NewWithID(config.AppID)
	k := ui.New(a, st)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
			log.Println("Signal received, closing the kiosk")
			fyne.Do(a.Quit)
		case <-ctx.Done():
		}
	}()

	if _, err := st.StartAPI(ctx); err != nil {
		log.Printf("API server: %v", err)
	}
	st.StartHotkey(ctx)
	go st.WatchFrames(ctx)

	k.Run()
	return nil
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the booth without a screen, driven by the API and the hotkey",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address, overrides api.address"},
			&cli.BoolFlag{Name: "pattern", Usage: "Use the test card instead of the configured camera"},
			&cli.BoolFlag{Name: "no-hotkey", Usage: "Do not register the global capture shortcut"},
		},
		Action: func(c *cli.Context) error {
			cfg := loadHolder(c).Get().Clone()
			cfg.API.Enabled = true
			if addr := c.String("addr"); addr != "" {
				cfg.API.Address = addr
			}
			if c.Bool("pattern") {
				cfg.Camera.Type = config.CameraPattern
			}
			if c.Bool("no-hotkey") {
				cfg.Hotkey.Enabled = false
			}
			// Flags must not leak into the file.
			h := config.NewHolderWith("", cfg)

			st, err := openStation(c, h, station.Options{Player: booth.CommandPlayer{}})
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := st.Camera.Acquire(ctx, serveHolder, nil); err != nil {
				return outputError(fmt.Errorf("starting camera: %w", err))
			}
			defer st.Camera.Release(serveHolder)

			if _, err := st.StartAPI(ctx); err != nil {
				return outputError(err)
			}
			st.StartHotkey(ctx)
			go st.WatchFrames(ctx)
			go logEvents(ctx, st.Bus)

			log.Printf("Booth serving on %s", cfg.API.Address)
			<-ctx.Done()
			log.Println("Shutting down")
			return nil
		},
	}
}

// logEvents writes booth events to the log until ctx is done.
func logEvents(ctx context.Context, bus *event.Bus) {
	events, cancel := bus.Subscribe(32)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			switch e := e.(type) {
			case event.CountdownTick:
				log.Debugf("Countdown %d", e.Remaining)
			case event.PhotoCaptured:
				log.Printf("Photo saved: %s (%dx%d, framed=%t)", e.Path, e.Width, e.Height, e.Framed)
			case event.CaptureFailed:
				log.Printf("Capture failed: %s", e.Reason)
			case event.DeliveryFinished:
				log.Printf("Delivery %s to %q: ok=%t %s", e.Channel, e.Target, e.OK, e.Message)
			default:
				log.Debugf("Event %s", e.Kind())
			}
		}
	}
}

// captureResult is the JSON written by the capture command.
type captureResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Framed bool   `json:"framed"`
}

func captureCmd() *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Take one photo with the configured camera and save it to the gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "frame", Usage: "Frame file or name, empty for none; defaults to the last selected frame"},
			&cli.IntFlag{Name: "countdown", Value: 3, Usage: "Countdown start"},
			&cli.DurationFlag{Name: "tick", Value: time.Second, Usage: "Countdown step"},
			&cli.BoolFlag{Name: "pattern", Usage: "Use the test card instead of the configured camera"},
			&cli.DurationFlag{Name: "timeout", Value: time.Minute, Usage: "Give up after this long"},
		},
		Action: func(c *cli.Context) error {
			cfg := loadHolder(c).Get().Clone()
			if c.Bool("pattern") {
				cfg.Camera.Type = config.CameraPattern
			}
			cfg.API.Enabled = false
			cfg.Hotkey.Enabled = false
			st, err := openStation(c, config.NewHolderWith("", cfg), station.Options{
				Session: booth.Options{Countdown: c.Int("countdown"), Tick: c.Duration("tick")},
			})
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			framePath := st.Session.Frame()
			if c.IsSet("frame") {
				framePath = resolveFrame(cfg.FramesDirectory, c.String("frame"))
			}
			res, err := captureOnce(ctx, st, framePath)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, res)
		},
	}
}

// resolveFrame accepts a path or a bare name inside the frames directory.
func resolveFrame(dir, name string) string {
	if name == "" || filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	return filepath.Join(dir, name)
}

// captureOnce runs one countdown and capture and waits for its outcome.
func captureOnce(ctx context.Context, st *station.Station, framePath string) (*captureResult, error) {
	if framePath != "" {
		if _, err := st.Frames().Get(framePath); err != nil {
			return nil, err
		}
	}
	st.Session.SelectFrame(framePath)

	events, unsubscribe := st.Bus.Subscribe(16)
	defer unsubscribe()

	src, err := st.Camera.Acquire(ctx, serveHolder, nil)
	if err != nil {
		return nil, fmt.Errorf("starting camera: %w", err)
	}
	defer st.Camera.Release(serveHolder)
	if err := waitForFrame(ctx, src); err != nil {
		return nil, err
	}

	id, err := st.Session.Trigger()
	if err != nil {
		return nil, err
	}
	for {
		select {
		case <-ctx.Done():
			st.Session.Cancel()
			return nil, fmt.Errorf("capture: %w", ctx.Err())
		case e, ok := <-events:
			if !ok {
				return nil, errors.New("booth closed")
			}
			switch e := e.(type) {
			case event.PhotoCaptured:
				if e.SessionID == id {
					return &captureResult{Path: e.Path, Width: e.Width, Height: e.Height, Framed: e.Framed}, nil
				}
			case event.CaptureFailed:
				if e.SessionID == id {
					return nil, errors.New(e.Reason)
				}
			}
		}
	}
}

// waitForFrame blocks until the camera delivers its first frame.
func waitForFrame(ctx context.Context, src camera.Source) error {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for {
		if _, ok := src.GetFrame(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			if msg := src.LastError(); msg != "" {
				return fmt.Errorf("camera: %s", msg)
			}
			return fmt.Errorf("camera produced no frame: %w", ctx.Err())
		case <-t.C:
		}
	}
}
