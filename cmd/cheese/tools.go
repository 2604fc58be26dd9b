package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v2"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/compositor"
	"github.com/dixieflatline76/Cheese/pkg/delivery"
	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/pkg/gallery"
	"github.com/dixieflatline76/Cheese/pkg/station"
	"github.com/dixieflatline76/Cheese/util"
	"github.com/dixieflatline76/Cheese/util/log"
)

func devicesCmd() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "Probe for webcams and DSLRs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "probe", Value: camera.DefaultProbeCount, Usage: "Webcam indices to try"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second},
		},
		Action: func(c *cli.Context) error {
			cfg := loadHolder(c).Get()
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			out := struct {
				Webcams   []camera.Device `json:"webcams"`
				DSLRs     []camera.Device `json:"dslrs"`
				DSLRError string          `json:"dslr_error,omitempty"`
			}{
				Webcams: camera.ListDevices(ctx, camera.FFmpegProber(cfg.Camera.FFmpegPath), c.Int("probe")),
				DSLRs:   []camera.Device{},
			}
			dslrs, err := camera.DetectDSLRs(ctx, cfg.Camera.GPhoto2Path)
			if err != nil {
				out.DSLRError = err.Error()
			} else {
				out.DSLRs = dslrs
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

type frameInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

func framesCmd() *cli.Command {
	return &cli.Command{
		Name:  "frames",
		Usage: "List the frames in the frames directory",
		Action: func(c *cli.Context) error {
			cfg := loadHolder(c).Get()
			lib := frame.NewLibrary(cfg.FramesDirectory)
			paths, err := lib.List()
			if err != nil {
				return outputError(err)
			}
			allowed := map[string]bool{}
			for _, a := range cfg.AvailableFrames {
				allowed[frame.NameOf(a)] = true
			}
			out := []frameInfo{}
			for _, p := range paths {
				info := frameInfo{
					Name:      frame.NameOf(p),
					Path:      p,
					Available: len(allowed) == 0 || allowed[frame.NameOf(p)],
				}
				if fr, err := lib.Get(p); err != nil {
					info.Error = err.Error()
				} else {
					info.Width, info.Height = fr.Size()
				}
				out = append(out, info)
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

func composeCmd() *cli.Command {
	return &cli.Command{
		Name:  "compose",
		Usage: "Put a frame over an image with the configured crop and effect",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "frame", Required: true, Usage: "Frame PNG, or a name in the frames directory"},
			&cli.StringFlag{Name: "in", Required: true, Usage: "Source image"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "Output JPEG or PNG"},
			&cli.StringFlag{Name: "crop", Usage: "center, smart or face; overrides compositor.crop_mode"},
			&cli.StringFlag{Name: "effect", Usage: "none, grayscale or sepia; overrides compositor.effect"},
		},
		Action: func(c *cli.Context) error {
			cfg := loadHolder(c).Get()
			cc := cfg.Compositor
			if v := c.String("crop"); v != "" {
				cc.CropMode = v
			}
			if v := c.String("effect"); v != "" {
				cc.Effect = v
			}
			comp, err := compositor.FromConfig(cc)
			if err != nil {
				return outputError(err)
			}

			fr, err := frame.Load(resolveFrame(cfg.FramesDirectory, c.String("frame")))
			if err != nil {
				return outputError(err)
			}
			img, err := imaging.Open(c.String("in"), imaging.AutoOrientation(true))
			if err != nil {
				return outputError(fmt.Errorf("opening %s: %w", c.String("in"), err))
			}

			out := c.String("out")
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return outputError(err)
			}
			if err := imaging.Save(comp.Compose(img, fr), out, imaging.JPEGQuality(gallery.JPEGQuality)); err != nil {
				return outputError(fmt.Errorf("writing %s: %w", out, err))
			}
			w, h := fr.Size()
			return outputJSON(c.App.Writer, captureResult{Path: out, Width: w, Height: h, Framed: true})
		},
	}
}

func openGallery(c *cli.Context) (*gallery.Store, error) {
	s, err := gallery.Open(gallery.DirFor(loadHolder(c).Get()))
	if err != nil {
		return nil, outputError(err)
	}
	return s, nil
}

func galleryCmd() *cli.Command {
	return &cli.Command{
		Name:  "gallery",
		Usage: "Inspect and maintain the photos directory",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List indexed photos, newest first",
				Action: func(c *cli.Context) error {
					s, err := openGallery(c)
					if err != nil {
						return err
					}
					defer s.Close()
					entries, err := s.List(c.Context)
					if err != nil {
						return outputError(err)
					}
					if entries == nil {
						entries = []gallery.Entry{}
					}
					return outputJSON(c.App.Writer, entries)
				},
			},
			{
				Name:  "reindex",
				Usage: "Bring the index in line with the files on disk",
				Action: func(c *cli.Context) error {
					s, err := openGallery(c)
					if err != nil {
						return err
					}
					defer s.Close()
					added, removed, err := s.Reindex(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, map[string]int{"added": added, "removed": removed})
				},
			},
			{
				Name:      "export",
				Usage:     "Copy every photo into a directory",
				ArgsUsage: "<directory>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return outputError(errors.New("export needs a destination directory"))
					}
					s, err := openGallery(c)
					if err != nil {
						return err
					}
					defer s.Close()
					n, err := s.Export(c.Context, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, map[string]int{"copied": n})
				},
			},
		},
	}
}

type sendResult struct {
	Channel  string `json:"channel"`
	Target   string `json:"target,omitempty"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration_ms"`
}

func sendCmd() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Deliver a photo by email, to OneDrive and to the printer",
		ArgsUsage: "<photo>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Recipient address"},
			&cli.BoolFlag{Name: "print", Usage: "Print the photo"},
			&cli.BoolFlag{Name: "upload", Usage: "Upload to OneDrive"},
			&cli.DurationFlag{Name: "timeout", Value: 5 * time.Minute},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.New("send needs the photo to deliver"))
			}
			path := c.Args().First()
			if _, err := os.Stat(path); err != nil {
				return outputError(err)
			}
			req := delivery.Request{Email: c.String("email"), Print: c.Bool("print"), Upload: c.Bool("upload")}
			if len(req.Channels()) == 0 {
				return outputError(errors.New("nothing to do: pass --email, --print or --upload"))
			}

			st, err := openStation(c, loadHolder(c), station.Options{})
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			results, err := st.Deliver(ctx, path, req)
			if err != nil {
				return outputError(err)
			}

			out := make([]sendResult, 0, len(results))
			failed := 0
			for _, r := range results {
				sr := sendResult{Channel: r.Channel, Target: r.Target, OK: r.OK(), Duration: r.Duration.Milliseconds()}
				if !r.OK() {
					sr.Error = r.Err.Error()
					failed++
				}
				out = append(out, sr)
			}
			if err := outputJSON(c.App.Writer, out); err != nil {
				return err
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d deliveries failed", failed, len(out)), 2)
			}
			return nil
		},
	}
}

func cloudCmd() *cli.Command {
	auth := func(c *cli.Context, prompt delivery.DevicePrompt) (*delivery.DeviceAuth, error) {
		cfg := loadHolder(c).Get().Cloud
		if cfg.ClientID == "" {
			return nil, outputError(errors.New("onedrive.client_id is not set"))
		}
		secrets := loadSecrets()
		if secrets == nil {
			return nil, outputError(errors.New("the system keyring is required to keep the sign-in"))
		}
		return delivery.NewDeviceAuth(cfg, secrets, prompt), nil
	}
	return &cli.Command{
		Name:  "cloud",
		Usage: "Manage the OneDrive sign-in",
		Subcommands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with a device code",
				Action: func(c *cli.Context) error {
					a, err := auth(c, func(uri, code string) {
						outputf(c, "Open %s and enter the code %s\n", uri, code)
					})
					if err != nil {
						return err
					}
					if err := a.Login(c.Context, nil); err != nil {
						return outputError(err)
					}
					outputf(c, "Signed in\n")
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "Forget the stored sign-in",
				Action: func(c *cli.Context) error {
					a, err := auth(c, nil)
					if err != nil {
						return err
					}
					if err := a.SignOut(); err != nil {
						return outputError(err)
					}
					outputf(c, "Signed out\n")
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "Report whether a sign-in is stored",
				Action: func(c *cli.Context) error {
					a, err := auth(c, nil)
					if err != nil {
						return err
					}
					return outputJSON(c.App.Writer, map[string]bool{"signed_in": a.SignedIn()})
				},
			},
		},
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(c *cli.Context) error {
					cfg := loadHolder(c).Get().Clone()
					if cfg.Email.SenderPassword != "" {
						cfg.Email.SenderPassword = "********"
					}
					return outputJSON(c.App.Writer, cfg)
				},
			},
			{
				Name:  "path",
				Usage: "Print the configuration file location",
				Action: func(c *cli.Context) error {
					outputf(c, "%s\n", c.String("config"))
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Check the file and the enabled delivery channels",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return outputError(err)
					}
					if err := cfg.Validate(); err != nil {
						return outputError(err)
					}
					outputf(c, "OK\n")
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write the defaults unless a file already exists",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if _, err := os.Stat(path); err == nil {
						return outputError(fmt.Errorf("%s already exists", path))
					}
					if err := config.Default().Save(path); err != nil {
						return outputError(err)
					}
					outputf(c, "%s\n", path)
					return nil
				},
			},
		},
	}
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "check", Usage: "Ask GitHub for a newer release"},
		},
		Action: func(c *cli.Context) error {
			outputf(c, "%s %s\n", config.AppName, config.AppVersion)
			if f := log.File(); f != "" {
				outputf(c, "Log: %s\n", f)
			}
			if !c.Bool("check") {
				return nil
			}
			ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
			defer cancel()
			res, err := util.CheckForUpdates(ctx, nil)
			if err != nil {
				return outputError(err)
			}
			if res.UpdateAvailable {
				outputf(c, "Version %s is available: %s\n", res.LatestVersion, res.ReleaseURL)
			} else {
				outputf(c, "Up to date\n")
			}
			return nil
		},
	}
}
