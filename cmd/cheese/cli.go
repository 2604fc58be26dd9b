package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/station"
	"github.com/dixieflatline76/Cheese/util/log"
)

// newCLIApp creates the CLI application with all commands. Output goes to out.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "cheese",
		Usage:   "Kiosk photobooth",
		Version: config.AppVersion,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath(), Usage: "Configuration file", EnvVars: []string{"CHEESE_CONFIG"}},
		},
		Action: runCmd().Action,
		Commands: []*cli.Command{
			runCmd(),
			serveCmd(),
			captureCmd(),
			devicesCmd(),
			framesCmd(),
			composeCmd(),
			galleryCmd(),
			sendCmd(),
			cloudCmd(),
			configCmd(),
			versionCmd(),
		},
	}
	// Errors are printed by main; tests read them from Run.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// loadHolder opens the configuration named by --config. A malformed file is reported and
// the defaults are used, so the booth still starts.
func loadHolder(c *cli.Context) *config.Holder {
	h, err := config.NewHolder(c.String("config"))
	if err != nil {
		log.Printf("Configuration problem, using defaults: %v", err)
	}
	return h
}

// loadSecrets opens the keyring. Without one, passwords can still come from the config file.
func loadSecrets() config.Secrets {
	s, err := config.NewKeyringSecrets()
	if err != nil {
		log.Printf("Keyring unavailable: %v", err)
		return nil
	}
	return s
}

// migrateSecrets moves a plaintext SMTP password from the file into the keyring.
func migrateSecrets(h *config.Holder, s config.Secrets) {
	next := h.Get().Clone()
	changed, err := config.MigrateSecrets(next, s)
	if err != nil {
		log.Printf("Moving SMTP password to the keyring: %v", err)
		return
	}
	if !changed {
		return
	}
	if err := h.Swap(next); err != nil {
		log.Printf("Saving configuration after moving the SMTP password: %v", err)
		return
	}
	log.Println("SMTP password moved to the system keyring")
}

func openStation(c *cli.Context, h *config.Holder, opts station.Options) (*station.Station, error) {
	secrets := loadSecrets()
	if secrets != nil {
		migrateSecrets(h, secrets)
	}
	st, err := station.Open(h, secrets, opts)
	if err != nil {
		return nil, outputError(err)
	}
	return st, nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(err.Error(), 1)
}

func outputf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}
