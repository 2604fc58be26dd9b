//go:build !windows

package delivery

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/util"
)

// cupsSpooler drives the CUPS command line tools.
type cupsSpooler struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func platformSpooler() spooler {
	if _, err := exec.LookPath("lp"); err != nil {
		return nil
	}
	return cupsSpooler{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).CombinedOutput()
	}}
}

// media maps the paper table onto CUPS media names.
var media = map[string]string{
	config.PaperA4:      "A4",
	config.PaperLetter:  "Letter",
	config.Paper4x6:     "4x6",
	config.Paper10x15:   "om_10x15_100x150mm",
	config.Paper5x7:     "5x7",
	config.Paper100x148: "Postcard",
}

func (c cupsSpooler) submit(ctx context.Context, printer, file string, paper config.PaperSize) error {
	args := []string{"-d", printer, "-t", jobTitle(file), "-o", "fit-to-page"}
	if m, ok := media[paper.Name]; ok {
		args = append(args, "-o", "media="+m)
	}
	args = append(args, file)
	out, err := c.run(ctx, "lp", args...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, util.Truncate(strings.TrimSpace(string(out)), 300))
	}
	return nil
}

func (c cupsSpooler) defaultPrinter(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "lpstat", "-d")
	if err != nil {
		return "", err
	}
	// "system default destination: office"
	line := strings.TrimSpace(string(out))
	if i := strings.LastIndex(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:]), nil
	}
	return "", nil
}

func (c cupsSpooler) list(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "lpstat", "-e")
	if err != nil {
		return nil, err
	}
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, sc.Err()
}
