//go:build windows

package delivery

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/dixieflatline76/Cheese/config"
)

type shellSpooler struct{}

func platformSpooler() spooler {
	return shellSpooler{}
}

// submit hands the page to the registered image handler with the printto verb,
// which prints silently on the named printer.
func (shellSpooler) submit(_ context.Context, printer, file string, _ config.PaperSize) error {
	verb, err := windows.UTF16PtrFromString("printto")
	if err != nil {
		return err
	}
	target, err := windows.UTF16PtrFromString(file)
	if err != nil {
		return err
	}
	args, err := windows.UTF16PtrFromString(`"` + printer + `"`)
	if err != nil {
		return err
	}
	return windows.ShellExecute(0, verb, target, args, nil, windows.SW_HIDE)
}

func powershell(ctx context.Context, script string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return cmd.Output()
}

func (shellSpooler) defaultPrinter(ctx context.Context) (string, error) {
	out, err := powershell(ctx, `(Get-CimInstance Win32_Printer -Filter "Default=true").Name`)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (shellSpooler) list(ctx context.Context) ([]string, error) {
	out, err := powershell(ctx, `Get-CimInstance Win32_Printer | ForEach-Object { $_.Name }`)
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
