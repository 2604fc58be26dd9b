package delivery

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/util/log"
)

// PrintDPI is the resolution pages are rendered at.
const PrintDPI = 300

// PrintTimeout bounds submitting one job to the spooler.
const PrintTimeout = 30 * time.Second

// spooler submits a rendered page to the platform print system.
type spooler interface {
	submit(ctx context.Context, printer, file string, paper config.PaperSize) error
	defaultPrinter(ctx context.Context) (string, error)
	list(ctx context.Context) ([]string, error)
}

// Printer prints photos on the configured or default printer.
type Printer struct {
	cfg     config.PrinterConfig
	spool   spooler
	Caption string
}

// NewPrinter creates the print channel for the current platform.
func NewPrinter(cfg config.PrinterConfig) *Printer {
	return &Printer{cfg: cfg, spool: platformSpooler()}
}

// Name implements Channel.
func (p *Printer) Name() string { return ChannelPrinter }

// Enabled implements Channel.
func (p *Printer) Enabled() bool { return p.cfg.Enabled }

// Print renders the photo at path onto one page and submits a single job.
func (p *Printer) Print(ctx context.Context, path string) error {
	if !p.cfg.Enabled {
		return failf(ChannelPrinter, ErrDisabled, "printing is disabled")
	}
	if p.spool == nil {
		return failf(ChannelPrinter, ErrUnsupported, "printing is not supported on this platform")
	}
	paper, ok := config.PaperSizes[p.cfg.PaperSize]
	if !ok {
		return failf(ChannelPrinter, ErrNotConfigured, "unknown paper size %q", p.cfg.PaperSize)
	}

	ctx, cancel := context.WithTimeout(ctx, PrintTimeout)
	defer cancel()

	name := p.cfg.PrinterName
	if name == "" {
		def, err := p.spool.defaultPrinter(ctx)
		if err != nil || def == "" {
			return failf(ChannelPrinter, err, "no printer selected and no system default")
		}
		name = def
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return failf(ChannelPrinter, err, "photo %s is not readable", filepath.Base(path))
	}
	page := RenderPage(img, paper, p.Caption)

	tmp, err := os.CreateTemp("", "cheese-print-*.jpg")
	if err != nil {
		return failf(ChannelPrinter, err, "preparing print job: %v", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if err := imaging.Encode(tmp, page, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		tmp.Close()
		return failf(ChannelPrinter, err, "preparing print job: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return failf(ChannelPrinter, err, "preparing print job: %v", err)
	}

	log.Printf("Printing %s on %s (%s)", filepath.Base(path), name, paper.Name)
	if err := p.spool.submit(ctx, name, tmpPath, paper); err != nil {
		return failf(ChannelPrinter, err, "printer %s rejected the job: %v", name, err)
	}
	return nil
}

// ListPrinters returns the printers known to the system.
func (p *Printer) ListPrinters(ctx context.Context) ([]string, error) {
	if p.spool == nil {
		return nil, ErrUnsupported
	}
	return p.spool.list(ctx)
}

// ListPrinters returns the printers known to the system.
func ListPrinters(ctx context.Context) ([]string, error) {
	return NewPrinter(config.PrinterConfig{}).ListPrinters(ctx)
}

// PagePixels converts a paper size in tenths of a millimetre to pixels at PrintDPI.
func PagePixels(paper config.PaperSize) (int, int) {
	px := func(tenths int) int {
		return (tenths*PrintDPI + 127) / 254
	}
	return px(paper.Width), px(paper.Height)
}

// RenderPage lays img out on a white page: turned to match the photo's orientation, fitted
// inside a small margin and centred. A non-empty caption goes under the photo.
func RenderPage(img image.Image, paper config.PaperSize, caption string) *image.NRGBA {
	w, h := PagePixels(paper)
	b := img.Bounds()
	if (b.Dx() > b.Dy()) != (w > h) {
		w, h = h, w
	}
	page := imaging.New(w, h, color.White)

	margin := min(w, h) / 40
	captionH := 0
	if caption != "" {
		captionH = min(w, h) / 20
	}
	fitted := imaging.Fit(img, w-2*margin, h-2*margin-captionH, imaging.Lanczos)
	fb := fitted.Bounds()
	pos := image.Pt((w-fb.Dx())/2, (h-captionH-fb.Dy())/2)
	page = imaging.Paste(page, fitted, pos)

	if caption != "" {
		page = drawCaption(page, caption, pos.Y+fb.Dy(), captionH)
	}
	return page
}

func drawCaption(page *image.NRGBA, caption string, top, height int) *image.NRGBA {
	face := basicfont.Face7x13
	caption = strings.TrimSpace(caption)
	bounds, _ := font.BoundString(face, caption)
	tw := (bounds.Max.X - bounds.Min.X).Ceil()
	if tw <= 0 {
		return page
	}
	text := imaging.New(tw, face.Height, color.Transparent)
	d := &font.Drawer{
		Dst:  text,
		Src:  image.NewUniform(color.NRGBA{R: 60, G: 60, B: 60, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: fixed.I(face.Ascent)},
	}
	d.DrawString(caption)

	scale := max(1, height*2/3/face.Height)
	if limit := page.Bounds().Dx() * 9 / 10 / tw; scale > limit {
		scale = max(1, limit)
	}
	big := imaging.Resize(text, tw*scale, face.Height*scale, imaging.NearestNeighbor)
	x := (page.Bounds().Dx() - big.Bounds().Dx()) / 2
	y := top + (height-big.Bounds().Dy())/2
	return imaging.Overlay(page, big, image.Pt(x, y), 1)
}

// jobTitle is the name a print job shows in the queue.
func jobTitle(file string) string {
	return fmt.Sprintf("%s %s", config.AppName, filepath.Base(file))
}
