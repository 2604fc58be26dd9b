package delivery

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/config"
)

type fakeSpooler struct {
	def       string
	submitted []string
	paper     config.PaperSize
	err       error
}

func (f *fakeSpooler) submit(_ context.Context, printer, file string, paper config.PaperSize) error {
	if f.err != nil {
		return f.err
	}
	if _, err := imaging.Open(file); err != nil {
		return err
	}
	f.submitted = append(f.submitted, printer)
	f.paper = paper
	return nil
}

func (f *fakeSpooler) defaultPrinter(context.Context) (string, error) { return f.def, nil }
func (f *fakeSpooler) list(context.Context) ([]string, error)         { return []string{"a", "b"}, nil }

func savedPhoto(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo_20261019_150405.jpg")
	require.NoError(t, imaging.Save(imaging.New(w, h, color.NRGBA{B: 255, A: 255}), path))
	return path
}

func TestPagePixels(t *testing.T) {
	w, h := PagePixels(config.PaperSizes[config.PaperA4])
	assert.Equal(t, 2480, w)
	assert.Equal(t, 3508, h)

	w, h = PagePixels(config.PaperSizes[config.Paper4x6])
	assert.Equal(t, 1200, w)
	assert.Equal(t, 1800, h)
}

func TestRenderPage(t *testing.T) {
	paper := config.PaperSizes[config.Paper4x6]

	portrait := RenderPage(imaging.New(300, 400, color.Black), paper, "")
	assert.Equal(t, 1200, portrait.Bounds().Dx())
	assert.Equal(t, 1800, portrait.Bounds().Dy())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, portrait.NRGBAAt(2, 2), "margin stays white")
	assert.Equal(t, color.NRGBA{A: 255}, portrait.NRGBAAt(600, 900), "photo centred")

	landscape := RenderPage(imaging.New(800, 600, color.Black), paper, "19 October 2026")
	assert.Equal(t, 1800, landscape.Bounds().Dx(), "page turned to match the photo")
	assert.Equal(t, 1200, landscape.Bounds().Dy())
}

func TestPrint(t *testing.T) {
	spool := &fakeSpooler{def: "office"}
	p := &Printer{cfg: config.PrinterConfig{Enabled: true, PaperSize: config.Paper10x15}, spool: spool}

	require.NoError(t, p.Print(context.Background(), savedPhoto(t, 80, 60)))
	assert.Equal(t, []string{"office"}, spool.submitted)
	assert.Equal(t, config.Paper10x15, spool.paper.Name)

	p.cfg.PrinterName = "photo"
	require.NoError(t, p.Print(context.Background(), savedPhoto(t, 80, 60)))
	assert.Equal(t, []string{"office", "photo"}, spool.submitted)

	names, err := p.ListPrinters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestPrintFailures(t *testing.T) {
	p := &Printer{cfg: config.PrinterConfig{PaperSize: config.PaperA4}, spool: &fakeSpooler{def: "x"}}
	assert.ErrorIs(t, p.Print(context.Background(), "x.jpg"), ErrDisabled)

	p = &Printer{cfg: config.PrinterConfig{Enabled: true, PaperSize: config.PaperA4}}
	assert.ErrorIs(t, p.Print(context.Background(), "x.jpg"), ErrUnsupported)
	_, err := p.ListPrinters(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)

	p = &Printer{cfg: config.PrinterConfig{Enabled: true, PaperSize: config.PaperA4}, spool: &fakeSpooler{}}
	assert.ErrorContains(t, p.Print(context.Background(), savedPhoto(t, 10, 10)), "no system default")

	jam := errors.New("paper jam")
	p = &Printer{cfg: config.PrinterConfig{Enabled: true, PaperSize: config.PaperA4, PrinterName: "p"}, spool: &fakeSpooler{err: jam}}
	err = p.Print(context.Background(), savedPhoto(t, 10, 10))
	assert.ErrorIs(t, err, jam)
	assert.Contains(t, err.Error(), "printer p rejected the job")
}
