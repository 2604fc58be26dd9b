package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/pkg/gallery"
	"github.com/dixieflatline76/Cheese/util/log"
)

const (
	galleryThumbWidth  = 320
	galleryThumbHeight = 240
	// galleryLimit caps how many of the newest photos are shown.
	galleryLimit = 120
)

// galleryScreen is a grid of the photos taken so far, newest first.
type galleryScreen struct {
	k *Kiosk

	grid  *fyne.Container
	count *widget.Label
	root  *fyne.Container
}

func newGalleryScreen(k *Kiosk) *galleryScreen {
	g := &galleryScreen{
		k:     k,
		grid:  container.NewGridWithColumns(k.prefs.GetGalleryColumns()),
		count: widget.NewLabel(""),
	}
	back := widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), func() { k.show(k.home) })
	g.root = container.NewBorder(
		container.NewHBox(back, layout.NewSpacer(), g.count),
		nil, nil, nil,
		container.NewVScroll(g.grid),
	)
	return g
}

func (g *galleryScreen) content() fyne.CanvasObject { return g.root }

func (g *galleryScreen) enter() {
	g.grid.Objects = nil
	g.grid.Refresh()
	g.count.SetText("Loading...")

	store := g.k.st.Gallery
	go func() {
		entries, err := store.List(g.k.ctx)
		if err != nil {
			log.Printf("Listing gallery: %v", err)
			fyne.Do(func() { g.count.SetText("Gallery unavailable") })
			return
		}
		total := len(entries)
		if len(entries) > galleryLimit {
			entries = entries[:galleryLimit]
		}
		tiles := g.tiles(store, entries)
		fyne.Do(func() {
			g.count.SetText(photoCount(total))
			g.grid.Layout = layout.NewGridLayoutWithColumns(g.k.prefs.GetGalleryColumns())
			g.grid.Objects = tiles
			g.grid.Refresh()
		})
	}()
}

func (g *galleryScreen) leave() {}

// tiles decodes thumbnails off the UI goroutine.
func (g *galleryScreen) tiles(store *gallery.Store, entries []gallery.Entry) []fyne.CanvasObject {
	size := fyne.NewSize(galleryThumbWidth, galleryThumbHeight)
	out := make([]fyne.CanvasObject, 0, len(entries))
	for _, e := range entries {
		img, err := store.Thumbnail(e.Name, galleryThumbWidth, galleryThumbHeight)
		if err != nil {
			log.Printf("Thumbnail %s: %v", e.Name, err)
			continue
		}
		entry := e
		out = append(out, newTile(img, e.TakenAt.Format("15:04:05"), size, func() { g.open(entry) }))
	}
	return out
}

func (g *galleryScreen) open(e gallery.Entry) {
	g.k.review.load(e.Path, nil)
	g.k.show(g.k.review)
}

func photoCount(n int) string {
	switch n {
	case 0:
		return "No photos yet"
	case 1:
		return "1 photo"
	}
	return strconv.Itoa(n) + " photos"
}
