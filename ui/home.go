package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/util/log"
)

const (
	frameTileWidth  = 220
	frameTileHeight = 260
)

// noFrameCaption labels the tile that selects no frame.
const noFrameCaption = "No frame"

// homeScreen is the attract screen: texts, the frame picker and the start button.
type homeScreen struct {
	k *Kiosk

	title    *canvas.Text
	subtitle *canvas.Text
	grid     *fyne.Container
	tiles    map[string]*tile
	buttons  *fyne.Container
	root     *fyne.Container
}

func newHomeScreen(k *Kiosk) *homeScreen {
	h := &homeScreen{
		k:        k,
		title:    bigText("", 48),
		subtitle: bigText("", 24),
		grid:     container.NewGridWrap(fyne.NewSize(frameTileWidth, frameTileHeight)),
		tiles:    map[string]*tile{},
		buttons:  container.NewHBox(),
	}
	h.subtitle.TextStyle = fyne.TextStyle{}

	header := container.NewVBox(h.title, h.subtitle)
	h.root = container.NewBorder(
		container.NewPadded(header),
		container.NewPadded(h.buttons),
		nil, nil,
		container.NewVScroll(h.grid),
	)
	h.applyConfig()
	return h
}

func (h *homeScreen) content() fyne.CanvasObject { return h.root }

func (h *homeScreen) enter() {
	h.reloadFrames()
}

func (h *homeScreen) leave() {}

// applyConfig refreshes texts and buttons from the current configuration.
func (h *homeScreen) applyConfig() {
	cfg := h.k.st.Config.Get()
	h.title.Text = cfg.HomeTitle
	h.title.Refresh()
	h.subtitle.Text = cfg.HomeSubtitle
	h.subtitle.Refresh()

	b := cfg.Buttons
	start := newActionButton(b.ChooseFrameNormal, b.ChooseFramePressed, cfg.HomeStartButtonText,
		fyne.NewSize(280, 110), func() { h.k.show(h.k.capture) })
	gallery := newActionButton(b.GalleryNormal, b.GalleryPressed, "Gallery",
		fyne.NewSize(160, 90), func() { h.k.show(h.k.gallery) })
	admin := widget.NewButtonWithIcon("", theme.SettingsIcon(), h.k.openAdmin)
	admin.Importance = widget.LowImportance

	h.buttons.Objects = []fyne.CanvasObject{gallery, layout.NewSpacer(), start, layout.NewSpacer(), admin}
	h.buttons.Refresh()
	h.reloadFrames()
}

// reloadFrames rebuilds the picker from the frames directory.
func (h *homeScreen) reloadFrames() {
	st := h.k.st
	paths, err := st.FrameChoices()
	if err != nil {
		log.Printf("Listing frames: %v", err)
	}

	size := fyne.NewSize(frameTileWidth-20, frameTileHeight-60)
	h.tiles = map[string]*tile{}
	var objs []fyne.CanvasObject

	if st.Config.Get().ShowNoFrameOption || len(paths) == 0 {
		t := newTile(blank(int(size.Width), int(size.Height)), noFrameCaption, size, func() { h.choose("") })
		h.tiles[""] = t
		objs = append(objs, t)
	}
	for _, p := range paths {
		img, err := h.framePreview(p, size)
		if err != nil {
			log.Printf("Frame %s: %v", p, err)
			continue
		}
		path := p
		t := newTile(img, frame.NameOf(p), size, func() { h.choose(path) })
		h.tiles[p] = t
		objs = append(objs, t)
	}

	h.grid.Objects = objs
	h.grid.Refresh()
	h.markSelected(st.Session.Frame())
}

func (h *homeScreen) framePreview(path string, size fyne.Size) (image.Image, error) {
	fr, err := h.k.st.Frames().Get(path)
	if err != nil {
		return nil, err
	}
	return thumbnail(fr.Image, int(size.Width), int(size.Height)), nil
}

func (h *homeScreen) choose(path string) {
	h.k.st.SelectFrame(path)
	h.markSelected(path)
}

func (h *homeScreen) markSelected(path string) {
	if _, ok := h.tiles[path]; !ok {
		path = ""
	}
	for p, t := range h.tiles {
		t.SetSelected(p == path)
	}
}
