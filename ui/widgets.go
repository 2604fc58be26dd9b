package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/util/log"
)

// actionButton is a tappable control that can be disabled: a stock button or custom artwork.
type actionButton interface {
	fyne.CanvasObject
	fyne.Disableable
}

// imageButton shows operator supplied artwork and swaps to the pressed image while held.
type imageButton struct {
	widget.DisableableWidget

	normal, pressed fyne.Resource
	img             *canvas.Image
	OnTapped        func()
}

func newImageButton(normal, pressed fyne.Resource, size fyne.Size, tapped func()) *imageButton {
	b := &imageButton{normal: normal, pressed: pressed, OnTapped: tapped}
	b.img = canvas.NewImageFromResource(normal)
	b.img.FillMode = canvas.ImageFillContain
	b.img.SetMinSize(size)
	b.ExtendBaseWidget(b)
	return b
}

func (b *imageButton) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.img)
}

func (b *imageButton) Tapped(*fyne.PointEvent) {
	if b.Disabled() || b.OnTapped == nil {
		return
	}
	b.OnTapped()
}

func (b *imageButton) MouseDown(*desktop.MouseEvent) {
	if b.Disabled() || b.pressed == nil {
		return
	}
	b.img.Resource = b.pressed
	b.img.Refresh()
}

func (b *imageButton) MouseUp(*desktop.MouseEvent) {
	b.img.Resource = b.normal
	b.img.Refresh()
}

func (b *imageButton) Disable() {
	b.DisableableWidget.Disable()
	b.img.Translucency = 0.6
	b.img.Refresh()
}

func (b *imageButton) Enable() {
	b.DisableableWidget.Enable()
	b.img.Translucency = 0
	b.img.Refresh()
}

// newActionButton uses the artwork at normalPath when it loads, otherwise a large text button.
func newActionButton(normalPath, pressedPath, text string, size fyne.Size, tapped func()) actionButton {
	if normalPath != "" {
		normal, err := fyne.LoadResourceFromPath(normalPath)
		if err == nil {
			var pressed fyne.Resource
			if pressedPath != "" {
				if pressed, err = fyne.LoadResourceFromPath(pressedPath); err != nil {
					log.Printf("Button image %s: %v", pressedPath, err)
					pressed = nil
				}
			}
			return newImageButton(normal, pressed, size, tapped)
		}
		log.Printf("Button image %s: %v", normalPath, err)
	}
	btn := widget.NewButton(text, tapped)
	btn.Importance = widget.HighImportance
	return btn
}

// tile is a selectable thumbnail with a caption, used by the frame picker and the gallery.
type tile struct {
	widget.BaseWidget

	img      *canvas.Image
	caption  *widget.Label
	border   *canvas.Rectangle
	selected bool
	onTapped func()
}

func newTile(img image.Image, caption string, size fyne.Size, tapped func()) *tile {
	t := &tile{onTapped: tapped}
	t.img = canvas.NewImageFromImage(img)
	t.img.FillMode = canvas.ImageFillContain
	t.img.SetMinSize(size)
	t.caption = widget.NewLabel(caption)
	t.caption.Alignment = fyne.TextAlignCenter
	t.caption.Truncation = fyne.TextTruncateEllipsis
	t.border = canvas.NewRectangle(color.Transparent)
	t.border.CornerRadius = theme.Size(theme.SizeNameInputRadius)
	t.ExtendBaseWidget(t)
	return t
}

func (t *tile) CreateRenderer() fyne.WidgetRenderer {
	body := container.NewBorder(nil, t.caption, nil, nil, t.img)
	return widget.NewSimpleRenderer(container.NewStack(t.border, container.NewPadded(body)))
}

func (t *tile) Tapped(*fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped()
	}
}

// SetSelected outlines the tile.
func (t *tile) SetSelected(on bool) {
	t.selected = on
	if on {
		t.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		t.border.StrokeWidth = 4
	} else {
		t.border.StrokeColor = color.Transparent
		t.border.StrokeWidth = 0
	}
	t.border.Refresh()
}

// Selected reports whether the tile is outlined.
func (t *tile) Selected() bool {
	return t.selected
}

// bigText is a centred headline.
func bigText(text string, size float32) *canvas.Text {
	t := canvas.NewText(text, theme.Color(theme.ColorNameForeground))
	t.TextSize = size
	t.TextStyle = fyne.TextStyle{Bold: true}
	t.Alignment = fyne.TextAlignCenter
	return t
}
