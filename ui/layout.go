package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// Alignment specifies the horizontal alignment.
type Alignment int

const (
	alignLeft Alignment = iota
	alignCenter
	alignOpposed
)

// SplitAlign is a namespace for the Alignment constants.
var SplitAlign = struct {
	Left    Alignment // Left packs both widgets to the left.
	Center  Alignment // Center centres the pair.
	Opposed Alignment // Opposed puts the first widget left and the second right.
}{
	Left:    alignLeft,
	Center:  alignCenter,
	Opposed: alignOpposed,
}

// FirstWidgetProportion is the share of the row width given to the first widget.
type FirstWidgetProportion float32

// SplitProportion is a namespace for the FirstWidgetProportion values used by the admin form.
var SplitProportion = struct {
	OneThird  FirstWidgetProportion // 1/3 - 2/3
	TwoFifths FirstWidgetProportion // 2/5 - 3/5
	TwoThirds FirstWidgetProportion // 2/3 - 1/3
}{
	OneThird:  1.0 / 3,
	TwoFifths: 2.0 / 5,
	TwoThirds: 2.0 / 3,
}

// splitLayout places a label and its control side by side.
type splitLayout struct {
	widget1    fyne.CanvasObject
	widget2    fyne.CanvasObject
	proportion FirstWidgetProportion
	alignment  Alignment
}

// MinSize calculates the minimum size.
func (s *splitLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	w1 := s.widget1.MinSize()
	w2 := s.widget2.MinSize()
	return fyne.NewSize(w1.Width+w2.Width, fyne.Max(w1.Height, w2.Height))
}

// Layout arranges the widgets. Both get the row height so entries and checks line up.
func (s *splitLayout) Layout(_ []fyne.CanvasObject, size fyne.Size) {
	width1 := size.Width * float32(s.proportion)
	if w := s.widget1.MinSize().Width; width1 < w {
		width1 = w
	}
	width2 := size.Width - width1
	if width2 < 0 {
		width2 = 0
	}

	height := fyne.Max(s.widget1.MinSize().Height, s.widget2.MinSize().Height)
	s.widget1.Resize(fyne.NewSize(width1, height))
	s.widget2.Resize(fyne.NewSize(width2, height))

	var x1, x2 float32
	switch s.alignment {
	case alignOpposed:
		x2 = size.Width - width2
	case alignCenter:
		x1 = (size.Width - width1 - width2) / 2
		x2 = x1 + width1
	default:
		x2 = width1
	}
	s.widget1.Move(fyne.NewPos(x1, 0))
	s.widget2.Move(fyne.NewPos(x2, 0))
}

// NewSplitRowWithAlignment creates a split row with specified alignment and proportion.
func NewSplitRowWithAlignment(widget1, widget2 fyne.CanvasObject, proportion FirstWidgetProportion, alignment Alignment) *fyne.Container {
	l := &splitLayout{
		widget1:    widget1,
		widget2:    widget2,
		proportion: proportion,
		alignment:  alignment,
	}
	return container.New(l, widget1, widget2)
}

// NewSplitRow creates a split row with default (left) alignment.
func NewSplitRow(widget1, widget2 fyne.CanvasObject, proportion FirstWidgetProportion) *fyne.Container {
	return NewSplitRowWithAlignment(widget1, widget2, proportion, alignLeft)
}
