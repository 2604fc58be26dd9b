package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/Cheese/pkg/delivery"
)

// CreateSectionTitleLabel creates a label for a section title
func CreateSectionTitleLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.HighImportance
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// CreateSettingTitleLabel creates a label for a setting title
func CreateSettingTitleLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.MediumImportance
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// CreateSettingDescriptionLabel creates a label for a setting description
func CreateSettingDescriptionLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.LowImportance
	label.TextStyle = fyne.TextStyle{Italic: true}
	return label
}

// thumbnail shrinks img to fit within w×h. Smaller images are returned as they are.
func thumbnail(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	return imaging.Fit(img, w, h, imaging.Box)
}

// blank is the tile image for "no frame".
func blank(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
}

// channelTitle is the button caption for a delivery channel.
func channelTitle(channel string) string {
	switch channel {
	case delivery.ChannelEmail:
		return "Email"
	case delivery.ChannelCloud:
		return "OneDrive"
	case delivery.ChannelPrinter:
		return "Print"
	}
	return channel
}

// deliveryStatus is the line shown under the photo once a channel has finished.
func deliveryStatus(channel, target string, ok bool, message string) string {
	if !ok {
		return channelTitle(channel) + " failed: " + message
	}
	switch channel {
	case delivery.ChannelEmail:
		return "Sent to " + target
	case delivery.ChannelCloud:
		return "Uploaded to OneDrive"
	case delivery.ChannelPrinter:
		if target != "" {
			return "Printing on " + target
		}
		return "Printing"
	}
	return channelTitle(channel) + " done"
}
