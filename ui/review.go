package ui

import (
	"context"
	"image"
	"image/color"
	"net/mail"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/Cheese/pkg/delivery"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/util/log"
)

// recentRecipientCount is how many past addresses the email box offers.
const recentRecipientCount = 8

// reviewScreen shows the last photo and sends it on.
type reviewScreen struct {
	k *Kiosk

	path      string
	title     *canvas.Text
	view      *canvas.Image
	recipient *widget.SelectEntry
	email     *widget.Button
	print     *widget.Button
	upload    *widget.Button
	status    *widget.Label
	lines     map[string]string
	root      *fyne.Container
}

func newReviewScreen(k *Kiosk) *reviewScreen {
	r := &reviewScreen{k: k, lines: map[string]string{}}

	r.title = bigText("", 36)
	r.view = canvas.NewImageFromImage(nil)
	r.view.FillMode = canvas.ImageFillContain

	r.recipient = widget.NewSelectEntry(nil)
	r.recipient.SetPlaceHolder("your@email.com")
	r.recipient.OnSubmitted = func(string) { r.sendEmail() }

	r.email = widget.NewButtonWithIcon(channelTitle(delivery.ChannelEmail), theme.MailSendIcon(), r.sendEmail)
	r.print = widget.NewButtonWithIcon(channelTitle(delivery.ChannelPrinter), theme.DocumentPrintIcon(), func() {
		r.send(delivery.Request{Print: true}, r.print)
	})
	r.upload = widget.NewButtonWithIcon(channelTitle(delivery.ChannelCloud), theme.UploadIcon(), func() {
		r.send(delivery.Request{Upload: true}, r.upload)
	})

	r.status = widget.NewLabel("")
	r.status.Wrapping = fyne.TextWrapWord

	retake := widget.NewButtonWithIcon("Take another", theme.MediaReplayIcon(), func() { k.show(k.capture) })
	done := widget.NewButtonWithIcon("Done", theme.HomeIcon(), func() { k.show(k.home) })
	done.Importance = widget.HighImportance

	side := container.NewVBox(
		CreateSettingTitleLabel("Send your photo"),
		r.recipient,
		r.email,
		widget.NewSeparator(),
		r.print,
		r.upload,
		widget.NewSeparator(),
		r.status,
	)
	r.root = container.NewBorder(
		container.NewPadded(r.title),
		container.NewPadded(container.NewHBox(retake, layout.NewSpacer(), done)),
		nil,
		container.NewPadded(container.NewStack(minWidth(340), side)),
		r.view,
	)
	return r
}

func (r *reviewScreen) content() fyne.CanvasObject { return r.root }

func (r *reviewScreen) enter() {
	cfg := r.k.st.Config.Get()
	r.title.Text = cfg.PreviewTitle
	r.title.Refresh()

	enable(r.email, cfg.Email.Enabled)
	enable(r.print, cfg.Printer.Enabled)
	enable(r.upload, cfg.Cloud.Enabled)
	if cfg.Email.Enabled {
		r.recipient.Enable()
	} else {
		r.recipient.Disable()
	}

	go func() {
		recent, err := r.k.st.Gallery.RecentRecipients(r.k.ctx, recentRecipientCount)
		if err != nil {
			log.Printf("Recent recipients: %v", err)
			return
		}
		fyne.Do(func() { r.recipient.SetOptions(recent) })
	}()
}

func (r *reviewScreen) leave() {}

// load shows the photo saved at path. p may be nil when the photo comes from the gallery.
func (r *reviewScreen) load(path string, p *photo.Photo) {
	r.path = path
	r.lines = map[string]string{}
	r.status.SetText("")
	r.recipient.SetText("")

	var img image.Image
	if p != nil {
		img = p.Image
	} else if decoded, err := imaging.Open(path); err == nil {
		img = decoded
	} else {
		log.Printf("Opening %s: %v", path, err)
	}
	r.view.Image = img
	r.view.Refresh()
}

func (r *reviewScreen) sendEmail() {
	to := strings.TrimSpace(r.recipient.Text)
	if _, err := mail.ParseAddress(to); err != nil {
		r.setLine(delivery.ChannelEmail, "Please enter a valid email address")
		return
	}
	r.send(delivery.Request{Email: to}, r.email)
}

// send dispatches in the background; the outcome arrives as DeliveryFinished.
func (r *reviewScreen) send(req delivery.Request, btn *widget.Button) {
	if r.path == "" {
		return
	}
	btn.Disable()
	for _, ch := range req.Channels() {
		r.setLine(ch, channelTitle(ch)+": sending...")
	}

	path := r.path
	go func() {
		ctx, cancel := context.WithTimeout(r.k.ctx, delivery.EmailTimeout+delivery.UploadTimeout)
		defer cancel()
		if _, err := r.k.st.Deliver(ctx, path, req); err != nil {
			log.Printf("Delivering %s: %v", filepath.Base(path), err)
			fyne.Do(func() {
				btn.Enable()
				r.status.SetText(err.Error())
			})
		}
	}()
}

func (r *reviewScreen) onDelivered(e event.DeliveryFinished) {
	if e.Path != r.path {
		return
	}
	r.setLine(e.Channel, deliveryStatus(e.Channel, e.Target, e.OK, e.Message))
	switch e.Channel {
	case delivery.ChannelEmail:
		r.email.Enable()
		if e.OK {
			r.recipient.SetText("")
		}
	case delivery.ChannelPrinter:
		r.print.Enable()
	case delivery.ChannelCloud:
		r.upload.Enable()
	}
}

func (r *reviewScreen) setLine(channel, text string) {
	r.lines[channel] = text
	keys := make([]string, 0, len(r.lines))
	for k := range r.lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.lines[k])
	}
	r.status.SetText(strings.Join(out, "\n"))
}

// minWidth is an invisible strut that keeps a column at least w wide.
func minWidth(w float32) fyne.CanvasObject {
	r := canvas.NewRectangle(color.Transparent)
	r.SetMinSize(fyne.NewSize(w, 0))
	return r
}

func enable(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}
