package ui

import (
	"context"
	"errors"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/pkg/booth"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/util/log"
)

// captureHolder identifies the capture screen to the camera owner.
const captureHolder = "capture"

// captureScreen shows the live preview and runs the countdown.
type captureScreen struct {
	k *Kiosk

	view    *canvas.Image
	status  *widget.Label
	shoot   actionButton
	bottom  *fyne.Container
	root    *fyne.Container
	cancel  context.CancelFunc
	ready   bool
	phase   booth.Phase
	failure dialog.Dialog
}

func newCaptureScreen(k *Kiosk) *captureScreen {
	c := &captureScreen{k: k}

	c.view = canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 16, 9)))
	c.view.FillMode = canvas.ImageFillContain
	c.view.ScaleMode = canvas.ImageScaleFastest

	c.status = widget.NewLabel("")
	c.status.Alignment = fyne.TextAlignCenter

	c.bottom = container.NewHBox()
	c.applyConfig()

	back := widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), func() { k.show(k.home) })
	background := canvas.NewRectangle(color.Black)
	c.root = container.NewBorder(
		container.NewHBox(back, layout.NewSpacer()),
		container.NewVBox(c.status, c.bottom),
		nil, nil,
		container.NewStack(background, c.view),
	)
	return c
}

func (c *captureScreen) content() fyne.CanvasObject { return c.root }

// applyConfig rebuilds the capture button from the configured artwork or text.
func (c *captureScreen) applyConfig() {
	b := c.k.st.Config.Get().Buttons
	normal, pressed := b.CaptureNormal, b.CapturePressed
	if b.CaptureMode == "text" {
		normal, pressed = "", ""
	}
	c.shoot = newActionButton(normal, pressed, "Take photo", fyne.NewSize(140, 140), c.trigger)
	c.bottom.Objects = []fyne.CanvasObject{layout.NewSpacer(), c.shoot, layout.NewSpacer()}
	c.bottom.Refresh()
	c.updateButton()
}

func (c *captureScreen) enter() {
	ctx, cancel := context.WithCancel(c.k.ctx)
	c.cancel = cancel
	c.setReady(false)
	c.status.SetText("Starting camera...")

	go func() {
		_, err := c.k.st.Camera.Acquire(ctx, captureHolder, func() {
			fyne.Do(func() {
				c.setReady(false)
				c.status.SetText("The camera is in use by the admin screen")
			})
		})
		if ctx.Err() != nil {
			return
		}
		fyne.Do(func() {
			if err != nil {
				log.Printf("Camera unavailable: %v", err)
				c.setReady(false)
				c.status.SetText("Camera unavailable: " + err.Error())
				return
			}
			c.setReady(true)
			c.status.SetText("")
		})
		if err == nil {
			c.k.st.Preview.Run(ctx, c.render)
		}
	}()
}

func (c *captureScreen) leave() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.k.st.Session.Cancel()
	c.k.st.Camera.Release(captureHolder)
	c.setReady(false)
}

// render is called from the preview goroutine.
func (c *captureScreen) render(img image.Image) {
	fyne.Do(func() {
		c.view.Image = img
		c.view.Refresh()
	})
}

func (c *captureScreen) trigger() {
	if !c.ready {
		return
	}
	if _, err := c.k.st.Session.Trigger(); err != nil && !errors.Is(err, booth.ErrBusy) {
		c.status.SetText(err.Error())
	}
}

func (c *captureScreen) setReady(ready bool) {
	c.ready = ready
	c.updateButton()
}

func (c *captureScreen) updateButton() {
	if c.shoot == nil {
		return
	}
	if c.ready && c.phase == booth.Idle {
		c.shoot.Enable()
	} else {
		c.shoot.Disable()
	}
}

func (c *captureScreen) onState(e event.StateChanged) {
	switch e.Phase {
	case booth.CountingDown.String():
		c.phase = booth.CountingDown
		c.status.SetText("Get ready!")
	case booth.Capturing.String():
		c.phase = booth.Capturing
		c.status.SetText("Cheese!")
	default:
		c.phase = booth.Idle
	}
	c.updateButton()
}

func (c *captureScreen) onTick(remaining int) {
	if remaining == 0 {
		c.status.SetText("Smile!")
	}
}

func (c *captureScreen) onFailed(reason string) {
	c.status.SetText("The photo could not be taken")
	if c.k.current != c {
		return
	}
	if c.failure != nil {
		c.failure.Hide()
	}
	c.failure = dialog.NewInformation("Capture failed", reason+"\nPlease try again.", c.k.win)
	c.failure.Show()
}
