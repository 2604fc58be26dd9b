// Package ui is the full screen kiosk: frame picker, live capture, review and delivery,
// gallery and the PIN protected admin screen.
package ui

import (
	"context"
	"image/color"
	"net/http"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/station"
	"github.com/dixieflatline76/Cheese/pkg/sysinfo"
	"github.com/dixieflatline76/Cheese/util"
	"github.com/dixieflatline76/Cheese/util/log"
)

// updateCheckTimeout bounds the startup release check.
const updateCheckTimeout = 15 * time.Second

// updateDialogPrefix is the copy for the new update available dialog.
const updateDialogPrefix = "Update to "

type screen interface {
	content() fyne.CanvasObject
	enter()
	leave()
}

// Kiosk is the photobooth window.
type Kiosk struct {
	app   fyne.App
	win   fyne.Window
	st    *station.Station
	prefs *config.AppConfig

	ctx    context.Context
	cancel context.CancelFunc

	current screen
	home    *homeScreen
	capture *captureScreen
	review  *reviewScreen
	gallery *galleryScreen
	admin   *adminScreen
}

// New builds the kiosk window for st. Nothing is shown until Run.
func New(a fyne.App, st *station.Station) *Kiosk {
	ctx, cancel := context.WithCancel(context.Background())
	k := &Kiosk{
		app:    a,
		st:     st,
		prefs:  config.NewAppConfig(a.Preferences()),
		ctx:    ctx,
		cancel: cancel,
	}
	if icon, err := st.Assets.GetIcon("app.png"); err == nil {
		a.SetIcon(icon)
	}
	k.applyTheme()

	k.win = a.NewWindow(config.AppName)
	k.win.Resize(windowSize())
	k.win.Canvas().SetOnTypedKey(k.handleKey)
	k.win.SetOnClosed(k.cancel)

	k.home = newHomeScreen(k)
	k.capture = newCaptureScreen(k)
	k.review = newReviewScreen(k)
	k.gallery = newGalleryScreen(k)
	k.admin = newAdminScreen(k)

	k.win.SetFullScreen(st.Config.Get().StartFullscreen)
	k.show(k.home)
	return k
}

// windowSize is the size of the window when it is not full screen: most of the display,
// or 1280x800 when the display cannot be queried.
func windowSize() fyne.Size {
	w, h, err := sysinfo.ScreenSize()
	if err != nil {
		log.Debugf("Screen size unavailable: %v", err)
		return fyne.NewSize(1280, 800)
	}
	return fyne.NewSize(float32(w)*0.9, float32(h)*0.9)
}

// Window returns the kiosk window.
func (k *Kiosk) Window() fyne.Window {
	return k.win
}

// Run shows the window and blocks until it is closed.
func (k *Kiosk) Run() {
	go k.listen(k.ctx)
	if k.prefs.GetUpdateCheckEnabled() {
		go k.checkForUpdates(k.ctx)
	}
	k.win.ShowAndRun()
	k.Close()
}

// Close stops background work started by the kiosk.
func (k *Kiosk) Close() {
	if k.current != nil {
		k.current.leave()
		k.current = nil
	}
	k.cancel()
}

func (k *Kiosk) show(s screen) {
	if k.current == s {
		return
	}
	if k.current != nil {
		k.current.leave()
	}
	k.current = s
	k.win.SetContent(s.content())
	s.enter()
}

func (k *Kiosk) handleKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyF11:
		k.win.SetFullScreen(!k.win.FullScreen())
	case fyne.KeyEscape:
		if k.win.FullScreen() {
			k.win.SetFullScreen(false)
		}
	case fyne.KeySpace, fyne.KeyReturn:
		if k.current == k.capture {
			k.capture.trigger()
		}
	}
}

// listen forwards bus events to the UI goroutine until ctx is done.
func (k *Kiosk) listen(ctx context.Context) {
	events, unsubscribe := k.st.Bus.Subscribe(64)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			fyne.Do(func() { k.dispatch(e) })
		}
	}
}

// dispatch must run on the UI goroutine.
func (k *Kiosk) dispatch(e event.Event) {
	switch e := e.(type) {
	case event.StateChanged:
		k.capture.onState(e)
	case event.CountdownTick:
		k.capture.onTick(e.Remaining)
	case event.PhotoCaptured:
		k.review.load(e.Path, e.Photo)
		if k.current == k.capture {
			k.show(k.review)
		}
	case event.CaptureFailed:
		k.capture.onFailed(e.Reason)
	case event.DeliveryFinished:
		k.review.onDelivered(e)
	case event.FramesChanged:
		k.home.reloadFrames()
	case event.ConfigReloaded:
		k.home.applyConfig()
		k.capture.applyConfig()
	}
}

func (k *Kiosk) checkForUpdates(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	res, err := util.CheckForUpdates(ctx, &http.Client{Timeout: updateCheckTimeout})
	if err != nil {
		log.Printf("Update check: %v", err)
		return
	}
	if !res.UpdateAvailable {
		return
	}
	log.Printf("Update available: %s (running %s)", res.LatestVersion, res.CurrentVersion)
	fyne.Do(func() {
		link, _ := url.Parse(res.ReleaseURL)
		body := container.NewVBox(
			widget.NewLabel(config.AppName+" "+res.LatestVersion+" is available."),
			widget.NewHyperlink(updateDialogPrefix+res.LatestVersion, link),
		)
		dialog.ShowCustom("Update available", "Later", body, k.win)
	})
}

func (k *Kiosk) applyTheme() {
	variant := theme.VariantLight
	if k.prefs.GetTheme() == "Dark" {
		variant = theme.VariantDark
	}
	k.app.Settings().SetTheme(&kioskTheme{Theme: theme.DefaultTheme(), variant: variant})
}

// kioskTheme pins the default theme to one variant and enlarges text for viewing at a distance.
type kioskTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t *kioskTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

func (t *kioskTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return t.Theme.Size(name) * 1.3
	}
	return t.Theme.Size(name)
}
