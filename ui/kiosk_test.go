package ui

import (
	"image"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/delivery"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/pkg/station"
)

type memSecrets map[string]string

func (m memSecrets) Get(key string) (string, error) { return m[key], nil }
func (m memSecrets) Set(key, value string) error    { m[key] = value; return nil }
func (m memSecrets) Delete(key string) error        { delete(m, key); return nil }

func newKiosk(t *testing.T, edit func(*config.Config)) (*Kiosk, memSecrets) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Camera.Type = config.CameraPattern
	cfg.Camera.ResolutionWidth = 320
	cfg.Camera.ResolutionHeight = 240
	cfg.PhotosDirectory = filepath.Join(dir, "photos")
	cfg.FramesDirectory = filepath.Join(dir, "frames")
	cfg.StartFullscreen = false
	cfg.ShutterSoundPath = ""
	cfg.CountdownSoundPath = ""
	if edit != nil {
		edit(cfg)
	}

	secrets := memSecrets{}
	st, err := station.Open(config.NewHolderWith("", cfg), secrets, station.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	a := test.NewTempApp(t)
	a.Preferences().SetBool(config.AppUpdateCheckEnabledKey, false)
	k := New(a, st)
	t.Cleanup(k.Close)
	return k, secrets
}

func TestKioskStartsOnHome(t *testing.T) {
	k, _ := newKiosk(t, nil)
	assert.Same(t, k.home, k.current)
	assert.False(t, k.win.FullScreen())
}

func TestFullscreenKeys(t *testing.T) {
	k, _ := newKiosk(t, nil)

	k.handleKey(&fyne.KeyEvent{Name: fyne.KeyF11})
	assert.True(t, k.win.FullScreen())
	k.handleKey(&fyne.KeyEvent{Name: fyne.KeyF11})
	assert.False(t, k.win.FullScreen())

	k.handleKey(&fyne.KeyEvent{Name: fyne.KeyF11})
	k.handleKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.False(t, k.win.FullScreen())
}

func TestHomeOffersNoFrame(t *testing.T) {
	k, _ := newKiosk(t, nil)
	bundled := len(k.st.Assets.BundledFrames())

	assert.Len(t, k.home.tiles, bundled+1)
	assert.Contains(t, k.home.tiles, "")
	assert.True(t, k.home.tiles[""].Selected())

	require.NoError(t, k.st.Config.Update(func(c *config.Config) { c.ShowNoFrameOption = false }))
	k.dispatch(event.ConfigReloaded{})
	assert.Len(t, k.home.tiles, bundled)
	assert.NotContains(t, k.home.tiles, "")
}

func TestChoosingFramePersists(t *testing.T) {
	k, _ := newKiosk(t, nil)
	frames, err := k.st.FrameChoices()
	require.NoError(t, err)
	require.NotEmpty(t, frames)

	test.Tap(k.home.tiles[frames[0]])
	assert.Equal(t, frames[0], k.st.Session.Frame())
	assert.Equal(t, frames[0], k.st.Config.Get().LastSelectedFrame)
	assert.True(t, k.home.tiles[frames[0]].Selected())
	assert.False(t, k.home.tiles[""].Selected())

	test.Tap(k.home.tiles[""])
	assert.Equal(t, "", k.st.Session.Frame())
}

func TestHomeTextsFollowConfig(t *testing.T) {
	k, _ := newKiosk(t, func(c *config.Config) { c.HomeTitle = "Welcome" })
	assert.Equal(t, "Welcome", k.home.title.Text)

	require.NoError(t, k.st.Config.Update(func(c *config.Config) { c.HomeTitle = "Smile" }))
	k.dispatch(event.ConfigReloaded{})
	assert.Equal(t, "Smile", k.home.title.Text)
}

func TestPhotoCapturedOpensReview(t *testing.T) {
	k, _ := newKiosk(t, nil)
	k.show(k.capture)

	p := photo.New(image.NewNRGBA(image.Rect(0, 0, 40, 30)), "")
	k.dispatch(event.PhotoCaptured{Photo: p, Path: "/tmp/photo_1.jpg", Width: 40, Height: 30})

	assert.Same(t, k.review, k.current)
	assert.Equal(t, "/tmp/photo_1.jpg", k.review.path)
	assert.Equal(t, p.Image, k.review.view.Image)
}

func TestCaptureButtonWaitsForCamera(t *testing.T) {
	k, _ := newKiosk(t, nil)
	c := k.capture

	c.setReady(false)
	assert.True(t, c.shoot.Disabled())

	c.setReady(true)
	assert.False(t, c.shoot.Disabled())

	c.onState(event.StateChanged{Phase: "counting_down", Remaining: 3})
	assert.True(t, c.shoot.Disabled(), "no second trigger during the countdown")
	assert.Equal(t, "Get ready!", c.status.Text)

	c.onState(event.StateChanged{Phase: "idle"})
	assert.False(t, c.shoot.Disabled())
}

func TestCaptureFailureReported(t *testing.T) {
	k, _ := newKiosk(t, nil)
	k.dispatch(event.CaptureFailed{Reason: "camera returned no frame"})
	assert.Equal(t, "The photo could not be taken", k.capture.status.Text)
	assert.Same(t, k.home, k.current)
}

func TestDeliveryResultsShownForCurrentPhoto(t *testing.T) {
	k, _ := newKiosk(t, nil)
	r := k.review
	r.load("/photos/a.jpg", photo.New(image.NewNRGBA(image.Rect(0, 0, 4, 4)), ""))

	r.email.Disable()
	k.dispatch(event.DeliveryFinished{Path: "/photos/a.jpg", Channel: delivery.ChannelEmail, Target: "guest@example.com", OK: true})
	assert.Contains(t, r.status.Text, "Sent to guest@example.com")
	assert.False(t, r.email.Disabled())

	k.dispatch(event.DeliveryFinished{Path: "/photos/a.jpg", Channel: delivery.ChannelPrinter, Message: "printer: no printer"})
	assert.Contains(t, r.status.Text, "Print failed: printer: no printer")
	assert.Contains(t, r.status.Text, "Sent to guest@example.com")

	k.dispatch(event.DeliveryFinished{Path: "/photos/other.jpg", Channel: delivery.ChannelCloud, OK: true})
	assert.NotContains(t, r.status.Text, "OneDrive")
}

func TestInvalidRecipientRejected(t *testing.T) {
	k, _ := newKiosk(t, func(c *config.Config) { c.Email.Enabled = true })
	r := k.review
	r.load("/photos/a.jpg", photo.New(image.NewNRGBA(image.Rect(0, 0, 4, 4)), ""))
	r.recipient.SetText("not an address")
	r.sendEmail()
	assert.Equal(t, "Please enter a valid email address", r.status.Text)
	assert.False(t, r.email.Disabled())
}

func TestReviewChannelsFollowConfig(t *testing.T) {
	k, _ := newKiosk(t, func(c *config.Config) {
		c.Printer.Enabled = true
		c.Email.Enabled = false
		c.Cloud.Enabled = false
	})
	k.show(k.review)
	assert.False(t, k.review.print.Disabled())
	assert.True(t, k.review.email.Disabled())
	assert.True(t, k.review.upload.Disabled())
}

func TestAdminPIN(t *testing.T) {
	k, _ := newKiosk(t, nil)
	k.prefs.SetAdminPIN("1234")

	assert.False(t, k.unlockAdmin("0000"))
	assert.Same(t, k.home, k.current)

	assert.True(t, k.unlockAdmin("1234"))
	assert.Same(t, k.admin, k.current)
}

func TestAdminApplySavesConfigAndPassword(t *testing.T) {
	k, secrets := newKiosk(t, nil)
	k.show(k.admin)
	a := k.admin

	a.draft.HomeTitle = "Hello"
	pw := "s3cret"
	a.password = &pw
	require.NoError(t, a.apply())

	assert.Equal(t, "Hello", k.st.Config.Get().HomeTitle)
	assert.Equal(t, "s3cret", secrets[config.SMTPPasswordKey])
	assert.Empty(t, k.st.Config.Get().Email.SenderPassword)
	assert.Nil(t, a.password)
}

func TestAdminCloseWithoutChanges(t *testing.T) {
	k, _ := newKiosk(t, nil)
	k.show(k.admin)
	k.admin.close()
	assert.Same(t, k.home, k.current)
}
