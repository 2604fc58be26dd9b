package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/delivery"
	"github.com/dixieflatline76/Cheese/pkg/ui/setting"
	"github.com/dixieflatline76/Cheese/util/log"
)

const (
	// adminHolder identifies the admin camera test to the camera owner.
	adminHolder = "admin"
	// detectTimeout bounds the camera and printer scans behind the admin buttons.
	detectTimeout = 30 * time.Second
	// defaultPrinterOption stands for an empty printer name.
	defaultPrinterOption = "(system default)"
)

// adminScreen edits the booth configuration. Edits go into a draft and are swapped into the
// running configuration on Apply.
type adminScreen struct {
	k *Kiosk

	draft    *config.Config
	password *string
	sm       *SettingsManager
	devices  map[string]camera.Device

	testView   *canvas.Image
	testCancel context.CancelFunc

	root *fyne.Container
}

func newAdminScreen(k *Kiosk) *adminScreen {
	return &adminScreen{k: k, root: container.NewStack(), devices: map[string]camera.Device{}}
}

func (a *adminScreen) content() fyne.CanvasObject { return a.root }

func (a *adminScreen) enter() {
	a.draft = a.k.st.Config.Get().Clone()
	a.password = nil
	a.sm = NewSettingsManager(a.k.win, a.apply)
	a.root.Objects = []fyne.CanvasObject{a.build()}
	a.root.Refresh()
}

func (a *adminScreen) leave() {
	a.stopCameraTest()
}

// openAdmin asks for the PIN when one is set.
func (k *Kiosk) openAdmin() {
	if k.prefs.GetAdminPIN() == "" {
		k.show(k.admin)
		return
	}
	pin := widget.NewPasswordEntry()
	items := []*widget.FormItem{widget.NewFormItem("PIN", pin)}
	dialog.ShowForm("Admin", "Unlock", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if !k.unlockAdmin(pin.Text) {
			dialog.ShowInformation("Admin", "Wrong PIN", k.win)
		}
	}, k.win)
}

func (k *Kiosk) unlockAdmin(pin string) bool {
	if !k.prefs.CheckAdminPIN(pin) {
		log.Println("Admin unlock refused")
		return false
	}
	k.show(k.admin)
	return true
}

func (a *adminScreen) build() fyne.CanvasObject {
	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon("Kiosk", theme.ComputerIcon(), a.scroll(a.kioskSection())),
		container.NewTabItemWithIcon("Texts", theme.DocumentIcon(), a.scroll(a.textSection())),
		container.NewTabItemWithIcon("Camera", theme.MediaPhotoIcon(), a.scroll(a.cameraSection())),
		container.NewTabItemWithIcon("Email", theme.MailComposeIcon(), a.scroll(a.emailSection())),
		container.NewTabItemWithIcon("Printer", theme.DocumentPrintIcon(), a.scroll(a.printerSection())),
		container.NewTabItemWithIcon("OneDrive", theme.UploadIcon(), a.scroll(a.cloudSection())),
		container.NewTabItemWithIcon("Photos", theme.FolderIcon(), a.scroll(a.photosSection())),
	)
	tabs.SetTabLocation(container.TabLocationLeading)

	back := widget.NewButtonWithIcon("Close", theme.CancelIcon(), a.close)
	footer := container.NewHBox(back, layout.NewSpacer(), a.sm.GetApplySettingsButton())
	return container.NewBorder(nil, container.NewPadded(footer), nil, nil, tabs)
}

func (a *adminScreen) scroll(c *fyne.Container) fyne.CanvasObject {
	return container.NewVScroll(container.NewPadded(c))
}

func (a *adminScreen) close() {
	if a.sm.Pending() == 0 {
		a.k.show(a.k.home)
		return
	}
	dialog.ShowConfirm("Discard changes?", "Some settings were changed but not applied.", func(ok bool) {
		if ok {
			a.k.show(a.k.home)
		}
	}, a.k.win)
}

// apply stores the draft. Misconfigured channels are reported but still saved; they fail
// at send time with a diagnostic.
func (a *adminScreen) apply() error {
	if a.password != nil {
		if err := a.k.st.Secrets.Set(config.SMTPPasswordKey, *a.password); err != nil {
			return fmt.Errorf("saving SMTP password: %w", err)
		}
		a.draft.Email.SenderPassword = ""
		a.password = nil
	}
	if err := a.k.st.Config.Swap(a.draft.Clone()); err != nil {
		return err
	}
	log.Printf("Configuration saved to %s", a.k.st.Config.Path())
	if err := a.draft.Validate(); err != nil {
		dialog.ShowInformation("Saved with warnings", err.Error(), a.k.win)
	}
	return nil
}

func label(text string) fyne.CanvasObject {
	return CreateSettingTitleLabel(text)
}

func (a *adminScreen) text(header *fyne.Container, name, title, initial string, apply func(string)) *widget.Entry {
	return a.sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         name,
		InitialValue: initial,
		Label:        label(title),
		ApplyFunc:    apply,
	}, header)
}

func (a *adminScreen) number(header *fyne.Container, name, title string, initial, lo, hi int, apply func(int)) {
	a.sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         name,
		InitialValue: strconv.Itoa(initial),
		Label:        label(title),
		Validator:    setting.IntRange(lo, hi),
		ApplyFunc: func(s string) {
			n, _ := strconv.Atoi(s)
			apply(n)
		},
	}, header)
}

func (a *adminScreen) check(header *fyne.Container, name, title string, initial bool, apply func(bool)) *widget.Check {
	return a.sm.CreateBoolSetting(&setting.BoolConfig{
		Name:         name,
		InitialValue: initial,
		Label:        label(title),
		ApplyFunc:    apply,
	}, header)
}

func (a *adminScreen) choice(header *fyne.Container, name, title string, options []string, initial string, apply func(string)) *widget.Select {
	return a.sm.CreateSelectSetting(&setting.SelectConfig{
		Name:         name,
		Options:      options,
		InitialValue: initial,
		Label:        label(title),
		ApplyFunc:    apply,
	}, header)
}

func (a *adminScreen) kioskSection() *fyne.Container {
	d := a.draft
	prefs := a.k.prefs
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("Kiosk"))

	a.check(c, "start_fullscreen", "Start full screen", d.StartFullscreen, func(b bool) { d.StartFullscreen = b })
	a.check(c, "show_no_frame_option", "Offer \"no frame\"", d.ShowNoFrameOption, func(b bool) { d.ShowNoFrameOption = b })
	a.choice(c, "theme", "Theme", []string{"Light", "Dark"}, prefs.GetTheme(), func(s string) {
		prefs.SetTheme(s)
		a.k.applyTheme()
	})
	a.number(c, "gallery_columns", "Gallery columns", prefs.GetGalleryColumns(), 1, 8, prefs.SetGalleryColumns)
	a.sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         "admin_pin",
		InitialValue: prefs.GetAdminPIN(),
		PlaceHolder:  "leave empty for no PIN",
		Label:        label("Admin PIN"),
		HelpContent:  a.sm.CreateSettingDescriptionLabel("Asked before this screen opens."),
		Password:     true,
		ApplyFunc:    prefs.SetAdminPIN,
	}, c)
	a.check(c, "update_check", "Check for updates", prefs.GetUpdateCheckEnabled(), prefs.SetUpdateCheckEnabled)

	c.Add(widget.NewSeparator())
	c.Add(a.sm.CreateSectionTitleLabel("Remote control"))
	a.check(c, "hotkey", "Capture hotkey", d.Hotkey.Enabled, func(b bool) { d.Hotkey.Enabled = b })
	c.Add(a.sm.CreateSettingDescriptionLabel("Ctrl+Alt+Space starts a countdown from anywhere. Takes effect after a restart."))
	a.check(c, "api", "Local API", d.API.Enabled, func(b bool) { d.API.Enabled = b })
	a.text(c, "api_address", "API address", d.API.Address, func(s string) { d.API.Address = s })

	c.Add(widget.NewSeparator())
	c.Add(widget.NewLabel(fmt.Sprintf("%s %s", config.AppName, config.AppVersion)))
	return c
}

func (a *adminScreen) textSection() *fyne.Container {
	d := a.draft
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("Texts"))
	a.text(c, "home_title", "Home title", d.HomeTitle, func(s string) { d.HomeTitle = s })
	a.text(c, "home_subtitle", "Home subtitle", d.HomeSubtitle, func(s string) { d.HomeSubtitle = s })
	a.text(c, "home_start_button_text", "Start button", d.HomeStartButtonText, func(s string) { d.HomeStartButtonText = s })
	a.text(c, "preview_title", "Photo title", d.PreviewTitle, func(s string) { d.PreviewTitle = s })

	c.Add(widget.NewSeparator())
	c.Add(a.sm.CreateSectionTitleLabel("Button images"))
	c.Add(a.sm.CreateSettingDescriptionLabel("PNG files replacing the stock buttons. Leave empty for text buttons."))
	b := &d.Buttons
	a.choice(c, "capture_mode", "Capture button", []string{"image", "text"}, b.CaptureMode, func(s string) { b.CaptureMode = s })
	a.text(c, "capture_normal", "Capture", b.CaptureNormal, func(s string) { b.CaptureNormal = s })
	a.text(c, "capture_pressed", "Capture (pressed)", b.CapturePressed, func(s string) { b.CapturePressed = s })
	a.text(c, "choose_frame_normal", "Start", b.ChooseFrameNormal, func(s string) { b.ChooseFrameNormal = s })
	a.text(c, "choose_frame_pressed", "Start (pressed)", b.ChooseFramePressed, func(s string) { b.ChooseFramePressed = s })
	a.text(c, "gallery_normal", "Gallery", b.GalleryNormal, func(s string) { b.GalleryNormal = s })
	a.text(c, "gallery_pressed", "Gallery (pressed)", b.GalleryPressed, func(s string) { b.GalleryPressed = s })

	c.Add(widget.NewSeparator())
	c.Add(a.sm.CreateSectionTitleLabel("Sounds"))
	a.text(c, "countdown_sound_path", "Countdown", d.CountdownSoundPath, func(s string) { d.CountdownSoundPath = s })
	a.text(c, "shutter_sound_path", "Shutter", d.ShutterSoundPath, func(s string) { d.ShutterSoundPath = s })
	return c
}

func (a *adminScreen) cameraSection() *fyne.Container {
	d := a.draft
	cam := &d.Camera
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("Camera"))

	a.choice(c, "camera_type", "Type", []string{config.CameraWebcam, config.CameraDSLR, config.CameraPattern}, cam.Type,
		func(s string) { cam.Type = s })

	current := deviceLabel(camera.Device{Index: cam.DeviceID, Name: cam.DeviceName})
	a.devices[current] = camera.Device{Index: cam.DeviceID, Name: cam.DeviceName}
	devSelect := a.choice(c, "camera_device", "Device", []string{current}, current, func(s string) {
		if dev, ok := a.devices[s]; ok {
			cam.DeviceID = dev.Index
			cam.DeviceName = dev.Name
		}
	})
	status := CreateSettingDescriptionLabel("")
	var detect *widget.Button
	detect = widget.NewButtonWithIcon("Detect cameras", theme.SearchIcon(), func() {
		detect.Disable()
		status.SetText("Looking for cameras...")
		go a.detectCameras(func(labels []string, err error) {
			detect.Enable()
			if err != nil {
				status.SetText(err.Error())
			} else {
				status.SetText(fmt.Sprintf("Found %d camera(s)", len(labels)))
			}
			if len(labels) > 0 {
				devSelect.SetOptions(labels)
			}
		})
	})
	c.Add(NewSplitRow(detect, status, SplitProportion.OneThird))

	a.number(c, "resolution_width", "Width", cam.ResolutionWidth, 160, 8192, func(n int) { cam.ResolutionWidth = n })
	a.number(c, "resolution_height", "Height", cam.ResolutionHeight, 120, 8192, func(n int) { cam.ResolutionHeight = n })
	a.number(c, "fps", "Frames per second", cam.FPS, 1, 120, func(n int) { cam.FPS = n })
	a.text(c, "ffmpeg_path", "ffmpeg", cam.FFmpegPath, func(s string) { cam.FFmpegPath = s })
	a.text(c, "gphoto2_path", "gphoto2", cam.GPhoto2Path, func(s string) { cam.GPhoto2Path = s })

	a.testView = canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 16, 9)))
	a.testView.FillMode = canvas.ImageFillContain
	a.testView.SetMinSize(fyne.NewSize(480, 270))
	var test *widget.Button
	test = widget.NewButtonWithIcon("Test camera", theme.MediaPlayIcon(), func() {
		if a.testCancel != nil {
			a.stopCameraTest()
			test.SetText("Test camera")
			return
		}
		test.SetText("Stop test")
		a.startCameraTest(func(err error) {
			test.SetText("Test camera")
			dialog.ShowError(err, a.k.win)
		})
	})
	c.Add(widget.NewSeparator())
	c.Add(a.sm.CreateSettingDescriptionLabel("The test uses the saved settings. Apply first to try new ones."))
	c.Add(container.NewHBox(test))
	c.Add(a.testView)

	c.Add(widget.NewSeparator())
	c.Add(a.sm.CreateSectionTitleLabel("Composition"))
	comp := &d.Compositor
	a.choice(c, "crop_mode", "Crop", []string{config.CropCenter, config.CropSmart, config.CropFace}, comp.CropMode,
		func(s string) { comp.CropMode = s })
	a.choice(c, "effect", "Effect", []string{config.EffectNone, config.EffectGrayscale, config.EffectSepia}, comp.Effect,
		func(s string) { comp.Effect = s })
	a.text(c, "face_cascade", "Face cascade", comp.FaceCascade, func(s string) { comp.FaceCascade = s })
	a.check(c, "live_preview", "Frame in live preview", comp.LivePreview, func(b bool) { comp.LivePreview = b })
	return c
}

func deviceLabel(d camera.Device) string {
	if d.Port != "" {
		return fmt.Sprintf("%d: %s (%s)", d.Index, d.Name, d.Port)
	}
	return fmt.Sprintf("%d: %s", d.Index, d.Name)
}

// detectCameras probes webcams and gphoto2 for the draft camera type and reports on the UI goroutine.
func (a *adminScreen) detectCameras(done func([]string, error)) {
	ctx, cancel := context.WithTimeout(a.k.ctx, detectTimeout)
	defer cancel()

	cam := a.draft.Camera
	var (
		devices []camera.Device
		err     error
	)
	if cam.Type == config.CameraDSLR {
		devices, err = camera.DetectDSLRs(ctx, cam.GPhoto2Path)
	} else {
		devices = camera.ListDevices(ctx, camera.FFmpegProber(cam.FFmpegPath), camera.DefaultProbeCount)
	}

	labels := make([]string, 0, len(devices))
	for _, dev := range devices {
		labels = append(labels, deviceLabel(dev))
	}
	fyne.Do(func() {
		for i, l := range labels {
			a.devices[l] = devices[i]
		}
		done(labels, err)
	})
}

func (a *adminScreen) startCameraTest(failed func(error)) {
	ctx, cancel := context.WithCancel(a.k.ctx)
	a.testCancel = cancel
	owner := a.k.st.Camera

	go func() {
		src, err := owner.Acquire(ctx, adminHolder, cancel)
		if err != nil {
			cancel()
			fyne.Do(func() {
				a.testCancel = nil
				failed(err)
			})
			return
		}
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if img, ok := src.GetFrame(); ok {
					fyne.Do(func() {
						a.testView.Image = img
						a.testView.Refresh()
					})
				}
			}
		}
	}()
}

func (a *adminScreen) stopCameraTest() {
	if a.testCancel == nil {
		return
	}
	a.testCancel()
	a.testCancel = nil
	a.k.st.Camera.Release(adminHolder)
}

func (a *adminScreen) emailSection() *fyne.Container {
	e := &a.draft.Email
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("Email"))
	a.check(c, "email_enabled", "Enabled", e.Enabled, func(b bool) { e.Enabled = b })
	a.text(c, "smtp_server", "SMTP server", e.SMTPServer, func(s string) { e.SMTPServer = s })
	a.number(c, "smtp_port", "SMTP port", e.SMTPPort, 1, 65535, func(n int) { e.SMTPPort = n })
	a.check(c, "use_tls", "STARTTLS", e.UseTLS, func(b bool) { e.UseTLS = b })
	a.text(c, "sender_email", "Sender", e.SenderEmail, func(s string) { e.SenderEmail = s })
	a.sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:        "sender_password",
		PlaceHolder: "unchanged",
		Label:       label("Password"),
		HelpContent: a.sm.CreateSettingDescriptionLabel("Stored in the system keyring, never in the config file."),
		Password:    true,
		ApplyFunc:   func(s string) { a.password = &s },
	}, c)
	a.text(c, "subject", "Subject", e.Subject, func(s string) { e.Subject = s })
	a.sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         "message",
		InitialValue: e.Message,
		Label:        label("Message"),
		MultiLine:    true,
		ApplyFunc:    func(s string) { e.Message = s },
	}, c)
	return c
}

func (a *adminScreen) printerSection() *fyne.Container {
	p := &a.draft.Printer
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("Printer"))
	a.check(c, "printer_enabled", "Enabled", p.Enabled, func(b bool) { p.Enabled = b })

	current := p.PrinterName
	if current == "" {
		current = defaultPrinterOption
	}
	printers := a.choice(c, "printer_name", "Printer", []string{current}, current, func(s string) {
		if s == defaultPrinterOption {
			s = ""
		}
		p.PrinterName = s
	})
	status := CreateSettingDescriptionLabel("")
	var find *widget.Button
	find = widget.NewButtonWithIcon("Find printers", theme.SearchIcon(), func() {
		find.Disable()
		go func() {
			ctx, cancel := context.WithTimeout(a.k.ctx, detectTimeout)
			defer cancel()
			names, err := delivery.ListPrinters(ctx)
			fyne.Do(func() {
				find.Enable()
				if err != nil {
					status.SetText(err.Error())
					return
				}
				status.SetText(fmt.Sprintf("Found %d printer(s)", len(names)))
				printers.SetOptions(append([]string{defaultPrinterOption}, names...))
			})
		}()
	})
	c.Add(NewSplitRow(find, status, SplitProportion.OneThird))

	a.choice(c, "paper_size", "Paper", config.PaperSizeNames(), p.PaperSize, func(s string) { p.PaperSize = s })
	return c
}

func (a *adminScreen) cloudSection() *fyne.Container {
	cl := &a.draft.Cloud
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("OneDrive"))
	a.check(c, "cloud_enabled", "Enabled", cl.Enabled, func(b bool) { cl.Enabled = b })
	a.text(c, "client_id", "Application id", cl.ClientID, func(s string) { cl.ClientID = s })
	a.text(c, "tenant_id", "Tenant", cl.TenantID, func(s string) { cl.TenantID = s })
	a.text(c, "folder_path", "Folder", cl.FolderPath, func(s string) { cl.FolderPath = s })

	auth := a.k.st.CloudAuth()
	state := widget.NewLabel(signInState(auth.SignedIn()))
	var signIn *widget.Button
	signIn = widget.NewButtonWithIcon("Sign in", theme.LoginIcon(), func() {
		signIn.Disable()
		go a.cloudSignIn(func(err error) {
			signIn.Enable()
			state.SetText(signInState(a.k.st.CloudAuth().SignedIn()))
			if err != nil {
				dialog.ShowError(err, a.k.win)
			}
		})
	})
	signOut := widget.NewButtonWithIcon("Sign out", theme.LogoutIcon(), func() {
		if err := a.k.st.CloudAuth().SignOut(); err != nil {
			dialog.ShowError(err, a.k.win)
		}
		state.SetText(signInState(false))
	})
	c.Add(widget.NewSeparator())
	c.Add(a.sm.CreateSettingDescriptionLabel("Sign-in uses the saved settings. Apply first after changing them."))
	c.Add(container.NewHBox(signIn, signOut, state))
	return c
}

func signInState(signedIn bool) string {
	if signedIn {
		return "Signed in"
	}
	return "Not signed in"
}

// cloudSignIn runs the device code flow, showing the code while the operator signs in elsewhere.
func (a *adminScreen) cloudSignIn(done func(error)) {
	var codeDialog dialog.Dialog
	prompt := func(verificationURI, userCode string) {
		fyne.Do(func() {
			link, _ := url.Parse(verificationURI)
			code := bigText(userCode, 36)
			body := container.NewVBox(
				widget.NewLabel("Open this page on any device and enter the code:"),
				widget.NewHyperlink(verificationURI, link),
				code,
			)
			codeDialog = dialog.NewCustom("Sign in to OneDrive", "Hide", body, a.k.win)
			codeDialog.Show()
		})
	}

	ctx, cancel := context.WithTimeout(a.k.ctx, 15*time.Minute)
	defer cancel()
	err := a.k.st.CloudAuth().Login(ctx, prompt)
	fyne.Do(func() {
		if codeDialog != nil {
			codeDialog.Hide()
		}
		done(err)
	})
}

func (a *adminScreen) photosSection() *fyne.Container {
	d := a.draft
	c := container.NewVBox(a.sm.CreateSectionTitleLabel("Photos and frames"))
	a.check(c, "save_to_disk", "Keep photos", d.SaveToDisk, func(b bool) { d.SaveToDisk = b })
	c.Add(a.sm.CreateSettingDescriptionLabel("When off, photos only live in a temporary folder long enough to be sent."))
	a.text(c, "photos_directory", "Photos folder", d.PhotosDirectory, func(s string) { d.PhotosDirectory = s })
	a.text(c, "frames_directory", "Frames folder", d.FramesDirectory, func(s string) { d.FramesDirectory = s })

	c.Add(widget.NewSeparator())
	a.sm.CreateButtonWithConfirmationSetting(&setting.ButtonWithConfirmationConfig{
		Name:        "reindex",
		Label:       label("Gallery index"),
		HelpContent: a.sm.CreateSettingDescriptionLabel("Rebuild the index after copying photos in or out by hand."),
		ButtonText:  "Rebuild",
		OnPressed:   a.reindex,
	}, c)
	a.sm.CreateButtonWithConfirmationSetting(&setting.ButtonWithConfirmationConfig{
		Name:        "export",
		Label:       label("Export"),
		HelpContent: a.sm.CreateSettingDescriptionLabel("Copy every photo to a folder, for example a USB stick."),
		ButtonText:  "Export...",
		OnPressed:   a.export,
	}, c)
	return c
}

func (a *adminScreen) reindex() {
	go func() {
		added, removed, err := a.k.st.Gallery.Reindex(a.k.ctx)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, a.k.win)
				return
			}
			dialog.ShowInformation("Gallery", fmt.Sprintf("%d added, %d removed", added, removed), a.k.win)
		})
	}()
}

func (a *adminScreen) export() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		dest := dir.Path()
		go func() {
			n, err := a.k.st.Gallery.Export(a.k.ctx, dest)
			fyne.Do(func() {
				if err != nil && !errors.Is(err, context.Canceled) {
					dialog.ShowError(err, a.k.win)
					return
				}
				dialog.ShowInformation("Export", fmt.Sprintf("Copied %d photo(s) to %s", n, dest), a.k.win)
			})
		}()
	}, a.k.win)
}
