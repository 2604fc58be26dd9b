package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/Cheese/pkg/ui/setting"
)

// SettingsManager collects edits from the admin form and applies them together.
// Each changed widget registers a callback that writes its value into the draft;
// Apply runs the callbacks and then hands the draft to onApply.
type SettingsManager struct {
	chgPrefsCallbacks   map[string]func()
	checkAndEnableApply func()
	applyButton         *widget.Button
	prefsWindow         fyne.Window
	onApply             func() error
}

// NewSettingsManager creates a new SettingsManager. onApply runs after the pending callbacks.
func NewSettingsManager(window fyne.Window, onApply func() error) *SettingsManager {
	sm := &SettingsManager{
		chgPrefsCallbacks: make(map[string]func()),
		prefsWindow:       window,
		onApply:           onApply,
	}

	sm.applyButton = createApplyButton(sm)
	sm.checkAndEnableApply = func() {
		if len(sm.chgPrefsCallbacks) > 0 {
			sm.applyButton.Enable()
		} else {
			sm.applyButton.Disable()
		}
		sm.applyButton.Refresh()
	}

	return sm
}

var _ setting.SettingsManager = (*SettingsManager)(nil)

// createApplyButton creates the Apply Changes button.
func createApplyButton(sm *SettingsManager) *widget.Button {
	var applyButton *widget.Button
	applyButton = widget.NewButton("Apply Changes", func() {
		originalText := applyButton.Text
		applyButton.Disable()
		applyButton.SetText("Applying changes, please wait...")
		defer applyButton.SetText(originalText)

		for _, callback := range sm.chgPrefsCallbacks {
			callback()
		}
		sm.chgPrefsCallbacks = make(map[string]func())

		if sm.onApply != nil {
			if err := sm.onApply(); err != nil && sm.prefsWindow != nil {
				dialog.ShowError(err, sm.prefsWindow)
			}
		}
	})
	applyButton.Importance = widget.HighImportance
	applyButton.Disable()
	return applyButton
}

// GetApplySettingsButton returns the Apply Changes button to be placed in the form.
func (sm *SettingsManager) GetApplySettingsButton() *widget.Button {
	return sm.applyButton
}

// CreateSelectSetting creates a select widget.
func (sm *SettingsManager) CreateSelectSetting(cfg *setting.SelectConfig, header *fyne.Container) *widget.Select {
	selectWidget := widget.NewSelect(cfg.Options, nil)
	selectWidget.SetSelected(cfg.InitialValue)

	header.Add(NewSplitRow(cfg.Label, selectWidget, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}

	selectWidget.OnChanged = func(s string) {
		if s != cfg.InitialValue {
			sm.SetSettingChangedCallback(cfg.Name, func() {
				cfg.ApplyFunc(s)
				cfg.InitialValue = s
			})
		} else {
			sm.RemoveSettingChangedCallback(cfg.Name)
		}
		if cfg.OnChanged != nil {
			cfg.OnChanged(s)
		}
		sm.GetCheckAndEnableApplyFunc()()
	}
	return selectWidget
}

// CreateBoolSetting creates a boolean check setting.
func (sm *SettingsManager) CreateBoolSetting(cfg *setting.BoolConfig, header *fyne.Container) *widget.Check {
	check := widget.NewCheck("", nil)
	check.SetChecked(cfg.InitialValue)

	header.Add(NewSplitRow(cfg.Label, check, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}

	check.OnChanged = func(b bool) {
		if b != cfg.InitialValue {
			sm.SetSettingChangedCallback(cfg.Name, func() {
				cfg.ApplyFunc(b)
				cfg.InitialValue = b
			})
		} else {
			sm.RemoveSettingChangedCallback(cfg.Name)
		}
		if cfg.OnChanged != nil {
			cfg.OnChanged(b)
		}
		sm.GetCheckAndEnableApplyFunc()()
	}
	return check
}

// CreateTextEntrySetting creates a text entry setting with inline validation status.
func (sm *SettingsManager) CreateTextEntrySetting(cfg *setting.TextEntrySettingConfig, header *fyne.Container) *widget.Entry {
	var entry *widget.Entry
	switch {
	case cfg.Password:
		entry = widget.NewPasswordEntry()
	case cfg.MultiLine:
		entry = widget.NewMultiLineEntry()
		entry.Wrapping = fyne.TextWrapWord
	default:
		entry = widget.NewEntry()
	}
	entry.SetPlaceHolder(cfg.PlaceHolder)
	entry.SetText(cfg.InitialValue)
	if cfg.Validator != nil {
		entry.Validator = cfg.Validator
	}

	statusLabel := widget.NewLabel("")

	header.Add(NewSplitRow(cfg.Label, entry, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(NewSplitRowWithAlignment(cfg.HelpContent, statusLabel, SplitProportion.TwoThirds, SplitAlign.Opposed))
	} else {
		header.Add(NewSplitRow(widget.NewLabel(""), statusLabel, SplitProportion.TwoThirds))
	}

	entry.OnChanged = func(s string) {
		err := sm.checkEntry(cfg, entry, s)
		if err != nil {
			statusLabel.SetText(err.Error())
			statusLabel.Importance = widget.DangerImportance
			sm.RemoveSettingChangedCallback(cfg.Name)
		} else {
			statusLabel.SetText(fmt.Sprintf("%s OK", cfg.Name))
			statusLabel.Importance = widget.SuccessImportance
			if s != cfg.InitialValue {
				sm.SetSettingChangedCallback(cfg.Name, func() {
					if entry.Text != cfg.InitialValue {
						cfg.ApplyFunc(entry.Text)
						cfg.InitialValue = entry.Text
					}
				})
			} else {
				sm.RemoveSettingChangedCallback(cfg.Name)
			}
		}
		statusLabel.Refresh()
		sm.GetCheckAndEnableApplyFunc()()
	}
	return entry
}

func (sm *SettingsManager) checkEntry(cfg *setting.TextEntrySettingConfig, entry *widget.Entry, s string) error {
	if cfg.Validator != nil {
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	if cfg.PostValidateCheck != nil {
		return cfg.PostValidateCheck(s)
	}
	return nil
}

// CreateButtonWithConfirmationSetting creates a button setting with an optional confirmation dialog.
func (sm *SettingsManager) CreateButtonWithConfirmationSetting(cfg *setting.ButtonWithConfirmationConfig, header *fyne.Container) {
	button := widget.NewButton(cfg.ButtonText, func() {
		if cfg.ConfirmTitle != "" && cfg.ConfirmMessage != "" {
			d := dialog.NewConfirm(cfg.ConfirmTitle, cfg.ConfirmMessage, func(b bool) {
				if b {
					cfg.OnPressed()
				}
			}, sm.prefsWindow)
			d.Show()
		} else {
			cfg.OnPressed()
		}
	})

	if cfg.Label != nil {
		header.Add(NewSplitRow(cfg.Label, button, SplitProportion.OneThird))
	} else {
		header.Add(button)
	}

	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}
}

// SetSettingChangedCallback sets a callback function to be called when a setting changes.
func (sm *SettingsManager) SetSettingChangedCallback(settingName string, callback func()) {
	sm.chgPrefsCallbacks[settingName] = callback
}

// RemoveSettingChangedCallback removes a callback function associated with a specific setting.
func (sm *SettingsManager) RemoveSettingChangedCallback(settingName string) {
	delete(sm.chgPrefsCallbacks, settingName)
}

// Pending returns how many settings changed since the last Apply.
func (sm *SettingsManager) Pending() int {
	return len(sm.chgPrefsCallbacks)
}

// GetSettingsWindow returns the window associated with the SettingsManager.
func (sm *SettingsManager) GetSettingsWindow() fyne.Window {
	return sm.prefsWindow
}

// GetCheckAndEnableApplyFunc returns the check and enable apply function for the SettingsManager.
func (sm *SettingsManager) GetCheckAndEnableApplyFunc() func() {
	return sm.checkAndEnableApply
}

// CreateSectionTitleLabel creates a label for a section title
func (sm *SettingsManager) CreateSectionTitleLabel(desc string) *widget.Label {
	return CreateSectionTitleLabel(desc)
}

// CreateSettingTitleLabel creates a label for a setting title
func (sm *SettingsManager) CreateSettingTitleLabel(desc string) *widget.Label {
	return CreateSettingTitleLabel(desc)
}

// CreateSettingDescriptionLabel creates a label for a setting description
func (sm *SettingsManager) CreateSettingDescriptionLabel(desc string) fyne.CanvasObject {
	return CreateSettingDescriptionLabel(desc)
}
