package config

import "fyne.io/fyne/v2"

// AppConfig holds kiosk preferences that stay on the machine and are not part of the shared booth JSON.
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// AppThemeKey is the key for the app theme preference
const AppThemeKey = "app_theme"

// GetTheme returns the current application theme
func (c *AppConfig) GetTheme() string {
	return c.prefs.StringWithFallback(AppThemeKey, "Light")
}

// SetTheme sets the application theme
func (c *AppConfig) SetTheme(theme string) {
	c.prefs.SetString(AppThemeKey, theme)
}

// AdminPINKey is the key for the PIN guarding the admin screen
const AdminPINKey = "admin_pin"

// GetAdminPIN returns the admin PIN. Empty means the admin screen is unlocked.
func (c *AppConfig) GetAdminPIN() string {
	return c.prefs.StringWithFallback(AdminPINKey, "")
}

// SetAdminPIN sets the admin PIN
func (c *AppConfig) SetAdminPIN(pin string) {
	c.prefs.SetString(AdminPINKey, pin)
}

// CheckAdminPIN reports whether pin unlocks the admin screen.
func (c *AppConfig) CheckAdminPIN(pin string) bool {
	want := c.GetAdminPIN()
	return want == "" || want == pin
}

// AppUpdateCheckEnabledKey is the key for the app update check enabled preference
const AppUpdateCheckEnabledKey = "app_update_check_enabled"

// GetUpdateCheckEnabled returns whether the application should check for updates
func (c *AppConfig) GetUpdateCheckEnabled() bool {
	return c.prefs.BoolWithFallback(AppUpdateCheckEnabledKey, true)
}

// SetUpdateCheckEnabled sets whether the application should check for updates
func (c *AppConfig) SetUpdateCheckEnabled(enabled bool) {
	c.prefs.SetBool(AppUpdateCheckEnabledKey, enabled)
}

// GalleryColumnsKey is the key for the number of thumbnail columns in the gallery
const GalleryColumnsKey = "gallery_columns"

// GetGalleryColumns returns the number of gallery columns
func (c *AppConfig) GetGalleryColumns() int {
	n := c.prefs.IntWithFallback(GalleryColumnsKey, 4)
	if n < 1 {
		return 1
	}
	return n
}

// SetGalleryColumns sets the number of gallery columns
func (c *AppConfig) SetGalleryColumns(n int) {
	c.prefs.SetInt(GalleryColumnsKey, n)
}
