package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/util"
	"github.com/dixieflatline76/Cheese/util/log"
)

// GraphURL is the Microsoft Graph API root.
const GraphURL = "https://graph.microsoft.com/v1.0"

// CloudScopes are requested during sign-in.
var CloudScopes = []string{"Files.ReadWrite", "offline_access", "User.Read"}

// UploadTimeout bounds one upload attempt.
const UploadTimeout = 2 * time.Minute

// TokenProvider hands out bearer tokens for the cloud API.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	// Invalidate drops the cached access token so the next Token call authenticates again.
	Invalidate()
}

// Cloud uploads photos to a OneDrive folder.
type Cloud struct {
	cfg    config.CloudConfig
	tokens TokenProvider
	client *http.Client
	base   string
}

// NewCloud creates the cloud channel. A nil client uses http.DefaultClient.
func NewCloud(cfg config.CloudConfig, tokens TokenProvider, client *http.Client) *Cloud {
	if client == nil {
		client = http.DefaultClient
	}
	return &Cloud{cfg: cfg, tokens: tokens, client: client, base: GraphURL}
}

// Name implements Channel.
func (c *Cloud) Name() string { return ChannelCloud }

// Enabled implements Channel.
func (c *Cloud) Enabled() bool { return c.cfg.Enabled }

// UploadURL returns the Graph content URL for a file in the configured folder.
func (c *Cloud) UploadURL(filename string) string {
	var segs []string
	for _, s := range strings.Split(c.cfg.FolderPath, "/") {
		if s != "" {
			segs = append(segs, url.PathEscape(s))
		}
	}
	segs = append(segs, url.PathEscape(filename))
	return c.base + "/me/drive/root:/" + strings.Join(segs, "/") + ":/content"
}

// Upload sends the photo at path. A 401 answer triggers exactly one re-authentication and
// one retry; anything else is reported as is.
func (c *Cloud) Upload(ctx context.Context, path string) error {
	if !c.cfg.Enabled {
		return failf(ChannelCloud, ErrDisabled, "cloud upload is disabled")
	}
	if c.cfg.ClientID == "" || c.tokens == nil {
		return failf(ChannelCloud, ErrNotConfigured, "no client id configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return failf(ChannelCloud, err, "photo %s is not readable", filepath.Base(path))
	}
	target := c.UploadURL(filepath.Base(path))

	for attempt := 0; ; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return failf(ChannelCloud, err, "authentication failed: %v", err)
		}
		status, body, err := c.put(ctx, target, token, data)
		if err != nil {
			return failf(ChannelCloud, err, "upload failed: %v", err)
		}
		switch {
		case status >= 200 && status < 300:
			return nil
		case status == http.StatusUnauthorized && attempt == 0:
			log.Printf("Cloud upload of %s got 401, signing in again", filepath.Base(path))
			c.tokens.Invalidate()
			continue
		default:
			return failf(ChannelCloud, nil, "HTTP %d: %s", status, util.Truncate(strings.TrimSpace(body), 300))
		}
	}
}

func (c *Cloud) put(ctx context.Context, target, token string, data []byte) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}

// Endpoint returns the Microsoft identity endpoints for tenant ("common" when empty).
func Endpoint(tenant string) oauth2.Endpoint {
	if tenant == "" {
		tenant = "common"
	}
	base := "https://login.microsoftonline.com/" + url.PathEscape(tenant) + "/oauth2/v2.0"
	return oauth2.Endpoint{
		AuthURL:       base + "/authorize",
		TokenURL:      base + "/token",
		DeviceAuthURL: base + "/devicecode",
	}
}

// ErrSignInRequired is returned when no refresh token is stored and no prompt can be shown.
var ErrSignInRequired = errors.New("not signed in")

// DevicePrompt shows the operator where to enter the sign-in code.
type DevicePrompt func(verificationURI, userCode string)

// DeviceAuth obtains tokens with the OAuth device code flow and keeps the refresh token in
// the keyring.
type DeviceAuth struct {
	conf    *oauth2.Config
	secrets config.Secrets
	prompt  DevicePrompt

	mu    sync.Mutex
	token *oauth2.Token
}

// NewDeviceAuth creates a token provider for cfg. prompt may be nil for unattended use, in
// which case a missing or expired refresh token yields ErrSignInRequired.
func NewDeviceAuth(cfg config.CloudConfig, secrets config.Secrets, prompt DevicePrompt) *DeviceAuth {
	return &DeviceAuth{
		conf: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: Endpoint(cfg.TenantID),
			Scopes:   CloudScopes,
		},
		secrets: secrets,
		prompt:  prompt,
	}
}

// Token implements TokenProvider.
func (d *DeviceAuth) Token(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.token.Valid() {
		return d.token.AccessToken, nil
	}

	if rt := d.refreshToken(); rt != "" {
		tok, err := d.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: rt}).Token()
		if err == nil {
			d.store(tok)
			return tok.AccessToken, nil
		}
		log.Printf("Refreshing cloud token failed: %v", err)
	}

	if d.prompt == nil {
		return "", ErrSignInRequired
	}
	tok, err := d.login(ctx, d.prompt)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Invalidate implements TokenProvider.
func (d *DeviceAuth) Invalidate() {
	d.mu.Lock()
	d.token = nil
	d.mu.Unlock()
}

// Login runs the device code flow now, regardless of any stored token. A nil prompt falls
// back to the one given to NewDeviceAuth.
func (d *DeviceAuth) Login(ctx context.Context, prompt DevicePrompt) error {
	if prompt == nil {
		prompt = d.prompt
	}
	if prompt == nil {
		return ErrSignInRequired
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.login(ctx, prompt)
	return err
}

// SignOut forgets every token.
func (d *DeviceAuth) SignOut() error {
	d.mu.Lock()
	d.token = nil
	d.mu.Unlock()
	if d.secrets == nil {
		return nil
	}
	return d.secrets.Delete(config.CloudRefreshTokenKey)
}

// SignedIn reports whether a refresh token is stored.
func (d *DeviceAuth) SignedIn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token.Valid() || d.refreshToken() != ""
}

func (d *DeviceAuth) login(ctx context.Context, prompt DevicePrompt) (*oauth2.Token, error) {
	da, err := d.conf.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting device code: %w", err)
	}
	prompt(da.VerificationURI, da.UserCode)

	tok, err := d.conf.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("waiting for sign-in: %w", err)
	}
	d.store(tok)
	return tok, nil
}

func (d *DeviceAuth) refreshToken() string {
	if d.token != nil && d.token.RefreshToken != "" {
		return d.token.RefreshToken
	}
	if d.secrets == nil {
		return ""
	}
	rt, err := d.secrets.Get(config.CloudRefreshTokenKey)
	if err != nil {
		log.Printf("Reading cloud refresh token: %v", err)
		return ""
	}
	return rt
}

func (d *DeviceAuth) store(tok *oauth2.Token) {
	d.token = tok
	if d.secrets == nil || tok.RefreshToken == "" {
		return
	}
	if err := d.secrets.Set(config.CloudRefreshTokenKey, tok.RefreshToken); err != nil {
		log.Printf("Saving cloud refresh token: %v", err)
	}
}
