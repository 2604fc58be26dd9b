package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dixieflatline76/Cheese/config"
)

type fakeTokens struct {
	mu          sync.Mutex
	calls       int
	invalidated int
	err         error
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "token-" + string(rune('0'+f.calls)), nil
}

func (f *fakeTokens) Invalidate() {
	f.mu.Lock()
	f.invalidated++
	f.mu.Unlock()
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo_20261019_150405.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0600))
	return path
}

func testCloud(srv *httptest.Server, tokens TokenProvider) *Cloud {
	c := NewCloud(config.CloudConfig{
		Enabled:    true,
		ClientID:   "client",
		FolderPath: "/Photos/Photobooth",
	}, tokens, srv.Client())
	c.base = srv.URL
	return c
}

func TestCloudUploadURL(t *testing.T) {
	c := NewCloud(config.CloudConfig{FolderPath: "/Photos/Wedding 2026/"}, nil, nil)
	assert.Equal(t,
		GraphURL+"/me/drive/root:/Photos/Wedding%202026/photo_1.jpg:/content",
		c.UploadURL("photo_1.jpg"))
}

func TestCloudUploadSuccess(t *testing.T) {
	var gotAuth, gotType, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.EscapedPath()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	require.NoError(t, testCloud(srv, tokens).Upload(context.Background(), writePhoto(t)))
	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.Equal(t, "application/octet-stream", gotType)
	assert.Equal(t, "/me/drive/root:/Photos/Photobooth/photo_20261019_150405.jpg:/content", gotPath)
	assert.Equal(t, "jpeg bytes", gotBody)
	assert.Equal(t, 0, tokens.invalidated)
}

func TestCloudUnauthorizedRetriesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	err := testCloud(srv, tokens).Upload(context.Background(), writePhoto(t))

	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load(), "one retry after re-authentication")
	assert.Equal(t, 1, tokens.invalidated)
	assert.Equal(t, 2, tokens.calls)
	assert.Contains(t, err.Error(), "HTTP 401")

	var derr *Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, ChannelCloud, derr.Channel)
}

func TestCloudUnauthorizedThenOK(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	require.NoError(t, testCloud(srv, tokens).Upload(context.Background(), writePhoto(t)))
	assert.Equal(t, int32(2), hits.Load())
}

func TestCloudServerErrorTruncatesBody(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInsufficientStorage)
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	err := testCloud(srv, &fakeTokens{}).Upload(context.Background(), writePhoto(t))
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "no retry for other statuses")
	assert.Contains(t, err.Error(), "HTTP 507: ")
	assert.LessOrEqual(t, len(err.Error()), len("onedrive: HTTP 507: ")+303)
}

func TestCloudDisabledAndUnconfigured(t *testing.T) {
	c := NewCloud(config.CloudConfig{}, &fakeTokens{}, nil)
	assert.ErrorIs(t, c.Upload(context.Background(), "x.jpg"), ErrDisabled)

	c = NewCloud(config.CloudConfig{Enabled: true}, &fakeTokens{}, nil)
	assert.ErrorIs(t, c.Upload(context.Background(), "x.jpg"), ErrNotConfigured)
}

func TestCloudTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request without a token")
	}))
	defer srv.Close()

	err := testCloud(srv, &fakeTokens{err: ErrSignInRequired}).Upload(context.Background(), writePhoto(t))
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.Contains(t, err.Error(), "authentication failed")
}

type memSecrets map[string]string

func (m memSecrets) Get(key string) (string, error) { return m[key], nil }
func (m memSecrets) Set(key, value string) error   { m[key] = value; return nil }
func (m memSecrets) Delete(key string) error       { delete(m, key); return nil }

func TestDeviceAuthRefresh(t *testing.T) {
	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		grants = append(grants, r.Form.Get("grant_type")+":"+r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "rt2",
		})
	}))
	defer srv.Close()

	secrets := memSecrets{config.CloudRefreshTokenKey: "rt1"}
	auth := NewDeviceAuth(config.CloudConfig{ClientID: "client"}, secrets, nil)
	auth.conf.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	assert.True(t, auth.SignedIn())

	tok, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, "rt2", secrets[config.CloudRefreshTokenKey])

	tok, err = auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Len(t, grants, 1, "cached while valid")

	auth.Invalidate()
	_, err = auth.Token(context.Background())
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "refresh_token:rt2", grants[1])

	require.NoError(t, auth.SignOut())
	assert.False(t, auth.SignedIn())
	_, err = auth.Token(context.Background())
	assert.ErrorIs(t, err, ErrSignInRequired)
}

func TestEndpoint(t *testing.T) {
	ep := Endpoint("contoso.onmicrosoft.com")
	assert.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/devicecode", ep.DeviceAuthURL)
	assert.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/token", Endpoint("").TokenURL)
}
