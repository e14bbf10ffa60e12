package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `[
  {"tag_name": "v0.9.0", "assets": [{"name": "pixfx_linux_amd64", "browser_download_url": "https://example.invalid/0.9.0"}]},
  {"tag_name": "pixfx-v1.4.0", "assets": [
    {"name": "checksums.txt", "browser_download_url": "https://example.invalid/sums"},
    {"name": "pixfx_linux_amd64", "browser_download_url": "https://example.invalid/1.4.0"}
  ]},
  {"tag_name": "v2.0.0-rc.1", "prerelease": true},
  {"tag_name": "v3.0.0", "draft": true},
  {"tag_name": "nightly", "name": "no version here"}
]`

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/Fepozopo/pixfx/releases", r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUpdaterLatest(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, releasesJSON)
	u := &Updater{APIBase: srv.URL}
	rel, found, err := u.Latest()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1.4.0", rel.Version.String())
	assert.Equal(t, "https://example.invalid/1.4.0", rel.AssetURL)
}

func TestUpdaterLatestErrors(t *testing.T) {
	u := &Updater{APIBase: releaseServer(t, http.StatusForbidden, `rate limited`).URL}
	_, _, err := u.Latest()
	assert.ErrorContains(t, err, "status 403")

	u = &Updater{APIBase: releaseServer(t, http.StatusOK, `{`).URL}
	_, _, err = u.Latest()
	assert.ErrorContains(t, err, "decode")

	u = &Updater{APIBase: releaseServer(t, http.StatusOK, `[]`).URL}
	_, found, err := u.Latest()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdaterCheck(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, releasesJSON)

	var applied []string
	var out bytes.Buffer
	u := &Updater{APIBase: srv.URL, Out: &out, apply: func(url, exe string) error {
		applied = append(applied, url)
		return nil
	}}

	require.NoError(t, u.Check("1.4.0", true))
	assert.Contains(t, out.String(), "already running the latest version")
	assert.Empty(t, applied)

	out.Reset()
	u.In = strings.NewReader("n\n")
	require.NoError(t, u.Check("v1.0.0", false))
	assert.Contains(t, out.String(), "Update cancelled")
	assert.Empty(t, applied)

	out.Reset()
	u.In = strings.NewReader("yes\n")
	require.NoError(t, u.Check("v1.0.0", false))
	assert.Equal(t, []string{"https://example.invalid/1.4.0"}, applied)
	assert.Contains(t, out.String(), "Updated to version 1.4.0")
}
