package nexacode

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunrmantri23/nexacode/internal/auth"
	"github.com/varunrmantri23/nexacode/internal/config"
	"github.com/varunrmantri23/nexacode/internal/core"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := config.Default()
	cfg.Dev = true
	cfg.DBPath = filepath.Join(t.TempDir(), "data", "nexacode.db")
	cfg.Addr = "127.0.0.1:0"
	return cfg
}

func TestNewCreatesApp(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	defer app.Stop()

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"uid":"dev"`)
}

func TestExportComposesRawSources(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	defer app.Stop()

	ctx := context.Background()
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := app.Projects().Save(ctx, auth.DevUser, core.Project{
		Title:  "Export me",
		HTML:   "<main>x</main>",
		CSS:    "main{}",
		JS:     "boot()",
		Output: "stale",
	})
	require.NoError(t, err)

	got, doc, err := app.Export(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Export me", got.Title)
	assert.Equal(t, core.ComposeDocument("<main>x</main>", "main{}", "boot()"), doc)

	_, _, err = app.Export(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestServeStopsOnCancel(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	defer app.Stop()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
