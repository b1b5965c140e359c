//go:build !js

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuxServesIndexAndFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>backdrop</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	srv := httptest.NewServer(newMux(dir, newReloadHub()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/app.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReloadBroadcastsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	hub := newReloadHub()
	srv := httptest.NewServer(newMux(dir, hub))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.watch(ctx, dir) }()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/livereload"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The watcher may not be registered yet; keep touching the file until a message arrives.
	got := make(chan string, 1)
	go func() {
		_, msg, err := conn.ReadMessage()
		if err == nil {
			got <- string(msg)
		}
	}()
	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "backdrop.wasm"), []byte("wasm"), 0o644))
		select {
		case msg := <-got:
			assert.Equal(t, "reload", msg)
			return
		case <-time.After(300 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload message")
		}
	}
}
