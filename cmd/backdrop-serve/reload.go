//go:build !js

package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
)

// reloadDebounce coalesces the burst of events a single build produces.
const reloadDebounce = 200 * time.Millisecond

// reloadHub holds the connected pages and broadcasts a reload message to them.
type reloadHub struct {
	mu       *sync.Mutex
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]struct{}
}

func newReloadHub() *reloadHub {
	return &reloadHub{
		mu:      &sync.Mutex{},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *reloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Logger().Warn("live reload upgrade", "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Pages never send; reading only detects the close.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *reloadHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends msg to every page and returns how many received it.
func (h *reloadHub) broadcast(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			delete(h.clients, conn)
			conn.Close()
			continue
		}
		sent++
	}
	return sent
}

func (h *reloadHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		delete(h.clients, conn)
	}
}

// watch broadcasts "reload" after files in dir change, until ctx is done.
func (h *reloadHub) watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			common.Logger().Warn("live reload watcher", "error", err)
		case <-timer.C:
			n := h.broadcast("reload")
			common.Logger().Info("reload", "pages", n)
		}
	}
}
