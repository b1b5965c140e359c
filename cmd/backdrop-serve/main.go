//go:build !js

// Command backdrop-serve serves the browser build and tells open pages to reload when a file in
// the served directory changes.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dir := flag.String("dir", filepath.Join("cmd", "backdrop-wasm", "web"), "directory holding index.html, backdrop.wasm and wasm_exec.js")
	flag.Parse()

	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	log := common.Logger()

	hub := newReloadHub()
	srv := &http.Server{Addr: *addr, Handler: logRequests(newMux(*dir, hub))}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := hub.watch(ctx, *dir); err != nil {
			log.Warn("live reload disabled", "error", err)
		}
	}()

	go func() {
		log.Info("serving", "url", "http://localhost"+*addr, "dir", *dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newMux serves dir at / with the live reload socket at /livereload.
func newMux(dir string, hub *reloadHub) *http.ServeMux {
	mux := http.NewServeMux()
	files := http.FileServer(http.Dir(dir))
	mux.Handle("/livereload", hub)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}

func logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.Logger().Debug("request", "method", r.Method, "path", r.URL.Path)
		h.ServeHTTP(w, r)
	})
}
