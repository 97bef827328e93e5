// Package watch provides a live-reload server: it watches a diagram
// source file and serves the rendered SVG over HTTP, notifying connected
// browsers through an SSE endpoint whenever the file changes.
package watch

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/inkboard/diagram"
)

// Config configures a Watcher.
type Config struct {
	File    string                // diagram source file to serve
	Port    string                // HTTP server port (use "0" for a random available port)
	Options diagram.RenderOptions // render options applied to every request
	Debug   bool                  // enable debug logging
	Stdout  io.Writer             // output for status messages
	Stderr  io.Writer             // output for error logging
}

// Watcher watches a diagram source file for changes and serves the
// rendered SVG via HTTP. It provides an SSE endpoint that notifies
// connected browsers when the file changes.
type Watcher struct {
	file     string
	options  diagram.RenderOptions
	stdout   io.Writer
	logger   *slog.Logger
	server   *http.Server
	shutdown chan struct{}
	clients  sync.WaitGroup

	mu          sync.Mutex
	subscribers map[string]chan struct{}
}

//go:embed index.html
var indexHTML []byte

// New creates a Watcher that serves the given diagram file as SVG on the
// specified port.
func New(cfg Config) (*Watcher, error) {
	_, err := os.Stat(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("file error: %v", err)
	}
	addr, err := netip.ParseAddrPort("127.0.0.1:" + cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q, must be in range 1-65535", cfg.Port)
	}

	handler := http.NewServeMux()
	server := http.Server{
		Addr:        addr.String(),
		Handler:     handler,
		ReadTimeout: 3 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cfg.Stderr, &slog.HandlerOptions{Level: level}))
	wa := &Watcher{
		file:        cfg.File,
		options:     cfg.Options,
		stdout:      cfg.Stdout,
		logger:      logger,
		server:      &server,
		shutdown:    make(chan struct{}),
		subscribers: map[string]chan struct{}{},
	}
	handler.HandleFunc("GET /", wa.handleIndex)
	handler.HandleFunc("GET /events", wa.handleEvents)
	svgHandler := http.TimeoutHandler(http.HandlerFunc(wa.handleGenerate), 5*time.Second, "failed to generate svg in time")
	handler.Handle("GET /graph", svgHandler)
	handler.Handle("GET /graph.svg", svgHandler)
	return wa, nil
}

// Watch starts the HTTP server and the file watcher, and blocks until
// the context is cancelled.
func (wa *Watcher) Watch(ctx context.Context) error {
	ln, err := net.Listen("tcp", wa.server.Addr)
	if err != nil {
		return err
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %v", err)
	}
	defer notify.Close()
	// Watch the directory, not the file: editors that write via
	// rename-and-replace would otherwise drop the watch after one save.
	if err := notify.Add(filepath.Dir(wa.file)); err != nil {
		return fmt.Errorf("failed to watch %s: %v", wa.file, err)
	}

	_, _ = fmt.Fprintf(wa.stdout, "watching on http://%s\n", ln.Addr())

	go wa.forwardEvents(notify)

	go func() {
		<-ctx.Done()
		close(wa.shutdown)
		wa.logger.Debug("shutting down, notifying clients")
		wa.clients.Wait() // no timeout: localhost flushes complete nearly instantly
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := wa.server.Shutdown(ctxTimeout); err != nil && !errors.Is(err, context.Canceled) {
			wa.logger.Error("failed to shutdown", "error", err)
		}
	}()

	if err := wa.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// forwardEvents fans file-change notifications out to every connected
// SSE client.
func (wa *Watcher) forwardEvents(notify *fsnotify.Watcher) {
	base := filepath.Base(wa.file)
	for {
		select {
		case <-wa.shutdown:
			return
		case event, ok := <-notify.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			wa.logger.Debug("change detected", "event", event.Op.String())
			wa.mu.Lock()
			for _, ch := range wa.subscribers {
				select {
				case ch <- struct{}{}:
				default: // client already has a pending notification
				}
			}
			wa.mu.Unlock()
		case err, ok := <-notify.Errors:
			if !ok {
				return
			}
			wa.logger.Error("watch error", "error", err)
		}
	}
}

func (wa *Watcher) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, err := w.Write(indexHTML)
	if err != nil {
		wa.logger.Error("failed to write index.html", "error", err)
	}
}

func (wa *Watcher) handleEvents(w http.ResponseWriter, r *http.Request) {
	wa.clients.Add(1)
	defer wa.clients.Done()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Tag each client with a request id so concurrent browser tabs are
	// distinguishable in debug logs.
	clientID := uuid.NewString()
	changes := make(chan struct{}, 1)
	wa.mu.Lock()
	wa.subscribers[clientID] = changes
	wa.mu.Unlock()
	defer func() {
		wa.mu.Lock()
		delete(wa.subscribers, clientID)
		wa.mu.Unlock()
	}()

	wa.logger.Debug("client connected", "client", clientID)

	keepAliveTicker := time.NewTicker(15 * time.Second)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-r.Context().Done():
			wa.logger.Debug("client disconnected", "client", clientID)
			return
		case <-wa.shutdown:
			_, _ = fmt.Fprint(w, "event: close\ndata: shutdown\n\n")
			flusher.Flush()
			wa.logger.Debug("closing connection to client", "client", clientID)
			return
		case <-keepAliveTicker.C:
			_, _ = w.Write([]byte(": keep-alive\n"))
			wa.logger.Debug("sent keep-alive", "client", clientID)
			flusher.Flush()
		case <-changes:
			_, _ = fmt.Fprintf(w, "data: changed\nretry: 5000\n\n")
			flusher.Flush()
		}
	}
}

func (wa *Watcher) handleGenerate(w http.ResponseWriter, _ *http.Request) {
	source, err := os.ReadFile(wa.file)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, err.Error())
		return
	}

	svg, err := diagram.Render(string(source), wa.options)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = io.WriteString(w, svg)
}
