package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/lifecycle/internal/core/lifecycle"
	"github.com/zeusync/lifecycle/internal/core/observability/log"
)

const readHeaderTimeout = 5 * time.Second

// Diagnostics serves the most recently published lifecycle snapshot.
//
//	GET /types   handler index, one line per entity type
//	GET /stats   counters as JSON
//	GET /faults  recent handler faults as JSON
//	GET /ws      websocket, one JSON snapshot per Publish
//
// Publish is called from the frame loop; the HTTP side never touches the manager.
type Diagnostics struct {
	addr   string
	logger log.Log
	mux    *http.ServeMux

	mu      sync.RWMutex
	last    *lifecycle.Snapshot
	encoded []byte
	clients map[*wsClient]struct{}
	dropped uint64
	running bool

	done chan struct{}
}

func NewDiagnostics(addr string, logger log.Log) *Diagnostics {
	if logger == nil {
		logger = log.NewNop()
	}
	d := &Diagnostics{
		addr:    addr,
		logger:  logger.Named("diagnostics"),
		mux:     http.NewServeMux(),
		clients: make(map[*wsClient]struct{}),
		done:    make(chan struct{}),
	}
	d.mux.HandleFunc("GET /types", d.handleTypes)
	d.mux.HandleFunc("GET /stats", d.handleStats)
	d.mux.HandleFunc("GET /faults", d.handleFaults)
	d.mux.HandleFunc("GET /ws", d.handleWebSocket)
	return d
}

func (d *Diagnostics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mux.ServeHTTP(w, r)
}

// Publish stores snap and pushes it to every websocket client. Slow clients
// miss snapshots instead of blocking the caller.
func (d *Diagnostics) Publish(snap lifecycle.Snapshot) {
	encoded, err := json.Marshal(snap)
	if err != nil {
		d.logger.Error("encode snapshot", log.Error(err))
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = &snap
	d.encoded = encoded
	for c := range d.clients {
		select {
		case c.send <- encoded:
		default:
			d.dropped++
		}
	}
}

// Dropped counts snapshots not delivered to slow websocket clients.
func (d *Diagnostics) Dropped() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dropped
}

// Run listens on the configured address until ctx is done, then shuts down.
func (d *Diagnostics) Run(ctx context.Context) error {
	if d.addr == "" {
		return ErrMissingAddress
	}
	ln, err := net.Listen("tcp", d.addr)
	if err != nil {
		return err
	}
	return d.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (d *Diagnostics) Serve(ctx context.Context, ln net.Listener) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		_ = ln.Close()
		return ErrAlreadyRunning
	}
	d.running = true
	d.mu.Unlock()

	srv := &http.Server{Handler: d, ReadHeaderTimeout: readHeaderTimeout}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	d.logger.Info("diagnostics listening", log.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		close(d.done)
		return err
	case <-ctx.Done():
	}

	close(d.done)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Latest returns the most recently published snapshot.
func (d *Diagnostics) Latest() (lifecycle.Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return lifecycle.Snapshot{}, false
	}
	return *d.last, true
}

func (d *Diagnostics) handleTypes(w http.ResponseWriter, _ *http.Request) {
	snap, ok := d.Latest()
	if !ok {
		http.Error(w, ErrNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(snap.Types))
}

func (d *Diagnostics) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap, ok := d.Latest()
	if !ok {
		http.Error(w, ErrNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	d.writeJSON(w, snap.Stats)
}

func (d *Diagnostics) handleFaults(w http.ResponseWriter, _ *http.Request) {
	snap, ok := d.Latest()
	if !ok {
		http.Error(w, ErrNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	faults := snap.Faults
	if faults == nil {
		faults = []lifecycle.Fault{}
	}
	d.writeJSON(w, faults)
}

func (d *Diagnostics) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.logger.Warn("write response", log.Error(err))
	}
}
