// Package debughttp serves the local admin surface: a JSON snapshot of the
// registry, a live order tail and Prometheus metrics.
package debughttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/orderlink/internal/application"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"tailscale.com/tsweb"
)

const SnapshotPath = "/debug/snapshot"

// Source is the registry view the routes read from.
type Source interface {
	Snapshot() application.Snapshot
	Subscribe() (string, <-chan application.Event)
	Unsubscribe(id string)
}

// AttachRoutes mounts /debug/snapshot and /debug/orders on mux, plus /metrics
// when gatherer is non-nil. Debug routes are only reachable from loopback or
// the tailnet.
func AttachRoutes(mux *http.ServeMux, source Source, gatherer prometheus.Gatherer) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("snapshot", "registry snapshot (JSON)", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewSnapshotDoc(source.Snapshot())); err != nil {
			http.Error(w, "Failed to encode snapshot", http.StatusInternalServerError)
		}
	})

	debug.HandleSilentFunc("orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		id, events := source.Subscribe()
		defer source.Unsubscribe(id)

		_, _ = w.Write([]byte(": ping\n\n"))
		flusher.Flush()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind != application.EventRecord || ev.Record == nil {
					continue
				}
				payload, err := json.Marshal(NewRecordDoc(*ev.Record))
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: order\ndata: %s\n\n", payload); err != nil {
					return
				}
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	})

	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

// Serve runs an HTTP server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("debug http listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve debug http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown debug http: %w", err)
		}
		return nil
	}
}

// FetchSnapshot reads /debug/snapshot from a running server at addr.
func FetchSnapshot(ctx context.Context, client *http.Client, addr string) (SnapshotDoc, error) {
	if client == nil {
		client = http.DefaultClient
	}

	url := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+SnapshotPath, nil)
	if err != nil {
		return SnapshotDoc{}, fmt.Errorf("build snapshot request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return SnapshotDoc{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SnapshotDoc{}, fmt.Errorf("fetch snapshot: unexpected status %s", resp.Status)
	}

	var doc SnapshotDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return SnapshotDoc{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return doc, nil
}
