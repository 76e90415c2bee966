// Package main implements shareboardd, the shared board synchronization
// service. It stores token-guarded board records across one or more
// storage backends and propagates edits to polling clients through a
// monotonically increasing revision counter.
//
// HTTP API:
//
//	POST /share                      - Create a shared board
//	GET  /share/{id}?token=          - Fetch a board with a view or edit token
//	PUT  /share/{id}                 - Replace the board (edit token only)
//	GET  /share/{id}/changes?token=&since=
//	                                 - Long-poll for a revision beyond since
//	GET  /health                     - Health check
//
// Configuration:
//   - SHAREBOARD_LISTEN: Listen address (default: ":8080")
//   - SHAREBOARD_DATA_DIR: Directory for the file backend (optional)
//   - SHAREBOARD_DB: Path to the SQLite backend (optional)
//   - SHAREBOARD_WAIT_TIMEOUT: Long-poll bound, Go duration (default: "20s")
//
// The in-memory backend is always configured; the file and SQLite
// backends join the replication set when their variables are set.
//
// Example usage:
//
//	SHAREBOARD_LISTEN=:8080 \
//	SHAREBOARD_DB=/var/lib/shareboard/boards.db \
//	./shareboardd
//
//	# Share a board
//	curl -X POST localhost:8080/share -d '{"board":{"cards":[]}}'
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/shareboard/internal/notify"
	"github.com/dreamware/shareboard/internal/share"
	"github.com/dreamware/shareboard/internal/storage"
)

func main() {
	addr := getenv("SHAREBOARD_LISTEN", ":8080")

	waitTimeout, err := time.ParseDuration(getenv("SHAREBOARD_WAIT_TIMEOUT", "20s"))
	if err != nil {
		log.Fatalf("invalid SHAREBOARD_WAIT_TIMEOUT: %v", err)
	}

	backends := []storage.Backend{storage.NewMemoryBackend()}

	if dir := os.Getenv("SHAREBOARD_DATA_DIR"); dir != "" {
		fb, err := storage.NewFileBackend(dir)
		if err != nil {
			log.Fatalf("file backend: %v", err)
		}
		backends = append(backends, fb)
		log.Printf("file backend enabled at %s", dir)
	}

	var sqlite *storage.SQLiteBackend
	if path := os.Getenv("SHAREBOARD_DB"); path != "" {
		sqlite, err = storage.NewSQLiteBackend(path)
		if err != nil {
			log.Fatalf("sqlite backend: %v", err)
		}
		backends = append(backends, sqlite)
		log.Printf("sqlite backend enabled at %s", path)
	}

	store := storage.NewRecordStore(backends...)
	notifier := notify.NewNotifier()
	srv := newServer(share.NewService(store, notifier, waitTimeout))

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           newMux(srv),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("shareboardd listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// Release parked long-polls first so Shutdown can drain quickly
	notifier.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	if sqlite != nil {
		_ = sqlite.Close()
	}
	log.Println("shareboardd stopped")
}

// newMux wires the share routes onto a fresh mux.
func newMux(srv *server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/share", srv.handleCreate)
	mux.HandleFunc("/share/", srv.handleShare)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
