package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetgrid/battleship-go/internal/middleware"
	"github.com/fleetgrid/battleship-go/internal/registry"
	"github.com/fleetgrid/battleship-go/internal/services/match"
	"github.com/fleetgrid/battleship-go/internal/services/queue"
	"github.com/fleetgrid/battleship-go/internal/services/session"
	"github.com/fleetgrid/battleship-go/internal/storage"
)

// RouterConfig holds dependencies for the HTTP router
type RouterConfig struct {
	Logger   *slog.Logger
	Storage  storage.Storage
	Sessions *session.Manager
	Registry *registry.Registry
	Queue    *queue.Queue
	Matches  match.ControllerInterface

	// WSHandler bridges websocket clients into the line protocol
	WSHandler http.Handler
}

// NewRouter creates the HTTP router: read-only status endpoints,
// Prometheus metrics, and the websocket bridge.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	h := newHandler(cfg)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}", h.PlayerRecord).Methods(http.MethodGet)
	api.HandleFunc("/matches", h.RecentMatches).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if cfg.WSHandler != nil {
		r.Handle("/ws", cfg.WSHandler)
	}

	return r
}
