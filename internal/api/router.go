package api

import (
	"net/http"

	"github.com/gorilla/mux"

	mw "github.com/inamate/regionedit/internal/middleware"
)

// NewRouter mounts the handler with the global middleware chain. corsOrigins
// are full origins, the handler's websocket origins are host patterns.
func NewRouter(h *Handler, corsOrigins []string) *mux.Router {
	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(corsOrigins))
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
		r.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	}

	r.HandleFunc("/health", h.Health).Methods("GET")

	if h.hub != nil {
		r.HandleFunc("/ws/{prefix:[A-Za-z0-9_]+}/{nodeId}", h.WebSocket)
	}

	cfg := r.PathPrefix("/{prefix:[A-Za-z0-9_]+}").Subrouter()
	cfg.Use(h.verifier.Middleware)

	cfg.HandleFunc("/save_config", h.SaveConfig).Methods("POST", "OPTIONS")
	cfg.HandleFunc("/configs", h.ListConfigs).Methods("GET")
	cfg.HandleFunc("/config", h.ClearConfigs).Methods("DELETE", "OPTIONS")
	cfg.HandleFunc("/config/{nodeId}", h.GetConfig).Methods("GET")
	cfg.HandleFunc("/config/{nodeId}", h.DeleteConfig).Methods("DELETE", "OPTIONS")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return r
}
