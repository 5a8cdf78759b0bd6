package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/regionedit/internal/auth"
	"github.com/inamate/regionedit/internal/bridge"
	"github.com/inamate/regionedit/internal/collab"
	"github.com/inamate/regionedit/internal/configstore"
	"github.com/inamate/regionedit/internal/middleware"
	"github.com/inamate/regionedit/internal/typeid"
)

const maxBodySize = 1 << 20

type Handler struct {
	store    configstore.Store
	hub      *collab.Hub
	metrics  *middleware.Metrics
	verifier *auth.Verifier
	origins  []string
	now      func() time.Time
}

// NewHandler wires the config routes. hub and metrics may be nil.
func NewHandler(store configstore.Store, hub *collab.Hub, metrics *middleware.Metrics, verifier *auth.Verifier, wsOrigins []string) *Handler {
	if verifier == nil {
		verifier = auth.NewVerifier("")
	}
	return &Handler{
		store:    store,
		hub:      hub,
		metrics:  metrics,
		verifier: verifier,
		origins:  wsOrigins,
		now:      time.Now,
	}
}

type saveResponse struct {
	Status   string `json:"status"`
	Revision string `json:"revision"`
}

func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	prefix := mux.Vars(r)["prefix"]

	var req bridge.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.NodeID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "node_id is required"})
		return
	}
	if len(req.Config) == 0 || string(req.Config) == "null" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "config is required"})
		return
	}
	if sub := auth.SubjectFromContext(r.Context()); sub != "" && sub != req.NodeID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "token not issued for this node"})
		return
	}

	entry := configstore.Entry{
		Revision:  typeid.NewRevisionID(),
		NodeID:    req.NodeID,
		Timestamp: h.now().UnixMilli(),
		Config:    req.Config,
	}
	if err := h.store.Save(r.Context(), prefix, entry); err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("config saved", "prefix", prefix, "node", req.NodeID, "action", req.Action, "revision", entry.Revision)
	if h.metrics != nil {
		h.metrics.ObserveSave(prefix)
	}
	if h.hub != nil {
		h.hub.PublishUpdate(prefix, &entry)
	}

	writeJSON(w, http.StatusOK, saveResponse{Status: "saved", Revision: entry.Revision})
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entry, err := h.store.Load(r.Context(), vars["prefix"], vars["nodeId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.store.Delete(r.Context(), vars["prefix"], vars["nodeId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	if h.hub != nil {
		h.hub.PublishCleared(vars["prefix"], vars["nodeId"], 1)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearConfigs(w http.ResponseWriter, r *http.Request) {
	prefix := mux.Vars(r)["prefix"]

	n, err := h.store.Clear(r.Context(), prefix)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if h.hub != nil && n > 0 {
		h.hub.PublishCleared(prefix, "", n)
	}

	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	prefix := mux.Vars(r)["prefix"]

	ids, err := h.store.List(r.Context(), prefix)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"node_ids": ids})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WebSocket streams config changes for one node. When a secret is set the
// token travels in the query string.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	prefix, nodeID := vars["prefix"], vars["nodeId"]

	if h.verifier.Enabled() {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if _, err := h.verifier.ValidateToken(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(h.hub, conn, prefix, nodeID, uuid.New().String())
	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, configstore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, configstore.ErrInvalidKey):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid prefix or node id"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
