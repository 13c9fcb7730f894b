package collector

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/FemiOfficial/rootsense-go/internal"
)

// Handler serves the collector's ingest API.
type Handler struct {
	store Store
	hub   *Hub
}

func NewHandler(store Store, hub *Hub) *Handler {
	return &Handler{store: store, hub: hub}
}

// NewRouter wires all routes. When apiKey is non-empty every endpoint
// except the health check requires a matching X-API-Key header.
func NewRouter(h *Handler, apiKey string) *mux.Router {
	r := mux.NewRouter()
	if apiKey != "" {
		r.Use(authMiddleware(apiKey))
	}

	r.HandleFunc("/v1/healthz", h.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/events/batch", h.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/v1/events/success", h.handleSuccess).Methods(http.MethodPost)
	r.HandleFunc("/v1/events", h.handleRecent).Methods(http.MethodGet)
	if h.hub != nil {
		r.HandleFunc("/v1/stream", h.hub.ServeStream)
	}
	return r
}

func authMiddleware(apiKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/healthz") {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("X-API-Key") != apiKey {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type batchRequest struct {
	Events []json.RawMessage `json:"events"`
}

// eventEnvelope is the subset of the wire event the store indexes on.
type eventEnvelope struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
	Service     string `json:"service"`
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed batch: " + err.Error()})
		return
	}
	if len(req.Events) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty batch"})
		return
	}

	now := time.Now().UTC()
	stored := make([]StoredEvent, 0, len(req.Events))
	for _, raw := range req.Events {
		var env eventEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.ID == "" || env.Type == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "event missing id or type"})
			return
		}
		stored = append(stored, StoredEvent{
			ID:          env.ID,
			Type:        env.Type,
			Fingerprint: env.Fingerprint,
			Service:     env.Service,
			Received:    now,
			Raw:         raw,
		})
	}

	if err := h.store.Append(r.Context(), stored); err != nil {
		internal.GetLogger().WithField("error", err).Error("batch append failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
		return
	}

	if h.hub != nil {
		for _, ev := range stored {
			h.hub.Broadcast(map[string]any{"type": ev.Type, "data": ev.Raw})
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(stored)})
}

type successRequest struct {
	Fingerprint string         `json:"fingerprint"`
	Context     map[string]any `json:"context"`
	ProjectID   string         `json:"project_id"`
	Environment string         `json:"environment"`
}

func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	var req successRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Fingerprint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fingerprint"})
		return
	}

	if err := h.store.MarkResolved(r.Context(), req.Fingerprint); err != nil {
		internal.GetLogger().WithField("error", err).Error("resolve mark failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "resolved"})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	events, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		internal.GetLogger().WithField("error", err).Error("recent query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
