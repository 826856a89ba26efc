package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/economy"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/store"
	"github.com/wastenexus/wastenexus/internal/websocket"
)

type EventHandler struct {
	events  *store.EventStore
	economy *economy.Service
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewEventHandler(events *store.EventStore, eco *economy.Service, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, economy: eco, hub: hub, logger: logger}
}

func (h *EventHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidEventStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	events, err := h.events.List(status)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	event, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Join enrolls the caller and awards the event's points in one transaction.
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID, _ := auth.UserID(r.Context())

	if err := h.economy.JoinEvent(r.Context(), id, userID); err != nil {
		writeEconomyError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("event", "joined", id, nil))

	event, err := h.events.GetByID(id)
	if err != nil || event == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type eventRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	StartsAt        time.Time `json:"starts_at"`
	MaxParticipants int       `json:"max_participants"`
	PointsReward    int       `json:"points_reward"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartsAt.IsZero() {
		writeError(w, http.StatusBadRequest, "starts_at is required")
		return
	}
	if req.PointsReward < 0 {
		writeError(w, http.StatusBadRequest, "points_reward must be >= 0")
		return
	}

	event, err := h.events.Create(req.Title, req.Description, req.Location, req.StartsAt, req.MaxParticipants, req.PointsReward)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.broadcast(websocket.NewMessage("event", "created", event.ID, nil))

	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !model.ValidEventStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	existing, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	event, err := h.events.UpdateStatus(id, model.EventStatus(req.Status))
	if err != nil {
		h.logger.Error("update event status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.broadcast(websocket.NewMessage("event", "updated", id, nil))

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	if err := h.events.Delete(id); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.broadcast(websocket.NewMessage("event", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
