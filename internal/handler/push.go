package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/push"
	"github.com/wastenexus/wastenexus/internal/store"
)

type PushHandler struct {
	subscriptions *store.PushStore
	sender        *push.Sender
	logger        *slog.Logger
}

func NewPushHandler(subscriptions *store.PushStore, sender *push.Sender, logger *slog.Logger) *PushHandler {
	return &PushHandler{subscriptions: subscriptions, sender: sender, logger: logger}
}

// VAPIDKey exposes the public key browsers need to subscribe.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		writeError(w, http.StatusNotFound, "push notifications are not enabled")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": h.sender.VAPIDPublicKey()})
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.subscriptions.Subscribe(userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		h.logger.Error("subscribe push", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID, _ := auth.UserID(r.Context())

	if err := h.subscriptions.Delete(id, userID); err != nil {
		h.logger.Error("unsubscribe push", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
