package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/push"
	"github.com/wastenexus/wastenexus/internal/store"
)

type ApplicationHandler struct {
	applications *store.ApplicationStore
	users        *store.UserStore
	notifier     *push.Notifier
	logger       *slog.Logger
}

func NewApplicationHandler(applications *store.ApplicationStore, users *store.UserStore, notifier *push.Notifier, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, users: users, notifier: notifier, logger: logger}
}

// Apply submits a worker application for the authenticated citizen.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.Role != model.RoleCitizen {
		writeError(w, http.StatusConflict, "only citizens can apply")
		return
	}

	var req struct {
		Experience   string `json:"experience"`
		Availability string `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Experience = strings.TrimSpace(req.Experience)
	req.Availability = strings.TrimSpace(req.Availability)
	if req.Experience == "" {
		writeError(w, http.StatusBadRequest, "experience is required")
		return
	}
	if req.Availability == "" {
		writeError(w, http.StatusBadRequest, "availability is required")
		return
	}

	pending, err := h.applications.HasPending(ac.UserID)
	if err != nil {
		h.logger.Error("check pending application", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit application")
		return
	}
	if pending {
		writeError(w, http.StatusConflict, "application already pending")
		return
	}

	app, err := h.applications.Create(ac.UserID, req.Experience, req.Availability)
	if err != nil {
		h.logger.Error("create application", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit application")
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

// List returns applications, pending first by default. Admin only.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	apps, err := h.applications.List(status)
	if err != nil {
		h.logger.Error("list applications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	if apps == nil {
		apps = []model.WorkerApplication{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// Approve grants the applicant the worker role. Admin only.
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.ApplicationApproved)
}

// Reject declines the application. Admin only.
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, model.ApplicationRejected)
}

func (h *ApplicationHandler) review(w http.ResponseWriter, r *http.Request, status model.ApplicationStatus) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	app, err := h.applications.GetByID(id)
	if err != nil {
		h.logger.Error("get application", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to review application")
		return
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "application not found")
		return
	}

	ok, err := h.applications.Review(id, status)
	if err != nil {
		h.logger.Error("review application", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to review application")
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "application already reviewed")
		return
	}

	if status == model.ApplicationApproved {
		if err := h.users.SetRole(app.UserID, model.RoleWorker); err != nil {
			h.logger.Error("promote user to worker", "error", err, "user_id", app.UserID)
			writeError(w, http.StatusInternalServerError, "failed to promote user")
			return
		}
		if h.notifier != nil {
			h.notifier.Notify(app.UserID, "Application approved",
				"You are now a collection worker. Log in again to pick up your new role.", "/reports")
		}
	} else if h.notifier != nil {
		h.notifier.Notify(app.UserID, "Application update",
			"Your worker application was not approved this time.", "/")
	}

	app, _ = h.applications.GetByID(id)
	writeJSON(w, http.StatusOK, app)
}
