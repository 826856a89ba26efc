package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/classify"
	"github.com/wastenexus/wastenexus/internal/economy"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/push"
	"github.com/wastenexus/wastenexus/internal/storage"
	"github.com/wastenexus/wastenexus/internal/store"
	"github.com/wastenexus/wastenexus/internal/websocket"
)

const maxPhotoBytes = 10 << 20

type ReportHandler struct {
	reports    *store.ReportStore
	economy    *economy.Service
	classifier *classify.Service
	media      *storage.Media
	notifier   *push.Notifier
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewReportHandler(reports *store.ReportStore, eco *economy.Service, classifier *classify.Service, media *storage.Media, notifier *push.Notifier, hub *websocket.Hub, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports:    reports,
		economy:    eco,
		classifier: classifier,
		media:      media,
		notifier:   notifier,
		hub:        hub,
		logger:     logger,
	}
}

func (h *ReportHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type reportRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	WasteType string  `json:"waste_type"`
	Quantity  string  `json:"quantity"`
}

func (r *reportRequest) validate() string {
	r.WasteType = strings.TrimSpace(r.WasteType)
	r.Quantity = strings.TrimSpace(r.Quantity)
	if r.WasteType == "" {
		return "waste_type is required"
	}
	if r.Quantity == "" {
		return "quantity is required"
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return "latitude out of range"
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return "longitude out of range"
	}
	return ""
}

// Create accepts a JSON body, or a multipart form with the same fields plus an
// optional photo part.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req reportRequest
	var photoKey *string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req.WasteType = r.FormValue("waste_type")
		req.Quantity = r.FormValue("quantity")
		req.Latitude, _ = strconv.ParseFloat(r.FormValue("latitude"), 64)
		req.Longitude, _ = strconv.ParseFloat(r.FormValue("longitude"), 64)

		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			if h.media == nil || !h.media.Enabled() {
				writeError(w, http.StatusBadRequest, "photo uploads are not enabled")
				return
			}
			key := storage.NewKey("reports", header.Filename)
			ct := header.Header.Get("Content-Type")
			if err := h.media.Upload(r.Context(), key, file, header.Size, ct); err != nil {
				h.logger.Error("upload report photo", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to store photo")
				return
			}
			photoKey = &key
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// Classification is best effort; a failure never blocks the report.
	var analysis *string
	recyclability := 0.0
	if h.classifier != nil {
		result, err := h.classifier.Classify(r.Context(), req.WasteType, req.Quantity)
		if err != nil {
			h.logger.Warn("classify report", "error", err)
		} else if result != nil {
			analysis = &result.Analysis
			recyclability = result.Recyclability
		}
	}

	report, err := h.reports.Create(userID, req.Latitude, req.Longitude, req.WasteType, req.Quantity, recyclability, analysis, photoKey)
	if err != nil {
		h.logger.Error("create report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	h.broadcast(websocket.NewMessage("report", "created", report.ID, nil))

	writeJSON(w, http.StatusCreated, report)
}

// List shows citizens their own reports; workers and admins see everything,
// optionally filtered by status.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var reports []model.Report
	var err error
	if ac.Role == model.RoleCitizen {
		reports, err = h.reports.ListByUser(ac.UserID)
	} else {
		status := r.URL.Query().Get("status")
		reports, err = h.reports.List(status)
	}
	if err != nil {
		h.logger.Error("list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	report, err := h.reports.GetByID(id)
	if err != nil {
		h.logger.Error("get report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if ac.Role == model.RoleCitizen && report.UserID != ac.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Claim lets a worker take a pending report. First claim wins.
func (h *ReportHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	collectorID, _ := auth.UserID(r.Context())

	report, err := h.reports.GetByID(id)
	if err != nil {
		h.logger.Error("get report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to claim report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	claimed, err := h.reports.Claim(id, collectorID)
	if err != nil {
		h.logger.Error("claim report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to claim report")
		return
	}
	if !claimed {
		writeError(w, http.StatusConflict, "report already claimed")
		return
	}

	h.broadcast(websocket.NewMessage("report", "claimed", id, nil))

	report, _ = h.reports.GetByID(id)
	writeJSON(w, http.StatusOK, report)
}

// Complete finishes a claimed report and pays out both parties.
func (h *ReportHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	collectorID, _ := auth.UserID(r.Context())

	if err := h.economy.CompleteReport(r.Context(), id, collectorID); err != nil {
		writeEconomyError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("report", "completed", id, nil))

	report, _ := h.reports.GetByID(id)
	if report != nil && h.notifier != nil {
		h.notifier.Notify(report.UserID, "Report collected",
			"Your waste report was collected. Points have been added to your balance.", "/reports")
	}

	writeJSON(w, http.StatusOK, report)
}

// Photo streams a report's photo from media storage.
func (h *ReportHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	report, err := h.reports.GetByID(id)
	if err != nil {
		h.logger.Error("get report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get report")
		return
	}
	if report == nil || report.PhotoKey == nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	serveMedia(w, r, h.media, *report.PhotoKey, h.logger)
}
