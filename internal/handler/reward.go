package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/economy"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/push"
	"github.com/wastenexus/wastenexus/internal/store"
)

type RewardHandler struct {
	rewards  *store.RewardStore
	economy  *economy.Service
	notifier *push.Notifier
	logger   *slog.Logger
}

func NewRewardHandler(rewards *store.RewardStore, eco *economy.Service, notifier *push.Notifier, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rewards, economy: eco, notifier: notifier, logger: logger}
}

// Catalog returns active reward items, cheapest first.
func (h *RewardHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.rewards.ListActive()
	if err != nil {
		h.logger.Error("list active rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if items == nil {
		items = []model.RewardItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": items})
}

// Redeem spends the caller's points on one reward item.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID, _ := auth.UserID(r.Context())

	redemption, err := h.economy.RequestRedemption(r.Context(), userID, id)
	if err != nil {
		writeEconomyError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, redemption)
}

func (h *RewardHandler) MyRedemptions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	redemptions, err := h.rewards.ListRedemptionsByUser(userID)
	if err != nil {
		h.logger.Error("list redemptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"redemptions": redemptions})
}

type rewardItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
}

func (r *rewardItemRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if r.PointsCost <= 0 {
		return "points_cost must be > 0"
	}
	if r.Stock < model.UnlimitedStock {
		return "stock must be >= -1"
	}
	if r.Category == "" {
		r.Category = string(model.CategoryOther)
	}
	if !model.ValidRewardCategory(r.Category) {
		return "invalid category"
	}
	return ""
}

func (h *RewardHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req rewardItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.rewards.Create(req.Title, req.Description, req.PointsCost, req.Stock, model.RewardCategory(req.Category), req.Active)
	if err != nil {
		h.logger.Error("create reward item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *RewardHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.rewards.List()
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if items == nil {
		items = []model.RewardItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": items})
}

func (h *RewardHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.rewards.GetByID(id)
	if err != nil {
		h.logger.Error("get reward item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	var req rewardItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.rewards.Update(id, req.Title, req.Description, req.PointsCost, req.Stock, model.RewardCategory(req.Category), req.Active)
	if err != nil {
		h.logger.Error("update reward item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// DeactivateItem soft-deletes a reward so existing redemptions keep their
// reference.
func (h *RewardHandler) DeactivateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.rewards.GetByID(id)
	if err != nil {
		h.logger.Error("get reward item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to deactivate reward")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	if err := h.rewards.Deactivate(id); err != nil {
		h.logger.Error("deactivate reward item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to deactivate reward")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RewardHandler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(model.RedemptionPending)
	}

	redemptions, err := h.rewards.ListRedemptionsByStatus(model.RedemptionStatus(status))
	if err != nil {
		h.logger.Error("list redemptions by status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"redemptions": redemptions})
}

func (h *RewardHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.economy.ApproveRedemption, "Redemption approved",
		"Your reward is approved. Show your redemption code at pickup.")
}

func (h *RewardHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.economy.DeliverRedemption, "Reward delivered",
		"Your reward has been delivered. Enjoy!")
}

func (h *RewardHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.economy.RejectRedemption, "Redemption rejected",
		"Your redemption was rejected and your points have been refunded.")
}

type redemptionTransition func(ctx context.Context, id int64) (*model.RewardRedemption, error)

func (h *RewardHandler) transition(w http.ResponseWriter, r *http.Request, fn redemptionTransition, title, body string) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	redemption, err := fn(r.Context(), id)
	if err != nil {
		writeEconomyError(w, err)
		return
	}

	if h.notifier != nil {
		msg := body
		if redemption.RedemptionCode != nil {
			msg = fmt.Sprintf("%s Code: %s", body, *redemption.RedemptionCode)
		}
		h.notifier.Notify(redemption.UserID, title, msg, "/rewards/redemptions")
	}

	writeJSON(w, http.StatusOK, redemption)
}
