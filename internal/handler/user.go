package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/store"
)

const maxLeaderboardLimit = 100

type UserHandler struct {
	users        *store.UserStore
	transactions *store.TransactionStore
	logger       *slog.Logger
}

func NewUserHandler(users *store.UserStore, transactions *store.TransactionStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, transactions: transactions, logger: logger}
}

// Me returns the authenticated user's profile, including the live points
// balance.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	txs, err := h.transactions.ListByUser(userID)
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := h.users.Leaderboard(limit)
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// List returns all users. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
