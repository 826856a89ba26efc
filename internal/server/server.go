package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/classify"
	"github.com/wastenexus/wastenexus/internal/economy"
	"github.com/wastenexus/wastenexus/internal/handler"
	"github.com/wastenexus/wastenexus/internal/middleware"
	"github.com/wastenexus/wastenexus/internal/push"
	"github.com/wastenexus/wastenexus/internal/storage"
	"github.com/wastenexus/wastenexus/internal/store"
	ws "github.com/wastenexus/wastenexus/internal/websocket"
)

// Config carries everything the server wiring needs beyond the database.
type Config struct {
	JWTSecret       string
	TokenTTL        time.Duration
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
	Classify        classify.Config
	Media           storage.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	issuer      *auth.TokenIssuer
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger

	authH         *handler.AuthHandler
	userH         *handler.UserHandler
	eventH        *handler.EventHandler
	rewardH       *handler.RewardHandler
	reportH       *handler.ReportHandler
	applicationH  *handler.ApplicationHandler
	galleryH      *handler.GalleryHandler
	notificationH *handler.NotificationHandler
	pushH         *handler.PushHandler
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	userStore := store.NewUserStore(db)
	eventStore := store.NewEventStore(db)
	rewardStore := store.NewRewardStore(db)
	transactionStore := store.NewTransactionStore(db)
	reportStore := store.NewReportStore(db)
	notificationStore := store.NewNotificationStore(db)
	applicationStore := store.NewApplicationStore(db)
	galleryStore := store.NewGalleryStore(db)
	pushStore := store.NewPushStore(db)

	eco := economy.NewService(db, logger.With("component", "economy"))
	classifier := classify.NewService(cfg.Classify)
	media := storage.NewMedia(cfg.Media)

	var sender *push.Sender
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		sender = push.NewSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
	}
	notifier := push.NewNotifier(sender, pushStore, notificationStore, hub, logger.With("component", "push"))

	return &Server{
		db:          db,
		hub:         hub,
		issuer:      issuer,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,

		authH:         handler.NewAuthHandler(userStore, issuer, logger.With("component", "auth")),
		userH:         handler.NewUserHandler(userStore, transactionStore, logger.With("component", "user")),
		eventH:        handler.NewEventHandler(eventStore, eco, hub, logger.With("component", "event")),
		rewardH:       handler.NewRewardHandler(rewardStore, eco, notifier, logger.With("component", "reward")),
		reportH:       handler.NewReportHandler(reportStore, eco, classifier, media, notifier, hub, logger.With("component", "report")),
		applicationH:  handler.NewApplicationHandler(applicationStore, userStore, notifier, logger.With("component", "application")),
		galleryH:      handler.NewGalleryHandler(galleryStore, media, logger.With("component", "gallery")),
		notificationH: handler.NewNotificationHandler(notificationStore, logger.With("component", "notification")),
		pushH:         handler.NewPushHandler(pushStore, sender, logger.With("component", "push_handler")),
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("POST /api/register", s.rateLimited(s.authH.Register))
	mux.HandleFunc("POST /api/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("GET /api/rewards", s.rewardH.Catalog)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("GET /api/leaderboard", s.userH.Leaderboard)
	mux.HandleFunc("GET /api/gallery", s.galleryH.List)

	requireAuth := middleware.RequireAuth(s.issuer)
	authed := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}
	can := func(perm auth.Permission, h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequirePermission(perm)(h))
	}

	// Authenticated routes
	mux.Handle("GET /api/me", authed(s.userH.Me))
	mux.Handle("GET /api/me/transactions", authed(s.userH.MyTransactions))
	mux.Handle("GET /api/me/redemptions", authed(s.rewardH.MyRedemptions))
	mux.Handle("GET /api/me/notifications", authed(s.notificationH.List))
	mux.Handle("POST /api/me/notifications/{id}/read", authed(s.notificationH.MarkRead))
	mux.Handle("POST /api/events/{id}/join", authed(s.eventH.Join))
	mux.Handle("POST /api/rewards/{id}/redeem", authed(s.rewardH.Redeem))
	mux.Handle("POST /api/reports", can(auth.PermSubmitReport, s.reportH.Create))
	mux.Handle("GET /api/reports", authed(s.reportH.List))
	mux.Handle("GET /api/reports/{id}", authed(s.reportH.Get))
	mux.Handle("GET /api/reports/{id}/photo", authed(s.reportH.Photo))
	mux.Handle("POST /api/applications", authed(s.applicationH.Apply))
	mux.Handle("POST /api/gallery", authed(s.galleryH.Submit))
	mux.Handle("GET /api/gallery/{id}/photo", authed(s.galleryH.Photo))
	mux.Handle("GET /api/push/vapid-key", authed(s.pushH.VAPIDKey))
	mux.Handle("POST /api/push/subscribe", authed(s.pushH.Subscribe))
	mux.Handle("DELETE /api/push/subscriptions/{id}", authed(s.pushH.Unsubscribe))
	mux.Handle("GET /ws", authed(ws.Handle(s.hub, s.logger.With("component", "websocket"))))

	// Worker routes
	mux.Handle("POST /api/reports/{id}/claim", can(auth.PermClaimReport, s.reportH.Claim))
	mux.Handle("POST /api/reports/{id}/complete", can(auth.PermCompleteReport, s.reportH.Complete))

	// Admin routes
	mux.Handle("GET /api/admin/users", can(auth.PermListUsers, s.userH.List))
	mux.Handle("POST /api/admin/events", can(auth.PermManageEvents, s.eventH.Create))
	mux.Handle("PUT /api/admin/events/{id}/status", can(auth.PermManageEvents, s.eventH.UpdateStatus))
	mux.Handle("DELETE /api/admin/events/{id}", can(auth.PermManageEvents, s.eventH.Delete))
	mux.Handle("GET /api/admin/rewards", can(auth.PermManageRewards, s.rewardH.ListItems))
	mux.Handle("POST /api/admin/rewards", can(auth.PermManageRewards, s.rewardH.CreateItem))
	mux.Handle("PUT /api/admin/rewards/{id}", can(auth.PermManageRewards, s.rewardH.UpdateItem))
	mux.Handle("DELETE /api/admin/rewards/{id}", can(auth.PermManageRewards, s.rewardH.DeactivateItem))
	mux.Handle("GET /api/admin/redemptions", can(auth.PermReviewRedemptions, s.rewardH.ListRedemptions))
	mux.Handle("POST /api/admin/redemptions/{id}/approve", can(auth.PermReviewRedemptions, s.rewardH.Approve))
	mux.Handle("POST /api/admin/redemptions/{id}/deliver", can(auth.PermReviewRedemptions, s.rewardH.Deliver))
	mux.Handle("POST /api/admin/redemptions/{id}/reject", can(auth.PermReviewRedemptions, s.rewardH.Reject))
	mux.Handle("GET /api/admin/applications", can(auth.PermReviewApplications, s.applicationH.List))
	mux.Handle("POST /api/admin/applications/{id}/approve", can(auth.PermReviewApplications, s.applicationH.Approve))
	mux.Handle("POST /api/admin/applications/{id}/reject", can(auth.PermReviewApplications, s.applicationH.Reject))
	mux.Handle("GET /api/admin/gallery", can(auth.PermReviewGallery, s.galleryH.ListPending))
	mux.Handle("POST /api/admin/gallery/{id}/review", can(auth.PermReviewGallery, s.galleryH.Review))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
