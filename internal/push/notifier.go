package push

import (
	"errors"
	"log/slog"

	"github.com/wastenexus/wastenexus/internal/store"
	"github.com/wastenexus/wastenexus/internal/websocket"
)

// Notifier fans one user-facing notification out to every channel: the in-app
// notifications table, the user's live websocket connections, and each of
// their web push subscriptions. Delivery is best effort; a failed push never
// fails the triggering request.
type Notifier struct {
	sender        *Sender
	subscriptions *store.PushStore
	notifications *store.NotificationStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewNotifier(sender *Sender, subs *store.PushStore, notifs *store.NotificationStore, hub *websocket.Hub, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:        sender,
		subscriptions: subs,
		notifications: notifs,
		hub:           hub,
		logger:        logger,
	}
}

// Notify records and delivers a notification to one user.
func (n *Notifier) Notify(userID int64, title, body, url string) {
	notif, err := n.notifications.Create(userID, title, body)
	if err != nil {
		n.logger.Error("create notification", "error", err, "user_id", userID)
		return
	}

	if n.hub != nil {
		n.hub.SendToUser(userID, websocket.NewMessage("notification", "created", notif.ID, map[string]any{
			"title": title,
		}))
	}

	if n.sender == nil {
		// Push is optional; without VAPID keys only in-app delivery runs.
		return
	}

	subs, err := n.subscriptions.ListByUser(userID)
	if err != nil {
		n.logger.Error("list push subscriptions", "error", err, "user_id", userID)
		return
	}

	payload := Payload{Title: title, Body: body, URL: url}
	for _, sub := range subs {
		if err := n.sender.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := n.subscriptions.DeleteByEndpoint(sub.Endpoint); err != nil {
					n.logger.Error("delete expired subscription", "error", err)
				}
				continue
			}
			n.logger.Warn("send push", "error", err, "user_id", userID)
		}
	}
}
