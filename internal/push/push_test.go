package push

import (
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/wastenexus/wastenexus/internal/database"
	"github.com/wastenexus/wastenexus/internal/store"
	"github.com/wastenexus/wastenexus/internal/websocket"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// Public key is a base64url-encoded uncompressed P-256 point, 65 bytes.
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	// Private key is a base64url-encoded P-256 scalar, 32 bytes.
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestNotifierWithoutPushConfigured(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	user, err := us.Create("alice@example.com", "Alice", "hash", "citizen")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	notifs := store.NewNotificationStore(db)
	hub := websocket.NewHub(logger)

	// No VAPID keys configured: in-app delivery only.
	n := NewNotifier(nil, store.NewPushStore(db), notifs, hub, logger)
	n.Notify(user.ID, "Redemption approved", "Your Bus Pass is ready", "/rewards")

	list, err := notifs.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if list[0].Title != "Redemption approved" {
		t.Errorf("title = %q, want Redemption approved", list[0].Title)
	}
}
