package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminhandler "github.com/keshavpotewar/SkillSwap/internal/admin/handler"
	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/internal/message"
	messagehandler "github.com/keshavpotewar/SkillSwap/internal/message/handler"
	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/notify/ws"
	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
	"github.com/keshavpotewar/SkillSwap/internal/rating"
	ratinghandler "github.com/keshavpotewar/SkillSwap/internal/rating/handler"
	"github.com/keshavpotewar/SkillSwap/internal/swap"
	swaphandler "github.com/keshavpotewar/SkillSwap/internal/swap/handler"
)

const testSigningKey = "router-test-signing-key"

func mintToken(t *testing.T, userID, name, role string) string {
	t.Helper()
	claims := identity.Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

// newTestServer assembles the whole service over in-memory stores, exactly
// as cmd/server does, and serves it through the full middleware chain.
func newTestServer(t *testing.T) (*httptest.Server, *notify.Registry, notify.Dispatcher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	users := identity.NewInMemoryStore()
	users.Seed(identity.User{ID: "alice", Name: "Alice", IsPublic: true})
	users.Seed(identity.User{ID: "bob", Name: "Bob", IsPublic: true})

	registry := notify.NewRegistry()
	dispatcher := notify.NewLocalDispatcher(registry, logger, m)

	swapService := swap.NewService(swap.NewInMemoryStore(), users, dispatcher, logger, m)
	messageService := message.NewService(message.NewInMemoryStore(), users, dispatcher, logger, m, 20)
	ratingService := rating.NewService(users, logger)

	router := NewRouter(Deps{
		Logger:       logger,
		JWTValidator: identity.NewJWTService(testSigningKey),
		Swaps:        swaphandler.New(swapService, logger),
		Messages:     messagehandler.New(messageService, logger),
		Ratings:      ratinghandler.New(ratingService, logger),
		Admin:        adminhandler.New(dispatcher, logger),
		WS:           ws.NewHandler(registry, logger, m),
		Health:       func() map[string]string { return map[string]string{"status": "ok"} },
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, registry, dispatcher
}

func wsURL(server *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
}

func TestRouter_WebsocketUpgradeThroughMiddleware(t *testing.T) {
	server, registry, dispatcher := newTestServer(t)
	token := mintToken(t, "alice", "Alice", "user")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return registry.Len() == 1 },
		time.Second, 10*time.Millisecond)

	dispatcher.Publish(context.Background(), "alice", notify.EventNewMessage,
		map[string]string{"message": "through the whole stack"})

	var env notify.Envelope
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, notify.EventNewMessage, env.Event)

	payload, ok := env.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "through the whole stack", payload["message"])
}

func TestRouter_WebsocketRejectsMissingToken(t *testing.T) {
	server, registry, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, registry.Len())
}

func TestRouter_HealthzOpen(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
