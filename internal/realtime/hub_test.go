package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub, userID uint) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub, userID)
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(payload)
}

func TestHubDeliverReachesEverySession(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := newHubServer(t, hub, 42)

	first := dial(t, srv)
	second := dial(t, srv)

	require.Eventually(t, func() bool {
		return hub.SessionCount(42) == 2
	}, 2*time.Second, 10*time.Millisecond)

	hub.Deliver(42, []byte(`{"event":"NEW_NOTIFICATION"}`))

	require.Equal(t, `{"event":"NEW_NOTIFICATION"}`, readFrame(t, first))
	require.Equal(t, `{"event":"NEW_NOTIFICATION"}`, readFrame(t, second))
}

func TestHubDeliverIgnoresOtherUsers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := newHubServer(t, hub, 42)

	conn := dial(t, srv)
	require.Eventually(t, func() bool {
		return hub.SessionCount(42) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Deliver(7, []byte(`wrong recipient`))
	hub.Deliver(42, []byte(`right recipient`))

	require.Equal(t, "right recipient", readFrame(t, conn))
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	srv := newHubServer(t, hub, 42)

	conn := dial(t, srv)
	require.Eventually(t, func() bool {
		return hub.SessionCount(42) == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.SessionCount(42) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Delivering to a user with no sessions must be a no-op.
	hub.Deliver(42, []byte(`nobody home`))
}

func TestHubDeliverToUnknownUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Deliver(999, []byte(`x`))
	require.Zero(t, hub.SessionCount(999))
}
