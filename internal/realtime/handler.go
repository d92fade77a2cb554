package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the request and attaches the session to the
// hub. The caller resolves userID from the JWT before handing off, so
// every session on the hub is authenticated.
func HandleWebSocket(c echo.Context, hub *Hub, userID uint) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}
	hub.Register(client)

	// The relay is one-directional. The read loop exists only to
	// observe disconnects; inbound frames are discarded.
	go func() {
		defer hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
