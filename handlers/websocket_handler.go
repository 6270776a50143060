package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rematch-liga/league-system/middleware"
	"github.com/rematch-liga/league-system/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub       *realtime.Hub
	jwtSecret []byte
}

func NewWebSocketHandler(hub *realtime.Hub, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: []byte(jwtSecret),
	}
}

// ServeWs upgrades the connection and registers it for the authenticated
// user. Browsers cannot set headers on websocket requests, so the token
// arrives as a query parameter.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ParseToken(r.URL.Query().Get("token"), h.jwtSecret)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := middleware.UserIDFromClaims(claims)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection for user %d: %v", userID, err)
		return
	}

	client := &realtime.Client{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
