package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub mantiene las conexiones de notificaciones agrupadas por usuario.
type Hub struct {
	Clients map[string]map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[string]map[*websocket.Conn]*Client),
}

// NotificationEvent es el mensaje que se empuja al frontend cuando llega
// un comentario o cambia el contador de no leídos.
type NotificationEvent struct {
	Type        string `json:"type"`
	CommentID   string `json:"comment_id,omitempty"`
	CommentType string `json:"comment_type,omitempty"`
	Subject     string `json:"subject,omitempty"`
	UnreadCount int64  `json:"unread_count"`
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[userID]; !ok {
		h.Clients[userID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[userID][conn] = client

	// El handler conserva el bucle de lectura; aquí solo se bombea la
	// escritura.
	go h.writePump(userID, conn)
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, userID)
		}
	}
}

// BroadcastToUser envía el mensaje a todas las conexiones de un usuario.
func (h *Hub) BroadcastToUser(userID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// BroadcastToUsers reparte el mismo evento entre varios destinatarios.
func (h *Hub) BroadcastToUsers(userIDs []string, data []byte) {
	for _, id := range userIDs {
		h.BroadcastToUser(id, data)
	}
}

// NotifyNewComment avisa a los destinatarios de un comentario recién creado.
func NotifyNewComment(userIDs []string, commentID, commentType, subject string, unread int64) {
	event := NotificationEvent{
		Type:        "new_comment",
		CommentID:   commentID,
		CommentType: commentType,
		Subject:     subject,
		UnreadCount: unread,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("error al serializar la notificación:", err)
		return
	}
	H.BroadcastToUsers(userIDs, data)
}

// SendBadgeUpdate empuja el contador de no leídos a un usuario.
func SendBadgeUpdate(userID string, unread int64) {
	event := NotificationEvent{
		Type:        "unread_count",
		UnreadCount: unread,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("error al serializar la notificación:", err)
		return
	}
	H.BroadcastToUser(userID, data)
}

// GetStats expone el número de usuarios y conexiones activas.
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	connections := 0
	for _, clients := range h.Clients {
		connections += len(clients)
	}
	return map[string]int{
		"users":       len(h.Clients),
		"connections": connections,
	}
}

func (h *Hub) writePump(userID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[userID][conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}

	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
