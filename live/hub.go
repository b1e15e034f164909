package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/photobooth-app/utils"
)

// Event types
const (
	EventReminderSent  = "reminder_sent"
	EventPhotoUploaded = "photo_uploaded"
	EventPhotoDeleted  = "photo_deleted"
	EventRoomClosed    = "room_closed"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer adalah jumlah event yang boleh antre per client sebelum client dianggap lambat.
	sendBuffer = 32
)

type Message struct {
	Event  string      `json:"event"`
	RoomID uint        `json:"room_id"`
	Data   interface{} `json:"data"`
}

// client punya antrean sendiri; hanya writePump yang menulis ke conn.
type client struct {
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("Error sending event to user %d: %v", c.userID, err)
			return
		}
	}

	// Antrean ditutup oleh hub
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub menampung koneksi websocket per room.
type Hub struct {
	rooms map[uint]map[*websocket.Conn]*client
	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*websocket.Conn]*client),
	}
}

// Register -> menambahkan connection ke room dan menjalankan writer-nya
func (h *Hub) Register(roomID uint, conn *websocket.Conn, userID uint) {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.addLocked(roomID, c)
	h.mutex.Unlock()

	go c.writePump()
}

func (h *Hub) addLocked(roomID uint, c *client) {
	clients, ok := h.rooms[roomID]
	if !ok {
		clients = make(map[*websocket.Conn]*client)
		h.rooms[roomID] = clients
	}
	clients[c.conn] = c
}

// Unregister -> melepaskan connection; writer menutup conn setelah antreannya habis
func (h *Hub) Unregister(roomID uint, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(roomID, conn)
}

func (h *Hub) removeLocked(roomID uint, conn *websocket.Conn) {
	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	c, ok := clients[conn]
	if !ok {
		return
	}
	delete(clients, conn)
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
	close(c.send)
}

func (h *Hub) ClientCount(roomID uint) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.rooms[roomID])
}

// Publish memasukkan event ke antrean semua client di room tanpa menunggu jaringan.
// Client yang antreannya penuh dilepas.
func (h *Hub) Publish(roomID uint, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, RoomID: roomID, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s event: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients := h.rooms[roomID]
	if len(clients) == 0 {
		return
	}
	utils.InfoLogger.Debugf("Broadcasting %s to %d clients in room %d", event, len(clients), roomID)

	for conn, c := range clients {
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.Printf("Client of user %d in room %d is too slow, dropping it", c.userID, roomID)
			h.removeLocked(roomID, conn)
		}
	}
}

// CloseRoom memberi tahu client bahwa room ditutup lalu memutus semua koneksi.
func (h *Hub) CloseRoom(roomID uint) {
	h.Publish(roomID, EventRoomClosed, nil)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.rooms[roomID] {
		h.removeLocked(roomID, conn)
	}
}
