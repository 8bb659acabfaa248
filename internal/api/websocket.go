package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"snowbrawl/internal/sim"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// SnapshotBroadcastInterval is how often spectators receive state
	SnapshotBroadcastInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("websocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP and the agent
// it controls, if any.
type wsClient struct {
	conn    *websocket.Conn
	ip      string
	agentID string
}

// WebSocketHub manages all WebSocket connections with connection limiting.
// Spectators receive periodic snapshots; clients that join as a controlled
// agent can also send intent frames (move/jump/throw) inbound.
type WebSocketHub struct {
	engine EngineInterface

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a new hub with connection limiting.
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		engine:     engine,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run starts the hub event loop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()

			count := len(h.clients)
			log.Printf("spectator connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

			count := len(h.clients)
			log.Printf("spectator disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				err := conn.WriteMessage(websocket.TextMessage, message)
				if err != nil {
					conn.Close()
					h.mu.RUnlock()
					h.mu.Lock()
					if client, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(client.ip)
						delete(h.clients, conn)
					}
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
			IncrementWSMessages()
		}
	}
}

// Broadcast sends an event envelope to all connected clients.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the latest snapshot to spectators on a fixed
// interval, independent of the simulation tick rate.
func (h *WebSocketHub) StartBroadcastLoop() {
	ticker := time.NewTicker(SnapshotBroadcastInterval)

	go func() {
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}

			snap := h.engine.GetSnapshot()
			h.Broadcast("sim:state", snap)

			UpdateAgentCount(len(snap.Agents))
			UpdateProjectileCount(len(snap.Projectiles))
			UpdatePickupCount(len(snap.Pickups))
		}
	}()
}

// intentFrame is the inbound command envelope from a controlling client.
type intentFrame struct {
	Event   string   `json:"event"`
	AgentID string   `json:"agentId"`
	Dir     sim.Vec3 `json:"dir"`
}

// HandleWebSocket handles incoming WebSocket connections.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("websocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("websocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	h.register <- client

	go func() {
		defer func() {
			h.unregister <- conn
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var frame intentFrame
			if err := json.Unmarshal(message, &frame); err != nil {
				continue
			}
			h.handleIntent(client, frame)
		}
	}()
}

// handleIntent routes an inbound command frame. A client may only drive
// the agent it bound itself to.
func (h *WebSocketHub) handleIntent(client *wsClient, frame intentFrame) {
	switch frame.Event {
	case "bind":
		// Claim control of a controlled agent by id.
		if a := h.engine.GetAgent(frame.AgentID); a != nil && a.Controlled {
			client.agentID = frame.AgentID
		}
	case "move":
		if client.agentID != "" {
			h.engine.MoveIntent(client.agentID, frame.Dir)
		}
	case "jump":
		if client.agentID != "" {
			h.engine.JumpIntent(client.agentID)
		}
	case "throw":
		if client.agentID != "" {
			h.engine.ThrowIntent(client.agentID)
		}
	}
}
