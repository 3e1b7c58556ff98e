// Package gateway owns the websocket edge: it upgrades connections, decodes
// client envelopes and routes them to the lobby and table actors.
package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"speedwurdz/internal/codec"
	"speedwurdz/internal/lobby"
	"speedwurdz/internal/table"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents one websocket client.
type Connection struct {
	ID       string
	Username string // set after join-lobby
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time
}

// Gateway manages websocket connections and per-user routing.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[string]*Connection // username -> connection
	lobby       *lobby.Lobby
	serverSeq   uint64
}

func New(lby *lobby.Lobby) *Gateway {
	g := &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[string]*Connection),
		lobby:       lby,
	}
	lby.BindSender(g.sendToUser)
	return g
}

// HandleWebSocket upgrades the request and starts the connection pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	c := &Connection{
		ID:       uuid.NewString(),
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}

	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s, total: %d", c.ID, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var env codec.ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[Gateway] Failed to decode message: %v", err)
		c.sendError("invalid message format")
		return
	}

	switch env.Event {
	case codec.ClientJoinLobby:
		c.handleJoinLobby(&env)
	case codec.ClientCreateTable:
		c.handleCreateTable(&env)
	case codec.ClientJoinTable:
		c.tableEvent(&env, table.EventJoin)
	case codec.ClientLeaveTable:
		c.tableEvent(&env, table.EventLeave)
	case codec.ClientStartGame:
		c.tableEvent(&env, table.EventStartGame)
	case codec.ClientStartGameplay:
		c.tableEvent(&env, table.EventStartGameplay)
	case codec.ClientGameAction:
		c.handleGameAction(&env)
	case codec.ClientResignGame:
		c.tableEvent(&env, table.EventResign)
	case codec.ClientRequestGameState:
		c.tableEvent(&env, table.EventRequestState)
	default:
		log.Printf("[Gateway] Unknown event %q from %s", env.Event, c.ID)
		c.sendError("unknown event")
	}
}

func (c *Connection) handleJoinLobby(env *codec.ClientEnvelope) {
	var req codec.JoinLobbyRequest
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			c.sendError("invalid message format")
			return
		}
	}

	if err := c.Gateway.registerUser(c, req.Username); err != nil {
		c.sendError(err.Error())
		return
	}
	log.Printf("[Gateway] Connection %s is now %q", c.ID, req.Username)
}

func (c *Connection) handleCreateTable(env *codec.ClientEnvelope) {
	if c.Username == "" {
		c.sendError("you must join the lobby first")
		return
	}
	var req codec.CreateTableRequest
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			c.sendError("invalid message format")
			return
		}
	}

	if _, err := c.Gateway.lobby.CreateTable(c.Username, req); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) handleGameAction(env *codec.ClientEnvelope) {
	t, ok := c.resolveTable(env)
	if !ok {
		return
	}
	var req codec.GameActionRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		c.sendError("invalid message format")
		return
	}

	err := t.Do(table.Event{Type: table.EventAction, Username: c.Username, Action: &req})
	if err != nil {
		c.sendError(err.Error())
	}
}

// tableEvent forwards a simple roster/lifecycle event to the table actor and
// reports any failure back to this client.
func (c *Connection) tableEvent(env *codec.ClientEnvelope, eventType table.EventType) {
	t, ok := c.resolveTable(env)
	if !ok {
		return
	}
	if err := t.Do(table.Event{Type: eventType, Username: c.Username}); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) resolveTable(env *codec.ClientEnvelope) (*table.Table, bool) {
	if c.Username == "" {
		c.sendError("you must join the lobby first")
		return nil, false
	}
	t := c.Gateway.lobby.GetTable(env.TableID)
	if t == nil {
		c.sendError("table not found")
		return nil, false
	}
	return t, true
}

func (c *Connection) sendError(msg string) {
	seq := atomic.AddUint64(&c.Gateway.serverSeq, 1)
	data, err := codec.Encode(codec.EventError, "", seq, codec.ErrorPayload{Message: msg})
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// registerUser binds the username to this connection, then joins the lobby.
// Binding first means the lobby-joined welcome reaches this client.
func (g *Gateway) registerUser(c *Connection, username string) error {
	g.mu.Lock()
	if _, taken := g.userConns[username]; taken && username != "" {
		g.mu.Unlock()
		return errTaken
	}
	if username != "" {
		g.userConns[username] = c
	}
	g.mu.Unlock()

	if err := g.lobby.Join(username); err != nil {
		g.mu.Lock()
		if g.userConns[username] == c {
			delete(g.userConns, username)
		}
		g.mu.Unlock()
		return err
	}

	c.Username = username
	return nil
}

var errTaken = errors.New("username already taken")

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	username := c.Username
	if username != "" && g.userConns[username] == c {
		delete(g.userConns, username)
	}
	total := len(g.connections)
	g.mu.Unlock()

	if username != "" {
		g.lobby.Leave(username)
	}
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, total)
}

// sendToUser queues a message for a specific user, dropping it if the client
// cannot keep up.
func (g *Gateway) sendToUser(username string, data []byte) {
	g.mu.RLock()
	c := g.userConns[username]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}
