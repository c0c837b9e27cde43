package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	pongWait  = 60 * time.Second
	readLimit = 1 << 20 // 1MB
	sendQueue = 64
)

// Conn is the send side of a client session. ClientConn implements it over a
// WebSocket; tests substitute fakes.
type Conn interface {
	// Enqueue hands a frame to the writer without blocking; it reports
	// false when the frame was dropped (queue full or connection closed).
	Enqueue(frame []byte) bool
	Close()
}

// ClientConn wraps a WebSocket with a buffered send queue drained by a
// dedicated write pump, so broadcasting never blocks a room's tick.
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, sendQueue),
		done: make(chan struct{}),
	}
}

// Enqueue queues a frame for the write pump. A full queue means the client
// is not draining; the frame is dropped so the tick that produced it is
// never delayed.
func (c *ClientConn) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close shuts down the connection; safe to call more than once.
func (c *ClientConn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writePump is the only writer on the socket.
func (c *ClientConn) writePump() {
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Demo deployment: allow all origins.
		return true
	},
}

// Gateway terminates WebSocket sessions and dispatches the join/action
// protocol into the registry and rules engine.
type Gateway struct {
	registry  *Registry
	scheduler *Scheduler
	metrics   *Metrics
}

func NewGateway(registry *Registry, scheduler *Scheduler, metrics *Metrics) *Gateway {
	return &Gateway{registry: registry, scheduler: scheduler, metrics: metrics}
}

// HandleWS upgrades the connection and runs its session. No room is
// assigned until the client sends a join frame.
func (gw *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}
	client := NewClientConn(ws)
	go client.writePump()
	go gw.readPump(ws, client)
}

// readPump decodes inbound frames and dispatches them. Malformed or
// unexpected frames are skipped, never fatal to the session; the read loop
// ends only when the socket does, which triggers the disconnect path.
func (gw *Gateway) readPump(ws *websocket.Conn, client *ClientConn) {
	playerID := 0
	defer func() {
		client.Close()
		if playerID != 0 {
			gw.disconnect(playerID)
		}
	}()

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case MsgJoin:
			if playerID != 0 {
				continue // already joined
			}
			playerID = gw.handleJoin(msg.Nickname, client)
		case MsgAction:
			if playerID == 0 {
				continue
			}
			gw.handleAction(playerID, msg.Action)
		}
	}
}

// handleJoin allocates the player, seats it, replies init, and kicks off the
// match when the room just filled.
func (gw *Gateway) handleJoin(nickname string, client Conn) int {
	p := gw.registry.Join(nickname, client)
	room := gw.registry.AssignRoom(p)
	gw.metrics.IncJoin()

	b, _ := json.Marshal(initMessage{Type: MsgInit, PlayerID: p.ID, RoomID: room.ID})
	client.Enqueue(b)
	Log.Infof("player %d (%s) joined room %d", p.ID, p.Nickname, room.ID)

	if room.playerCount() == 2 {
		gw.scheduler.StartMatch(room)
	}
	return p.ID
}

// handleAction applies a jump/dive intent under the room lock. Actions land
// between ticks; the lock is what keeps the two mutation paths from racing.
func (gw *Gateway) handleAction(playerID int, action string) {
	room := gw.registry.RoomOf(playerID)
	if room == nil {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.Phase != PhasePlaying {
		return
	}
	p, ok := room.Players[playerID]
	if !ok {
		return
	}
	if ApplyAction(p, action) {
		gw.metrics.IncActionApplied()
	} else {
		gw.metrics.IncActionIgnored()
	}
}

// disconnect removes the player, notifies the remaining occupant, and tears
// down the room's loop when the room died with it.
func (gw *Gateway) disconnect(playerID int) {
	room, remaining := gw.registry.Remove(playerID)
	gw.metrics.IncDisconnect()
	Log.Infof("player %d disconnected", playerID)
	if room == nil {
		return
	}
	if remaining != nil {
		b, _ := json.Marshal(playerLeftMessage{Type: MsgPlayerLeft})
		remaining.Enqueue(b)
	}
	if room.playerCount() == 0 {
		gw.scheduler.StopLoop(room.ID)
	}
}
