package server

import (
	"sort"
	"strings"
	"sync"
)

// Registry owns the live rooms and the player-to-connection mapping. It is
// built once in main and handed to the gateway and scheduler; nothing in the
// process holds it as a global.
//
// Lock order is registry before room, everywhere.
type Registry struct {
	mu           sync.Mutex
	rooms        map[int]*Room
	conns        map[int]Conn
	nextPlayerID int
	nextRoomID   int
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:        make(map[int]*Room),
		conns:        make(map[int]Conn),
		nextPlayerID: 1,
		nextRoomID:   1,
	}
}

// Join allocates the next player id and records the connection. It never
// fails; an empty or whitespace nickname gets the default.
func (g *Registry) Join(nickname string, conn Conn) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextPlayerID
	g.nextPlayerID++
	p := NewPlayer(id, strings.TrimSpace(nickname))
	g.conns[id] = conn
	return p
}

// AssignRoom seats the player in the first room holding exactly one
// occupant, or a fresh room when none exists. Since joins are serialized by
// the registry lock, at most one under-full room exists at any time.
func (g *Registry) AssignRoom(p *Player) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	var room *Room
	for _, r := range g.rooms {
		if r.playerCount() == 1 {
			room = r
			break
		}
	}
	if room == nil {
		room = NewRoom(g.nextRoomID)
		g.nextRoomID++
		g.rooms[room.ID] = room
	}
	room.addPlayer(p)
	return room
}

// Room looks up a live room by id; nil when it has been destroyed.
func (g *Registry) Room(roomID int) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[roomID]
}

// RoomOf finds the room currently holding the player, or nil.
func (g *Registry) RoomOf(playerID int) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.rooms {
		if r.hasPlayer(playerID) {
			return r
		}
	}
	return nil
}

// Remove drops the player from its room and the connection map atomically
// with respect to concurrent room lookups. An emptied room is destroyed. It
// returns the affected room (nil when the player was never seated) and the
// remaining occupant's connection so the caller can send playerLeft.
func (g *Registry) Remove(playerID int) (*Room, Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, playerID)
	var room *Room
	for _, r := range g.rooms {
		if r.hasPlayer(playerID) {
			room = r
			break
		}
	}
	if room == nil {
		return nil, nil
	}
	room.removePlayer(playerID)
	var remaining Conn
	if other := room.anyPlayer(); other != nil {
		remaining = g.conns[other.ID]
	} else {
		delete(g.rooms, room.ID)
	}
	return room, remaining
}

// connsOf resolves live connections for the given player ids. Dead entries
// are simply skipped; a closed socket is handled by the disconnect path.
func (g *Registry) connsOf(playerIDs []int) []Conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Conn, 0, len(playerIDs))
	for _, id := range playerIDs {
		if c, ok := g.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Rooms returns the live rooms ordered by id, for the admin listing.
func (g *Registry) Rooms() []*Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
