package server

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"
)

// Match phases. A room's phase is playing only while it holds two players.
const (
	PhaseWaiting  = "waiting"
	PhaseStarting = "starting"
	PhasePlaying  = "playing"
	PhaseRoundEnd = "round_end"
)

// Room pairs two combatants with their shared round state. The authoritative
// state lives in memory; mu is the single mutual-exclusion boundary between
// the tick loop, delayed phase callbacks, and message-driven actions.
type Room struct {
	ID int

	mu          sync.Mutex
	Players     map[int]*Player
	Phase       string
	RoundWinner *int
}

func NewRoom(id int) *Room {
	return &Room{
		ID:      id,
		Players: make(map[int]*Player),
		Phase:   PhaseWaiting,
	}
}

// addPlayer seats the player in the next free slot. Arrival order decides
// the side: first occupant left, second right.
func (r *Room) addPlayer(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.placeAtSlot(len(r.Players))
	r.Players[p.ID] = p
}

// removePlayer unseats the player. A surviving room drops back to waiting
// so the next join can start a fresh match against the remaining occupant.
func (r *Room) removePlayer(playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Players, playerID)
	if len(r.Players) < 2 {
		r.Phase = PhaseWaiting
		r.RoundWinner = nil
	}
}

func (r *Room) playerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

func (r *Room) hasPlayer(playerID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.Players[playerID]
	return ok
}

// anyPlayer returns an arbitrary occupant, or nil for an empty room.
func (r *Room) anyPlayer() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		return p
	}
	return nil
}

// orderedPlayersLocked returns the occupants by ascending id, which is also
// their arrival order. Callers hold r.mu.
func (r *Room) orderedPlayersLocked() []*Player {
	ps := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps
}

// playerIDsLocked returns the occupant ids. Callers hold r.mu.
func (r *Room) playerIDsLocked() []int {
	ids := make([]int, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	return ids
}

// snapshotLocked serializes the full room state for broadcast. Callers hold
// r.mu; marshaling under the lock keeps the snapshot consistent with the
// tick that produced it.
func (r *Room) snapshotLocked() []byte {
	players := make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		players[strconv.Itoa(id)] = p
	}
	b, _ := json.Marshal(gameStateMessage{
		Type:        MsgGameState,
		Players:     players,
		GameState:   r.Phase,
		RoundWinner: r.RoundWinner,
	})
	return b
}

// info summarizes the room for the admin listing.
func (r *Room) info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	scores := make(map[string]int, len(r.Players))
	for id, p := range r.Players {
		scores[strconv.Itoa(id)] = p.Score
	}
	return RoomInfo{
		ID:      r.ID,
		Phase:   r.Phase,
		Players: len(r.Players),
		Scores:  scores,
	}
}
