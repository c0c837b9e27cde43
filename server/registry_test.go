package server

import "testing"

func TestJoinAssignsMonotonicIDsAndDefaults(t *testing.T) {
	g := NewRegistry()
	p1 := g.Join("Ann", newFakeConn())
	p2 := g.Join("  ", newFakeConn())
	if p1.ID != 1 || p2.ID != 2 {
		t.Fatalf("ids = %d,%d, want 1,2", p1.ID, p2.ID)
	}
	if p1.Nickname != "Ann" {
		t.Fatalf("nickname = %q", p1.Nickname)
	}
	if p2.Nickname != "Player 2" {
		t.Fatalf("blank nickname should default, got %q", p2.Nickname)
	}
}

func TestFirstFitMatchmaking(t *testing.T) {
	g := NewRegistry()
	var rooms []*Room
	for i := 0; i < 5; i++ {
		p := g.Join("", newFakeConn())
		rooms = append(rooms, g.AssignRoom(p))
	}

	if rooms[0] != rooms[1] {
		t.Fatalf("players 1 and 2 should share a room")
	}
	if rooms[2] != rooms[3] {
		t.Fatalf("players 3 and 4 should share a room")
	}
	if rooms[4] == rooms[0] || rooms[4] == rooms[2] {
		t.Fatalf("player 5 should get a fresh room")
	}

	underFull := 0
	for _, r := range g.Rooms() {
		n := r.playerCount()
		if n > 2 {
			t.Fatalf("room %d holds %d players", r.ID, n)
		}
		if n == 1 {
			underFull++
		}
	}
	if underFull != 1 {
		t.Fatalf("under-full rooms = %d, want 1", underFull)
	}
}

func TestArrivalOrderSetsSlots(t *testing.T) {
	g := NewRegistry()
	p1 := g.Join("Ann", newFakeConn())
	g.AssignRoom(p1)
	p2 := g.Join("Bo", newFakeConn())
	g.AssignRoom(p2)

	if p1.X != leftSlotX || !p1.FacingRight {
		t.Fatalf("first arrival should face right from the left slot: %+v", p1)
	}
	if p2.X != rightSlotX || p2.FacingRight {
		t.Fatalf("second arrival should face left from the right slot: %+v", p2)
	}
}

func TestRoomOf(t *testing.T) {
	g := NewRegistry()
	p := g.Join("Ann", newFakeConn())
	room := g.AssignRoom(p)

	if got := g.RoomOf(p.ID); got != room {
		t.Fatalf("RoomOf returned %v, want %v", got, room)
	}
	if got := g.RoomOf(42); got != nil {
		t.Fatalf("RoomOf for unknown player = %v, want nil", got)
	}
}

func TestRemoveDestroysEmptyRoom(t *testing.T) {
	g := NewRegistry()
	c1, c2 := newFakeConn(), newFakeConn()
	p1 := g.Join("Ann", c1)
	room := g.AssignRoom(p1)
	p2 := g.Join("Bo", c2)
	g.AssignRoom(p2)
	room.mu.Lock()
	room.Phase = PhasePlaying
	room.mu.Unlock()

	got, remaining := g.Remove(p1.ID)
	if got != room {
		t.Fatalf("Remove returned wrong room")
	}
	if remaining != c2 {
		t.Fatalf("Remove should hand back the other occupant's connection")
	}
	if g.Room(room.ID) == nil {
		t.Fatalf("room with one occupant left must survive")
	}
	room.mu.Lock()
	phase := room.Phase
	room.mu.Unlock()
	if phase != PhaseWaiting {
		t.Fatalf("surviving room phase = %q, want waiting", phase)
	}

	got, remaining = g.Remove(p2.ID)
	if got != room || remaining != nil {
		t.Fatalf("last removal: room=%v remaining=%v", got, remaining)
	}
	if g.Room(room.ID) != nil {
		t.Fatalf("empty room must be destroyed")
	}

	if r, c := g.Remove(p2.ID); r != nil || c != nil {
		t.Fatalf("removing an unknown player must be a no-op")
	}
}
