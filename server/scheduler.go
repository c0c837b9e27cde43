package server

import (
	"sync"
	"time"
)

// Scheduler drives one fixed-rate simulation loop per active room, plus the
// delayed transitions around it (pre-round countdown, post-round pause).
// Loops and callbacks are keyed by room id and re-fetch the room before
// touching it, so anything firing after the room died resolves to a no-op.
type Scheduler struct {
	registry   *Registry
	metrics    *Metrics
	countdown  time.Duration
	resetDelay time.Duration

	mu    sync.Mutex
	loops map[int]chan struct{}
}

func NewScheduler(registry *Registry, metrics *Metrics, countdown, resetDelay time.Duration) *Scheduler {
	return &Scheduler{
		registry:   registry,
		metrics:    metrics,
		countdown:  countdown,
		resetDelay: resetDelay,
		loops:      make(map[int]chan struct{}),
	}
}

// StartMatch begins the starting countdown for a freshly filled room: both
// players are frozen into their slots, the starting snapshot goes out
// immediately, and after the countdown the room flips to playing and its
// tick loop spins up.
func (s *Scheduler) StartMatch(room *Room) {
	room.mu.Lock()
	if len(room.Players) != 2 || room.Phase != PhaseWaiting {
		room.mu.Unlock()
		return
	}
	for slot, p := range room.orderedPlayersLocked() {
		p.placeAtSlot(slot)
	}
	room.Phase = PhaseStarting
	room.mu.Unlock()
	s.broadcast(room)
	Log.Infof("room %d starting: countdown %s", room.ID, s.countdown)

	roomID := room.ID
	time.AfterFunc(s.countdown, func() {
		r := s.registry.Room(roomID)
		if r == nil {
			return
		}
		r.mu.Lock()
		if r.Phase != PhaseStarting || len(r.Players) != 2 {
			r.mu.Unlock()
			return
		}
		r.Phase = PhasePlaying
		r.mu.Unlock()
		s.broadcast(r)
		s.startLoop(roomID)
	})
}

// startLoop launches the room's tick goroutine, replacing any loop left over
// from a previous match in the same room.
func (s *Scheduler) startLoop(roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.loops[roomID]; ok {
		close(old)
	}
	stop := make(chan struct{})
	s.loops[roomID] = stop
	go s.run(roomID, stop)
}

// stopIfCurrent removes the loop only when it is still the registered one,
// so a loop winding itself down cannot kill a replacement that already took
// its slot.
func (s *Scheduler) stopIfCurrent(roomID int, stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.loops[roomID]; ok && cur == stop {
		close(cur)
		delete(s.loops, roomID)
	}
}

// StopLoop tears down the room's tick loop. Idempotent: safe to call when
// no loop is running for that room.
func (s *Scheduler) StopLoop(roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.loops[roomID]; ok {
		close(stop)
		delete(s.loops, roomID)
	}
}

func (s *Scheduler) run(roomID int, stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick(roomID) {
				s.stopIfCurrent(roomID, stop)
				return
			}
		}
	}
}

// tick advances the room one simulation step and broadcasts the snapshot
// unconditionally, so render-side interpolation has continuous data. It
// reports false when the room is gone or no longer has two players, which
// ends the loop; that covers the race between a disconnect and a pending
// tick.
func (s *Scheduler) tick(roomID int) bool {
	room := s.registry.Room(roomID)
	if room == nil {
		return false
	}
	room.mu.Lock()
	if len(room.Players) != 2 {
		room.mu.Unlock()
		return false
	}
	roundEnded := UpdateRound(room, time.Now())
	ids := room.playerIDsLocked()
	b := room.snapshotLocked()
	room.mu.Unlock()

	s.metrics.IncTick()
	s.send(ids, b)
	if roundEnded {
		s.metrics.IncRound()
		s.scheduleReset(roomID)
	}
	return true
}

// scheduleReset arms the one-shot post-round pause. The callback re-fetches
// the room and checks its phase: a disconnect in the interim makes it a
// no-op rather than a fault.
func (s *Scheduler) scheduleReset(roomID int) {
	time.AfterFunc(s.resetDelay, func() {
		room := s.registry.Room(roomID)
		if room == nil {
			return
		}
		room.mu.Lock()
		if room.Phase != PhaseRoundEnd || len(room.Players) != 2 {
			room.mu.Unlock()
			return
		}
		ResetRound(room)
		room.mu.Unlock()
		s.broadcast(room)
	})
}

// broadcast snapshots the room under its lock and fans the frame out to its
// occupants' connections.
func (s *Scheduler) broadcast(room *Room) {
	room.mu.Lock()
	ids := room.playerIDsLocked()
	b := room.snapshotLocked()
	room.mu.Unlock()
	s.send(ids, b)
}

// send is fire-and-forget per recipient: a slow or dead socket drops the
// frame instead of delaying the tick that produced it.
func (s *Scheduler) send(playerIDs []int, frame []byte) {
	for _, c := range s.registry.connsOf(playerIDs) {
		if !c.Enqueue(frame) {
			s.metrics.IncBroadcastDropped()
		}
	}
}
