package server

import "time"

// World and physics tuning. Positions are in client pixels; the y axis grows
// downward, so an upward impulse is negative.
const (
	GameWidth    = 800.0
	GameHeight   = 600.0
	PlayerWidth  = 100.0
	PlayerHeight = 140.0

	Gravity   = 0.5
	JumpForce = -15.0
	DiveSpeed = 10.0

	leftSlotX  = 160.0
	rightSlotX = 560.0
	groundY    = GameHeight - PlayerHeight

	// TicksPerSecond is the simulation rate of each room's loop.
	TicksPerSecond = 60

	animFrames   = 4
	animInterval = 150 * time.Millisecond
)

var tickInterval = time.Second / TicksPerSecond

// Player intents accepted over the wire.
const (
	ActionJump = "jump"
	ActionDive = "dive"
)

// ApplyAction interprets a client intent against the player's current motion
// state. Illegal actions (jump while airborne, dive while grounded or while
// already diving) are ignored, not errors; the return value reports whether
// the action took effect.
func ApplyAction(p *Player, action string) bool {
	switch action {
	case ActionJump:
		if !p.grounded() {
			return false
		}
		p.IsJumping = true
		p.VelocityY = JumpForce
		return true
	case ActionDive:
		if !p.IsJumping || p.IsDiving {
			return false
		}
		p.IsDiving = true
		p.VelocityY = DiveSpeed
		if p.FacingRight {
			p.VelocityX = DiveSpeed
		} else {
			p.VelocityX = -DiveSpeed
		}
		return true
	}
	return false
}

// integrate advances one tick of kinematics for an airborne player. Landing
// on the ground line is the only way back to the grounded state.
func integrate(p *Player) {
	if p.grounded() {
		return
	}
	p.VelocityY += Gravity
	p.Y += p.VelocityY
	p.X += p.VelocityX
	if p.Y >= groundY {
		p.Y = groundY
		p.VelocityY = 0
		p.VelocityX = 0
		p.IsJumping = false
		p.IsDiving = false
	}
}

// animate advances the idle animation cycle. Airborne players hold their
// frame; the renderer picks jump/dive sprites from the motion flags.
func animate(p *Player, now time.Time) {
	if !p.grounded() {
		return
	}
	if now.Sub(p.lastAnimUpdate) > animInterval {
		p.AnimFrame = (p.AnimFrame + 1) % animFrames
		p.lastAnimUpdate = now
	}
}

// collide reports strict AABB overlap on both axes.
func collide(a, b *Player) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}

// UpdateRound runs one simulation tick: animation, integration, and
// collision resolution. It is a no-op unless the room holds exactly two
// players and is in the playing phase. The return value reports whether this
// tick ended the round, so the caller knows to schedule the delayed reset.
// Callers hold r.mu.
func UpdateRound(r *Room, now time.Time) bool {
	if len(r.Players) != 2 || r.Phase != PhasePlaying {
		return false
	}
	ps := r.orderedPlayersLocked()
	p1, p2 := ps[0], ps[1]

	animate(p1, now)
	animate(p2, now)
	integrate(p1)
	integrate(p2)

	if !collide(p1, p2) {
		return false
	}
	switch {
	case p1.IsDiving && !p2.IsDiving:
		endRound(r, p1)
	case p2.IsDiving && !p1.IsDiving:
		endRound(r, p2)
	case p1.IsDiving && p2.IsDiving:
		// Both dives connected on the same tick: the higher diver takes
		// the round (smaller y, since the axis grows downward).
		if p1.Y < p2.Y {
			endRound(r, p1)
		} else {
			endRound(r, p2)
		}
	default:
		// Bodies may overlap without scoring, e.g. two jumpers.
		return false
	}
	return true
}

func endRound(r *Room, winner *Player) {
	id := winner.ID
	r.RoundWinner = &id
	r.Phase = PhaseRoundEnd
	winner.Score++
}

// ResetRound returns both players to their starting slots and orientation
// and resumes play. Scores are untouched. Callers hold r.mu.
func ResetRound(r *Room) {
	for slot, p := range r.orderedPlayersLocked() {
		p.placeAtSlot(slot)
	}
	r.RoundWinner = nil
	r.Phase = PhasePlaying
}
