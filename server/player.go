package server

import (
	"fmt"
	"time"
)

// Player is the authoritative state of one combatant. The JSON tags mirror
// exactly what the browser renderer reads, so the struct doubles as the wire
// snapshot. The y axis grows downward.
type Player struct {
	ID          int     `json:"id"`
	Nickname    string  `json:"nickname"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	VelocityX   float64 `json:"velocityX"`
	VelocityY   float64 `json:"velocityY"`
	IsJumping   bool    `json:"isJumping"`
	IsDiving    bool    `json:"isDiving"`
	Score       int     `json:"score"`
	FacingRight bool    `json:"facingRight"`
	AnimFrame   int     `json:"animFrame"`

	lastAnimUpdate time.Time
}

// NewPlayer builds a grounded player with no room slot assigned yet; the slot
// is fixed by arrival order when the registry places it in a room.
func NewPlayer(id int, nickname string) *Player {
	if nickname == "" {
		nickname = fmt.Sprintf("Player %d", id)
	}
	return &Player{
		ID:             id,
		Nickname:       nickname,
		Width:          PlayerWidth,
		Height:         PlayerHeight,
		Y:              groundY,
		lastAnimUpdate: time.Now(),
	}
}

// grounded reports whether the player is standing on the floor. Exactly one
// of grounded / jumping / diving holds at any time.
func (p *Player) grounded() bool {
	return !p.IsJumping && !p.IsDiving
}

// placeAtSlot moves the player to its canonical start-of-round position.
// Slot 0 is the left side facing right, slot 1 the right side facing left,
// so the two combatants always start facing each other.
func (p *Player) placeAtSlot(slot int) {
	if slot == 0 {
		p.X = leftSlotX
		p.FacingRight = true
	} else {
		p.X = rightSlotX
		p.FacingRight = false
	}
	p.Y = groundY
	p.VelocityX = 0
	p.VelocityY = 0
	p.IsJumping = false
	p.IsDiving = false
	p.AnimFrame = 0
}
