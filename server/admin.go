package server

import (
	"encoding/json"
	"net/http"
)

// RoomInfo summarizes one live room for the admin listing.
type RoomInfo struct {
	ID      int            `json:"id"`
	Phase   string         `json:"phase"`
	Players int            `json:"players"`
	Scores  map[string]int `json:"scores"`
}

// HandleAdminRooms lists the live rooms with phase, occupancy and scores.
// GET /admin/rooms
func (gw *Gateway) HandleAdminRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rooms := gw.registry.Rooms()
	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.info())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleMetrics outputs the process counters.
// GET /metrics
func (gw *Gateway) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(gw.metrics.Snapshot())
}
