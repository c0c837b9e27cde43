package server

import "sync/atomic"

// Metrics tracks process-wide counters for monitoring and debugging,
// exposed as JSON at /metrics.
type Metrics struct {
	Ticks             int64 // simulation ticks run across all rooms
	Joins             int64 // successful joins
	Disconnects       int64 // sessions closed
	ActionsApplied    int64 // jump/dive intents that took effect
	ActionsIgnored    int64 // illegal intents silently dropped
	RoundsCompleted   int64 // round_end transitions
	BroadcastsDropped int64 // frames dropped on full send queues
}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) IncTick()             { atomic.AddInt64(&m.Ticks, 1) }
func (m *Metrics) IncJoin()             { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncDisconnect()       { atomic.AddInt64(&m.Disconnects, 1) }
func (m *Metrics) IncActionApplied()    { atomic.AddInt64(&m.ActionsApplied, 1) }
func (m *Metrics) IncActionIgnored()    { atomic.AddInt64(&m.ActionsIgnored, 1) }
func (m *Metrics) IncRound()            { atomic.AddInt64(&m.RoundsCompleted, 1) }
func (m *Metrics) IncBroadcastDropped() { atomic.AddInt64(&m.BroadcastsDropped, 1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"ticks":              atomic.LoadInt64(&m.Ticks),
		"joins":              atomic.LoadInt64(&m.Joins),
		"disconnects":        atomic.LoadInt64(&m.Disconnects),
		"actions_applied":    atomic.LoadInt64(&m.ActionsApplied),
		"actions_ignored":    atomic.LoadInt64(&m.ActionsIgnored),
		"rounds_completed":   atomic.LoadInt64(&m.RoundsCompleted),
		"broadcasts_dropped": atomic.LoadInt64(&m.BroadcastsDropped),
	}
}
