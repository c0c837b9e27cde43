package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newWSServer(t *testing.T) (*httptest.Server, *Gateway) {
	t.Helper()
	_, _, gw := newTestEnv(20*time.Millisecond, 20*time.Millisecond)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWS))
	t.Cleanup(srv.Close)
	return srv, gw
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func wsWaitFor(t *testing.T, c *websocket.Conn, what string, pred func(frame) bool) frame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	_ = c.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, b, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("read while waiting for %s: %v", what, err)
		}
		var f frame
		if err := json.Unmarshal(b, &f); err != nil {
			t.Fatalf("bad frame %q: %v", b, err)
		}
		if pred(f) {
			return f
		}
	}
	t.Fatalf("timed out waiting for %s", what)
	return frame{}
}

func sendJoin(t *testing.T, c *websocket.Conn, nickname string) frame {
	t.Helper()
	if err := c.WriteJSON(map[string]string{"type": MsgJoin, "nickname": nickname}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	return wsWaitFor(t, c, "init", func(f frame) bool { return f.Type == MsgInit })
}

func TestWSJoinReceivesInit(t *testing.T) {
	srv, _ := newWSServer(t)
	c := dialWS(t, srv)
	init := sendJoin(t, c, "Ann")
	if init.PlayerID == 0 || init.RoomID == 0 {
		t.Fatalf("init = %+v", init)
	}
}

func TestWSMalformedFrameKeepsSessionAlive(t *testing.T) {
	srv, _ := newWSServer(t)
	c := dialWS(t, srv)
	if err := c.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := c.WriteJSON(map[string]string{"type": "mystery"}); err != nil {
		t.Fatalf("write unknown type: %v", err)
	}
	init := sendJoin(t, c, "Ann")
	if init.PlayerID == 0 {
		t.Fatalf("connection should survive malformed frames, init = %+v", init)
	}
}

func TestWSTwoPlayersReachPlaying(t *testing.T) {
	srv, _ := newWSServer(t)
	a := dialWS(t, srv)
	b := dialWS(t, srv)
	ia := sendJoin(t, a, "Ann")
	ib := sendJoin(t, b, "Bo")
	if ia.RoomID != ib.RoomID {
		t.Fatalf("players put in different rooms: %d vs %d", ia.RoomID, ib.RoomID)
	}
	wsWaitFor(t, a, "starting", func(f frame) bool { return f.GameState == PhaseStarting })
	wsWaitFor(t, a, "playing", func(f frame) bool { return f.GameState == PhasePlaying })
	wsWaitFor(t, b, "playing", func(f frame) bool { return f.GameState == PhasePlaying })
}

func TestWSGroundedDiveIsSilentlyIgnored(t *testing.T) {
	srv, _ := newWSServer(t)
	a := dialWS(t, srv)
	b := dialWS(t, srv)
	ia := sendJoin(t, a, "Ann")
	sendJoin(t, b, "Bo")
	wsWaitFor(t, a, "playing", func(f frame) bool { return f.GameState == PhasePlaying })

	if err := a.WriteJSON(map[string]string{"type": MsgAction, "action": ActionDive}); err != nil {
		t.Fatalf("write action: %v", err)
	}

	// No error frame exists in the protocol; the next snapshots must show
	// the player still grounded.
	key := strconv.Itoa(ia.PlayerID)
	for i := 0; i < 5; i++ {
		f := wsWaitFor(t, a, "snapshot", func(f frame) bool { return f.Type == MsgGameState })
		p := f.Players[key]
		if p == nil {
			t.Fatalf("player %s missing from snapshot", key)
		}
		if p.IsDiving || p.IsJumping {
			t.Fatalf("grounded dive changed state: %+v", p)
		}
	}
}

func TestWSDisconnectSendsPlayerLeft(t *testing.T) {
	srv, _ := newWSServer(t)
	a := dialWS(t, srv)
	b := dialWS(t, srv)
	sendJoin(t, a, "Ann")
	sendJoin(t, b, "Bo")
	wsWaitFor(t, b, "playing", func(f frame) bool { return f.GameState == PhasePlaying })

	_ = a.Close()
	wsWaitFor(t, b, "playerLeft", func(f frame) bool { return f.Type == MsgPlayerLeft })
}
