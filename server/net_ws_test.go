package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"slimearena/assets"
)

func newTestServer(t *testing.T, log *zap.SugaredLogger) (*RoomManager, *httptest.Server) {
	t.Helper()
	set, err := assets.Default()
	if err != nil {
		t.Fatal(err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := NewRoomManager(DefaultRoomConfig(), set).WithLogger(log)
	mux := http.NewServeMux()
	m.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		m.Close()
	})
	return m, srv
}

func observeLogs() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func waitForLog(t *testing.T, logs *observer.ObservedLogs, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for logs.FilterMessage(msg).Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no %q log line", msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readUntil(t *testing.T, ws *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, b, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if match(m) {
			return m
		}
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	log, logs := observeLogs()
	_, srv := newTestServer(t, log)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=arena&player=alice"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	welcome := readUntil(t, ws, func(m map[string]any) bool { return m["type"] == "welcome" })
	if welcome["room"] != "arena" {
		t.Errorf("welcome = %v", welcome)
	}

	send := func(v any) {
		b, _ := json.Marshal(v)
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			t.Fatal(err)
		}
	}
	send(InputMessage{Type: "move", Command: "left", Seq: 1})
	send(InputMessage{Type: "shoot", Seq: 2})
	_ = ws.WriteMessage(websocket.TextMessage, []byte("{not json"))

	state := readUntil(t, ws, func(m map[string]any) bool {
		prs, _ := m["projectiles"].([]any)
		return m["type"] == "state" && len(prs) > 0
	})
	players := state["players"].([]any)
	ps := players[0].(map[string]any)
	if ps["x"].(float64) != 49 || ps["facing"].(float64) != 180 {
		t.Errorf("player = %v, want x=49 facing=180", ps)
	}
	pr := state["projectiles"].([]any)[0].(map[string]any)
	if pr["heading"].(float64) != 180 || pr["owner"] != "alice" {
		t.Errorf("projectile = %v", pr)
	}
	if logs.FilterMessage("player joined").Len() != 1 {
		t.Error("join was not logged")
	}

	// 读泵退出后房间移除玩家，日志写入管理器注入的日志器
	ws.Close()
	waitForLog(t, logs, "player left")
}

func TestWebSocketMissingPlayer(t *testing.T) {
	_, srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/ws?room=arena")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAdminConfig(t *testing.T) {
	log, logs := observeLogs()
	m, srv := newTestServer(t, log)
	u := srv.URL + "/admin/config?room=tuning"

	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	var got RoomConfig
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got != DefaultRoomConfig() {
		t.Errorf("GET config = %+v", got)
	}

	post := func(body string) int {
		resp, err := http.Post(u, "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if code := post(`{"step":2,"shootCooldownTicks":1}`); code != http.StatusOK {
		t.Fatalf("POST status = %d", code)
	}
	room, _ := m.Room("tuning")
	if c := room.Config(); c.Step != 2 || c.ShootCooldownTicks != 1 || c.ProjectileTTL != DefaultRoomConfig().ProjectileTTL {
		t.Errorf("config after POST = %+v", c)
	}
	if logs.FilterMessageSnippet("config updated: room=tuning").Len() != 1 {
		t.Error("config update was not logged")
	}
	if code := post(`{"step":-1}`); code != http.StatusBadRequest {
		t.Errorf("invalid step status = %d, want 400", code)
	}
	if code := post(`{`); code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", code)
	}

	req, _ := http.NewRequest(http.MethodPut, u, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PUT status = %d, want 405", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m, srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/metrics?room=nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown room status = %d, want 404", resp.StatusCode)
	}

	m.GetOrCreateRoom("room-1")
	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload["room"] != "room-1" {
		t.Errorf("payload = %v", payload)
	}
	metrics, ok := payload["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("metrics = %v", payload["metrics"])
	}
	if _, ok := metrics["shots_fired"]; !ok {
		t.Error("shots_fired missing from metrics")
	}
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
