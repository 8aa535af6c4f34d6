package server

import (
	"encoding/json"
	"net/http"
)

// roomTuning /admin/config 的载荷；指针字段为 nil 表示不修改
type roomTuning struct {
	Step               *float64 `json:"step,omitempty"`
	ProjectileSpeed    *float64 `json:"projectileSpeed,omitempty"`
	ProjectileTTL      *int     `json:"projectileTTL,omitempty"`
	ShootCooldownTicks *int     `json:"shootCooldownTicks,omitempty"`
	MaxInputsPerTick   *int     `json:"maxInputsPerTick,omitempty"`
	SimulateDelayMinMs *int     `json:"simulateDelayMinMs,omitempty"`
	SimulateDelayMaxMs *int     `json:"simulateDelayMaxMs,omitempty"`
	SimulateDropProb   *float64 `json:"simulateDropProb,omitempty"`
}

func (t roomTuning) apply(c *RoomConfig) {
	if t.Step != nil {
		c.Step = *t.Step
	}
	if t.ProjectileSpeed != nil {
		c.ProjectileSpeed = *t.ProjectileSpeed
	}
	if t.ProjectileTTL != nil {
		c.ProjectileTTL = *t.ProjectileTTL
	}
	if t.ShootCooldownTicks != nil {
		c.ShootCooldownTicks = *t.ShootCooldownTicks
	}
	if t.MaxInputsPerTick != nil {
		c.MaxInputsPerTick = *t.MaxInputsPerTick
	}
	if t.SimulateDelayMinMs != nil {
		c.SimulateDelayMinMs = *t.SimulateDelayMinMs
	}
	if t.SimulateDelayMaxMs != nil {
		c.SimulateDelayMaxMs = *t.SimulateDelayMaxMs
	}
	if t.SimulateDropProb != nil {
		c.SimulateDropProb = *t.SimulateDropProb
	}
}

func roomParam(r *http.Request) string {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = "room-1"
	}
	return roomID
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新基本规则）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room := m.GetOrCreateRoom(roomID)

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(room.Config())
	case http.MethodPost:
		var body roomTuning
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		cfg, err := room.UpdateConfig(body.apply)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		room.log.Infof("config updated: room=%s step=%.2f maxInputsPerTick=%d cooldown=%d projectile=[%.2f,%d] delay=[%d,%d] drop=%.2f",
			roomID, cfg.Step, cfg.MaxInputsPerTick, cfg.ShootCooldownTicks, cfg.ProjectileSpeed, cfg.ProjectileTTL,
			cfg.SimulateDelayMinMs, cfg.SimulateDelayMaxMs, cfg.SimulateDropProb)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"room":    roomID,
		"tick":    room.TickSeq(),
		"metrics": room.Metrics().Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// Routes 注册全部 HTTP 接口
func (m *RoomManager) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}
