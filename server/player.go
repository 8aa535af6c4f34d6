package server

import (
	"slimearena/player"
)

// PlayerID 表示玩家唯一标识
type PlayerID string

// Sender 向客户端发送消息的一端；ClientConn 为 WebSocket 实现
type Sender interface {
	Enqueue(b []byte)
	Close()
}

// PlayerState 为广播给客户端的轻量状态
type PlayerState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	State  string  `json:"state"`
	Image  string  `json:"image"`
	Facing float64 `json:"facing"`
}

// Player 房间内的玩家（服务端权威状态），实体只在 Tick 协程中修改
type Player struct {
	ID     PlayerID
	Entity *player.Player
	Conn   Sender

	lastSeq      int64
	lastShotTick int64
	hasShot      bool
}

func (p *Player) state() PlayerState {
	v := p.Entity.Visual()
	return PlayerState{
		ID:     string(p.ID),
		X:      v.X,
		Y:      v.Y,
		W:      v.Width,
		H:      v.Height,
		State:  v.State.String(),
		Image:  v.Asset,
		Facing: p.Entity.Facing().Degrees(),
	}
}
