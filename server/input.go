package server

import (
	"fmt"
	"strings"

	"slimearena/player"
)

// Command 客户端意图
type Command int

const (
	CmdMove Command = iota
	CmdStop
	CmdShoot
)

func (c Command) String() string {
	switch c {
	case CmdMove:
		return "move"
	case CmdStop:
		return "stop"
	case CmdShoot:
		return "shoot"
	}
	return "unknown"
}

// Input 客户端输入（意图），由服务端在 Tick 中解释并驱动实体
type Input struct {
	PlayerID  PlayerID
	Command   Command
	Direction player.Direction // 仅 CmdMove 使用
	Seq       int64            // 客户端本地序列号，用于去重；0 表示不检查
}

// 入站输入的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","command":"up","seq":3} / {"type":"stop"} / {"type":"shoot"}
type InputMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
}

// ParseInput 将入站消息转换为 Input
func ParseInput(pid PlayerID, im InputMessage) (Input, error) {
	in := Input{PlayerID: pid, Seq: im.Seq}
	switch strings.ToLower(im.Type) {
	case "move":
		d, ok := player.ParseDirection(strings.ToLower(im.Command))
		if !ok {
			return in, fmt.Errorf("unknown move command %q", im.Command)
		}
		in.Command = CmdMove
		in.Direction = d
	case "stop":
		in.Command = CmdStop
	case "shoot":
		in.Command = CmdShoot
	default:
		return in, fmt.Errorf("unknown input type %q", im.Type)
	}
	return in, nil
}
