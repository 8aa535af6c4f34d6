package player

// VisualState 当前显示哪张图片，完全由最近一次操作决定
type VisualState int

const (
	Idle VisualState = iota
	MovingUp
	MovingDown
	MovingLeft
	MovingRight
	Shooting
)

var allStates = [...]VisualState{Idle, MovingUp, MovingDown, MovingLeft, MovingRight, Shooting}

var stateNames = [...]string{
	Idle:        "idle",
	MovingUp:    "move_up",
	MovingDown:  "move_down",
	MovingLeft:  "move_left",
	MovingRight: "move_right",
	Shooting:    "shoot",
}

func (s VisualState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// AssetPath 状态对应的逻辑图片路径
func (s VisualState) AssetPath() string {
	return "graphics/slime_" + s.String() + ".png"
}

// States 全部六种状态
func States() []VisualState {
	return append([]VisualState(nil), allStates[:]...)
}
