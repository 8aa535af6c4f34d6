package player

// Direction 朝向，零值为向右；每个方向携带固定角度（度，屏幕坐标系 Y 轴向下）
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

// Degrees 右=0 下=90 左=180 上=270
func (d Direction) Degrees() float64 {
	switch d {
	case DirDown:
		return 90
	case DirLeft:
		return 180
	case DirUp:
		return 270
	default:
		return 0
	}
}

func (d Direction) String() string {
	switch d {
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	default:
		return "right"
	}
}

// ParseDirection 解析 "up"/"down"/"left"/"right"
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	}
	return DirRight, false
}

// movingState 方向对应的移动动画
func (d Direction) movingState() VisualState {
	switch d {
	case DirDown:
		return MovingDown
	case DirLeft:
		return MovingLeft
	case DirUp:
		return MovingUp
	default:
		return MovingRight
	}
}
