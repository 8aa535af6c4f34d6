package player

import (
	"errors"
	"fmt"
	"image"
	"math"

	"slimearena/assets"
)

// DefaultMoveSpeed 每次移动的步长
const DefaultMoveSpeed = 1.0

// ErrInvalidSpeed 步长必须为正的有限数
var ErrInvalidSpeed = errors.New("player: move speed must be positive and finite")

// ImageSet 按逻辑路径解析图片，*assets.Set 即满足
type ImageSet interface {
	Image(path string) (image.Image, bool)
}

// SpawnRequest 交给投射物子系统的生成参数
type SpawnRequest struct {
	OriginX float64 `json:"x"`
	OriginY float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// Visual 提供给场景的只读渲染信息
type Visual struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	State  VisualState
	Asset  string
	Image  image.Image
}

// Player 玩家控制的史莱姆实体；单线程驱动，无内部锁
type Player struct {
	x, y          float64
	width, height float64
	moveSpeed     float64
	facing        Direction
	state         VisualState

	images [len(allStates)]image.Image
}

type Option func(*Player)

// WithMoveSpeed 覆盖默认步长
func WithMoveSpeed(v float64) Option {
	return func(p *Player) { p.moveSpeed = v }
}

// New 创建实体；六张图片任一缺失即返回 assets.ErrInvalidAsset。宽高不做校验
func New(images ImageSet, x, y, width, height float64, opts ...Option) (*Player, error) {
	p := &Player{
		x:         x,
		y:         y,
		width:     width,
		height:    height,
		moveSpeed: DefaultMoveSpeed,
		facing:    DirRight,
		state:     Idle,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.moveSpeed <= 0 || math.IsNaN(p.moveSpeed) || math.IsInf(p.moveSpeed, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, p.moveSpeed)
	}
	if images == nil {
		return nil, fmt.Errorf("player: %w: no image set", assets.ErrInvalidAsset)
	}
	for _, s := range allStates {
		img, ok := images.Image(s.AssetPath())
		if !ok || img == nil {
			return nil, fmt.Errorf("player: %w: %s", assets.ErrInvalidAsset, s.AssetPath())
		}
		p.images[s] = img
	}
	return p, nil
}

func (p *Player) MoveUp() { p.Move(DirUp) }
func (p *Player) MoveDown() { p.Move(DirDown) }
func (p *Player) MoveLeft() { p.Move(DirLeft) }
func (p *Player) MoveRight() { p.Move(DirRight) }

// Move 沿方向移动一步，同时更新动画与朝向
func (p *Player) Move(d Direction) {
	switch d {
	case DirUp:
		p.y -= p.moveSpeed
	case DirDown:
		p.y += p.moveSpeed
	case DirLeft:
		p.x -= p.moveSpeed
	default:
		d = DirRight
		p.x += p.moveSpeed
	}
	p.facing = d
	p.state = d.movingState()
}

// Stop 回到待机动画，不改变位置与朝向
func (p *Player) Stop() {
	p.state = Idle
}

// Shoot 切换为射击动画，返回以实体中心为起点、沿当前朝向的生成请求
func (p *Player) Shoot() SpawnRequest {
	p.state = Shooting
	return SpawnRequest{
		OriginX: p.x + p.width/2,
		OriginY: p.y + p.height/2,
		Heading: p.facing.Degrees(),
	}
}

func (p *Player) Visual() Visual {
	return Visual{
		X:      p.x,
		Y:      p.y,
		Width:  p.width,
		Height: p.height,
		State:  p.state,
		Asset:  p.state.AssetPath(),
		Image:  p.images[p.state],
	}
}

func (p *Player) Position() (x, y float64) { return p.x, p.y }
func (p *Player) Size() (width, height float64) { return p.width, p.height }
func (p *Player) Facing() Direction { return p.facing }
func (p *Player) State() VisualState { return p.state }
func (p *Player) MoveSpeed() float64 { return p.moveSpeed }
