package projectile

import (
	"math"

	"github.com/google/uuid"

	"slimearena/player"
)

// Projectile 由玩家射击生成的直线飞行物
type Projectile struct {
	ID      uuid.UUID
	OwnerID string
	X       float64
	Y       float64
	Heading float64 // 度，0 向右，90 向下
	Speed   float64 // 每次 Step 前进的距离
	Age     int
	TTL     int // 存活的 Step 次数
}

// FromSpawn 按生成请求创建投射物
func FromSpawn(owner string, req player.SpawnRequest, speed float64, ttl int) *Projectile {
	return &Projectile{
		ID:      uuid.New(),
		OwnerID: owner,
		X:       req.OriginX,
		Y:       req.OriginY,
		Heading: req.Heading,
		Speed:   speed,
		TTL:     ttl,
	}
}

// Step 沿朝向前进一步；四个基本方向直接加减，避免三角函数误差
func (p *Projectile) Step() {
	switch p.Heading {
	case 0:
		p.X += p.Speed
	case 90:
		p.Y += p.Speed
	case 180:
		p.X -= p.Speed
	case 270:
		p.Y -= p.Speed
	default:
		rad := p.Heading * math.Pi / 180
		p.X += p.Speed * math.Cos(rad)
		p.Y += p.Speed * math.Sin(rad)
	}
	p.Age++
}

func (p *Projectile) Expired() bool {
	return p.Age >= p.TTL
}

// Pool 按生成顺序保存存活的投射物
type Pool struct {
	items []*Projectile
}

func (p *Pool) Add(pr *Projectile) {
	p.items = append(p.items, pr)
}

// Step 推进全部投射物并移除过期项，返回移除数量
func (p *Pool) Step() int {
	kept := p.items[:0]
	for _, pr := range p.items {
		pr.Step()
		if !pr.Expired() {
			kept = append(kept, pr)
		}
	}
	removed := len(p.items) - len(kept)
	for i := len(kept); i < len(p.items); i++ {
		p.items[i] = nil
	}
	p.items = kept
	return removed
}

// Snapshot 返回值拷贝，调用方修改不影响池内状态
func (p *Pool) Snapshot() []Projectile {
	out := make([]Projectile, len(p.items))
	for i, pr := range p.items {
		out[i] = *pr
	}
	return out
}

func (p *Pool) Len() int { return len(p.items) }
