// Package term 在终端中驱动单个本地玩家：方向键移动，空格射击，"." 待机，q/Esc 退出。
package term

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"slimearena/player"
	"slimearena/projectile"
)

// Command 按键解析结果
type Command int

const (
	CmdNone Command = iota
	CmdMove
	CmdStop
	CmdShoot
	CmdQuit
)

const frameInterval = 50 * time.Millisecond

// Canvas 绘制所需的最小屏幕接口，tcell.Screen 满足
type Canvas interface {
	Clear()
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

var glyphs = map[player.VisualState]rune{
	player.Idle:        'o',
	player.MovingUp:    '^',
	player.MovingDown:  'v',
	player.MovingLeft:  '<',
	player.MovingRight: '>',
	player.Shooting:    '*',
}

// GlyphFor 状态对应的字符
func GlyphFor(s player.VisualState) rune {
	if g, ok := glyphs[s]; ok {
		return g
	}
	return '?'
}

// CommandForKey 将按键映射为命令
func CommandForKey(ev *tcell.EventKey) (Command, player.Direction) {
	switch ev.Key() {
	case tcell.KeyUp:
		return CmdMove, player.DirUp
	case tcell.KeyDown:
		return CmdMove, player.DirDown
	case tcell.KeyLeft:
		return CmdMove, player.DirLeft
	case tcell.KeyRight:
		return CmdMove, player.DirRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit, player.DirRight
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return CmdShoot, player.DirRight
		case '.':
			return CmdStop, player.DirRight
		case 'q':
			return CmdQuit, player.DirRight
		}
	}
	return CmdNone, player.DirRight
}

// Scene 本地场景：持有一个玩家实体与其投射物
type Scene struct {
	Player      *player.Player
	Projectiles projectile.Pool

	projectileSpeed float64
	projectileTTL   int
	log             *zap.SugaredLogger
}

func NewScene(p *player.Player, projectileSpeed float64, projectileTTL int, log *zap.SugaredLogger) *Scene {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scene{Player: p, projectileSpeed: projectileSpeed, projectileTTL: projectileTTL, log: log}
}

// Apply 执行一条命令，返回 false 表示退出
func (s *Scene) Apply(cmd Command, d player.Direction) bool {
	switch cmd {
	case CmdMove:
		s.Player.Move(d)
	case CmdStop:
		s.Player.Stop()
	case CmdShoot:
		req := s.Player.Shoot()
		s.Projectiles.Add(projectile.FromSpawn("local", req, s.projectileSpeed, s.projectileTTL))
		s.log.Debugw("local shot", "x", req.OriginX, "y", req.OriginY, "heading", req.Heading)
	case CmdQuit:
		return false
	}
	return true
}

// Draw 以屏幕中心为原点，1 单位 = 1 字符格
func (s *Scene) Draw(c Canvas) {
	c.Clear()
	w, h := c.Size()
	cx, cy := w/2, h/2

	for _, pr := range s.Projectiles.Snapshot() {
		c.SetContent(cx+cell(pr.X), cy+cell(pr.Y), 'x', nil, tcell.StyleDefault.Foreground(tcell.ColorRed))
	}
	v := s.Player.Visual()
	c.SetContent(cx+cell(v.X), cy+cell(v.Y), GlyphFor(v.State), nil, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	c.Show()
}

func cell(v float64) int {
	return int(math.Floor(v))
}

// pumpEvents 把 poll 得到的事件转发到 events；poll 返回 nil 时关闭 events，done 关闭后立即退出
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// Run 接管终端直到用户退出
func Run(screen tcell.Screen, s *Scene) error {
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(screen.PollEvent, events, done)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	s.Draw(screen)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				cmd, d := CommandForKey(ev)
				if !s.Apply(cmd, d) {
					s.log.Info("terminal scene closed")
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			s.Projectiles.Step()
		}
		s.Draw(screen)
	}
}
