package player

import (
	"errors"
	"image"
	"math"
	"testing"

	"slimearena/assets"
)

func newTestPlayer(t *testing.T, x, y, w, h float64, opts ...Option) *Player {
	t.Helper()
	set, err := assets.Default()
	if err != nil {
		t.Fatalf("assets.Default(): %v", err)
	}
	p, err := New(set, x, y, w, h, opts...)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	return p
}

func TestNewDefaults(t *testing.T) {
	p := newTestPlayer(t, 3, 4, 32, 24)
	if x, y := p.Position(); x != 3 || y != 4 {
		t.Errorf("Position() = (%v, %v), want (3, 4)", x, y)
	}
	if w, h := p.Size(); w != 32 || h != 24 {
		t.Errorf("Size() = (%v, %v), want (32, 24)", w, h)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if p.Facing() != DirRight || p.Facing().Degrees() != 0 {
		t.Errorf("Facing() = %v, want right/0", p.Facing())
	}
	if p.MoveSpeed() != DefaultMoveSpeed {
		t.Errorf("MoveSpeed() = %v, want %v", p.MoveSpeed(), DefaultMoveSpeed)
	}
}

func TestNewAcceptsDegenerateSize(t *testing.T) {
	p := newTestPlayer(t, 0, 0, -4, 0)
	req := p.Shoot()
	if req.OriginX != -2 || req.OriginY != 0 {
		t.Errorf("Shoot() = %+v, want origin (-2, 0)", req)
	}
}

type partialImages map[string]image.Image

func (m partialImages) Image(p string) (image.Image, bool) {
	img, ok := m[p]
	return img, ok
}

func TestNewMissingAsset(t *testing.T) {
	imgs := partialImages{}
	for _, s := range States() {
		if s == Shooting {
			continue
		}
		imgs[s.AssetPath()] = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	_, err := New(imgs, 0, 0, 1, 1)
	if !errors.Is(err, assets.ErrInvalidAsset) {
		t.Fatalf("New() error = %v, want ErrInvalidAsset", err)
	}

	if _, err := New(nil, 0, 0, 1, 1); !errors.Is(err, assets.ErrInvalidAsset) {
		t.Fatalf("New(nil) error = %v, want ErrInvalidAsset", err)
	}
}

func TestNewRejectsBadSpeed(t *testing.T) {
	set, _ := assets.Default()
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(set, 0, 0, 1, 1, WithMoveSpeed(v)); !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("WithMoveSpeed(%v): error = %v, want ErrInvalidSpeed", v, err)
		}
	}
}

func TestMoves(t *testing.T) {
	tests := []struct {
		name   string
		move   func(*Player)
		x, y   float64
		state  VisualState
		facing float64
	}{
		{"up", (*Player).MoveUp, 10, 9, MovingUp, 270},
		{"down", (*Player).MoveDown, 10, 11, MovingDown, 90},
		{"left", (*Player).MoveLeft, 9, 10, MovingLeft, 180},
		{"right", (*Player).MoveRight, 11, 10, MovingRight, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer(t, 10, 10, 8, 8)
			tt.move(p)
			if x, y := p.Position(); x != tt.x || y != tt.y {
				t.Errorf("Position() = (%v, %v), want (%v, %v)", x, y, tt.x, tt.y)
			}
			if p.State() != tt.state {
				t.Errorf("State() = %v, want %v", p.State(), tt.state)
			}
			if p.Facing().Degrees() != tt.facing {
				t.Errorf("Facing() = %v, want %v", p.Facing().Degrees(), tt.facing)
			}
		})
	}
}

func TestMoveSpeedOption(t *testing.T) {
	p := newTestPlayer(t, 0, 0, 2, 2, WithMoveSpeed(2.5))
	p.MoveRight()
	p.MoveDown()
	p.MoveDown()
	if x, y := p.Position(); x != 2.5 || y != 5 {
		t.Errorf("Position() = (%v, %v), want (2.5, 5)", x, y)
	}
}

func TestFacingFollowsLastMove(t *testing.T) {
	seqs := [][]Direction{
		{DirUp},
		{DirUp, DirLeft},
		{DirLeft, DirDown, DirRight, DirUp, DirDown},
		{DirRight, DirRight, DirLeft},
	}
	for _, seq := range seqs {
		p := newTestPlayer(t, 0, 0, 4, 4)
		for _, d := range seq {
			p.Move(d)
			if d%2 == 0 {
				p.Stop()
			} else {
				p.Shoot()
			}
		}
		last := seq[len(seq)-1]
		if p.Facing() != last {
			t.Errorf("seq %v: Facing() = %v, want %v", seq, p.Facing(), last)
		}
	}
}

func TestStopKeepsPositionAndFacing(t *testing.T) {
	p := newTestPlayer(t, 0, 0, 4, 4)
	p.MoveLeft()
	p.MoveUp()
	p.Stop()
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if p.Facing() != DirUp {
		t.Errorf("Facing() = %v, want up", p.Facing())
	}
	if x, y := p.Position(); x != -1 || y != -1 {
		t.Errorf("Position() = (%v, %v), want (-1, -1)", x, y)
	}
}

func TestStopAfterAnyState(t *testing.T) {
	ops := map[string]func(*Player){
		"idle":  (*Player).Stop,
		"up":    (*Player).MoveUp,
		"down":  (*Player).MoveDown,
		"left":  (*Player).MoveLeft,
		"right": (*Player).MoveRight,
		"shoot": func(p *Player) { p.Shoot() },
	}
	for name, op := range ops {
		p := newTestPlayer(t, 0, 0, 4, 4)
		op(p)
		p.Stop()
		if p.State() != Idle {
			t.Errorf("after %s: State() = %v, want idle", name, p.State())
		}
	}
}

func TestShootScenario(t *testing.T) {
	p := newTestPlayer(t, 0, 0, 32, 32)
	p.MoveRight()
	if x, y := p.Position(); x != 1 || y != 0 || p.Facing().Degrees() != 0 {
		t.Fatalf("after right: (%v, %v) facing %v", x, y, p.Facing().Degrees())
	}
	p.MoveUp()
	if x, y := p.Position(); x != 1 || y != -1 || p.Facing().Degrees() != 270 {
		t.Fatalf("after up: (%v, %v) facing %v", x, y, p.Facing().Degrees())
	}
	got := p.Shoot()
	want := SpawnRequest{OriginX: 17, OriginY: 15, Heading: 270}
	if got != want {
		t.Errorf("Shoot() = %+v, want %+v", got, want)
	}
	if p.State() != Shooting {
		t.Errorf("State() = %v, want shoot", p.State())
	}
	if p.Facing() != DirUp {
		t.Errorf("Shoot() changed facing to %v", p.Facing())
	}
}

func TestShootWithoutMoving(t *testing.T) {
	p := newTestPlayer(t, 5, 5, 10, 10)
	got := p.Shoot()
	want := SpawnRequest{OriginX: 10, OriginY: 10, Heading: 0}
	if got != want {
		t.Errorf("Shoot() = %+v, want %+v", got, want)
	}
}

func TestShootAfterStopUsesLastDirection(t *testing.T) {
	p := newTestPlayer(t, 0, 0, 2, 2)
	p.MoveLeft()
	p.Stop()
	if got := p.Shoot(); got.Heading != 180 {
		t.Errorf("Shoot().Heading = %v, want 180", got.Heading)
	}
}

func TestVisualTracksState(t *testing.T) {
	set, _ := assets.Default()
	p := newTestPlayer(t, 1, 2, 3, 4)
	check := func(want VisualState) {
		t.Helper()
		v := p.Visual()
		if v.State != want {
			t.Errorf("Visual().State = %v, want %v", v.State, want)
		}
		if v.Asset != want.AssetPath() {
			t.Errorf("Visual().Asset = %q, want %q", v.Asset, want.AssetPath())
		}
		img, _ := set.Image(want.AssetPath())
		if v.Image != img {
			t.Errorf("Visual().Image is not the shared %s image", want)
		}
	}
	check(Idle)
	p.MoveDown()
	check(MovingDown)
	p.Shoot()
	check(Shooting)
	p.Stop()
	check(Idle)

	v := p.Visual()
	v.X = 100
	if x, _ := p.Position(); x != 1 {
		t.Error("mutating Visual() copy changed the entity")
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
		got, ok := ParseDirection(d.String())
		if !ok || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), got, ok)
		}
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Error("ParseDirection accepted an unknown direction")
	}
}
