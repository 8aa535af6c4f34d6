package server

import (
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"slimearena/player"
	"slimearena/projectile"
)

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进
type Room struct {
	ID string

	Players     map[PlayerID]*Player
	projectiles projectile.Pool
	spawned     []*projectile.Projectile // 本帧生成，UpdateWorld 之后才开始飞行
	images      player.ImageSet
	log         *zap.SugaredLogger

	inputChan chan Input
	joinChan  chan *Player
	leaveChan chan leaveRequest

	// 配置可被 admin 接口并发修改；Tick 开始时复制一份使用
	cfgMu   sync.RWMutex
	cfg     RoomConfig
	tickCfg RoomConfig

	metrics        *RoomMetrics
	tickSeq        int64
	inputsThisTick map[PlayerID]int
	dirty          bool

	tickerStarted bool
	stop          chan struct{}
	stopOnce      sync.Once
}

type leaveRequest struct {
	id   PlayerID
	conn Sender
}

// ProjectileState 广播给客户端的投射物状态
type ProjectileState struct {
	ID      string  `json:"id"`
	Owner   string  `json:"owner"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// StateMessage 全量快照
type StateMessage struct {
	Type        string            `json:"type"`
	Room        string            `json:"room"`
	Tick        int64             `json:"tick"`
	Players     []PlayerState     `json:"players"`
	Projectiles []ProjectileState `json:"projectiles"`
}

// WelcomeMessage 加入房间后发给该玩家
type WelcomeMessage struct {
	Type   string      `json:"type"`
	Room   string      `json:"room"`
	Player PlayerState `json:"player"`
}

// NewRoom 创建房间，初始化数据结构（不启动 Tick）
func NewRoom(id string, cfg RoomConfig, images player.ImageSet) *Room {
	return &Room{
		ID:             id,
		Players:        make(map[PlayerID]*Player),
		images:         images,
		log:            Log,
		inputChan:      make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		joinChan:       make(chan *Player, 64),
		leaveChan:      make(chan leaveRequest, 64),
		cfg:            cfg,
		tickCfg:        cfg,
		metrics:        &RoomMetrics{},
		inputsThisTick: make(map[PlayerID]int),
		stop:           make(chan struct{}),
	}
}

// Config 返回当前配置副本
func (r *Room) Config() RoomConfig {
	r.cfgMu.RLock()
	defer r.cfgMu.RUnlock()
	return r.cfg
}

// UpdateConfig 修改配置，下一次 Tick 生效
func (r *Room) UpdateConfig(fn func(*RoomConfig)) (RoomConfig, error) {
	r.cfgMu.Lock()
	defer r.cfgMu.Unlock()
	next := r.cfg
	fn(&next)
	if err := next.Validate(); err != nil {
		return r.cfg, err
	}
	r.cfg = next
	return next, nil
}

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// TickSeq 已推进的 Tick 序号
func (r *Room) TickSeq() int64 { return atomic.LoadInt64(&r.tickSeq) }

// JoinPlayer 构造实体并请求在 Tick 线程中加入房间；资源缺失时返回错误
func (r *Room) JoinPlayer(id PlayerID, conn Sender) (*Player, error) {
	cfg := r.Config()
	ent, err := player.New(r.images, cfg.SpawnX, cfg.SpawnY, cfg.PlayerWidth, cfg.PlayerHeight,
		player.WithMoveSpeed(cfg.Step))
	if err != nil {
		return nil, err
	}
	p := &Player{ID: id, Entity: ent, Conn: conn}
	r.joinChan <- p
	return p, nil
}

// RequestLeave 请求在 Tick 线程中移除玩家；conn 不是当前连接时忽略（已被重连替换）
func (r *Room) RequestLeave(pid PlayerID, conn Sender) {
	// 为保证移除一定生效，这里采用阻塞式写入（通道有容量，避免死锁）
	r.leaveChan <- leaveRequest{id: pid, conn: conn}
}

// OnInput 入站输入（不立即改变实体），仅记录意图，等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	cfg := r.Config()
	if cfg.SimulateDropProb > 0 && rand.Float64() < cfg.SimulateDropProb {
		r.metrics.Inc(DropsSimulated)
		return
	}
	if cfg.SimulateDelayMaxMs > 0 {
		ms := cfg.SimulateDelayMinMs
		if span := cfg.SimulateDelayMaxMs - cfg.SimulateDelayMinMs; span > 0 {
			ms += rand.Intn(span + 1)
		}
		time.AfterFunc(time.Duration(ms)*time.Millisecond, func() { r.enqueue(in) })
		return
	}
	r.enqueue(in)
}

func (r *Room) enqueue(in Input) {
	// 不阻塞：输入拥塞时丢弃（由通道容量控制），保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.Inc(ChanFullDiscarded)
	}
}

// Tick 推进一帧：处理输入 → 更新世界 → 广播结果
func (r *Room) Tick() {
	start := time.Now()
	r.BeginTick()
	r.ProcessInputs()
	r.UpdateWorld()
	r.BroadcastDelta()
	r.metrics.ObserveTick(time.Since(start))
}

// BeginTick 同一 Tick 时间线：重置帧内计数并固定本帧配置
func (r *Room) BeginTick() {
	atomic.AddInt64(&r.tickSeq, 1)
	r.tickCfg = r.Config()
	r.dirty = false
	for k := range r.inputsThisTick {
		delete(r.inputsThisTick, k)
	}
}

// ProcessInputs 依次处理加入、输入、离开（非阻塞 drain）
func (r *Room) ProcessInputs() {
	for drained := false; !drained; {
		select {
		case p := <-r.joinChan:
			r.addPlayer(p)
		default:
			drained = true
		}
	}
	for drained := false; !drained; {
		select {
		case in := <-r.inputChan:
			r.applyInput(in)
		default:
			drained = true
		}
	}
	for drained := false; !drained; {
		select {
		case req := <-r.leaveChan:
			r.removePlayer(req)
		default:
			drained = true
		}
	}
}

func (r *Room) addPlayer(p *Player) {
	if old, ok := r.Players[p.ID]; ok {
		// 同名重连：保留原实体，替换连接
		if old.Conn != nil && old.Conn != p.Conn {
			old.Conn.Close()
		}
		old.Conn = p.Conn
		old.lastSeq = 0
		p = old
		r.log.Infow("player reconnected", "room", r.ID, "player", p.ID)
	} else {
		r.Players[p.ID] = p
		r.log.Infow("player joined", "room", r.ID, "player", p.ID)
	}
	r.dirty = true
	if p.Conn != nil {
		b, err := json.Marshal(WelcomeMessage{Type: "welcome", Room: r.ID, Player: p.state()})
		if err != nil {
			r.log.Errorw("marshal welcome", "room", r.ID, "player", p.ID, "err", err)
			return
		}
		p.Conn.Enqueue(b)
	}
}

func (r *Room) removePlayer(req leaveRequest) {
	p, ok := r.Players[req.id]
	if !ok || (req.conn != nil && p.Conn != req.conn) {
		return
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.Players, req.id)
	delete(r.inputsThisTick, req.id)
	r.dirty = true
	r.log.Infow("player left", "room", r.ID, "player", req.id)
}

// applyInput 每个输入恰好调用一次实体操作
func (r *Room) applyInput(in Input) {
	p, ok := r.Players[in.PlayerID]
	if !ok {
		return
	}
	if in.Seq > 0 && in.Seq <= p.lastSeq {
		r.metrics.Inc(OldSeqIgnored)
		return
	}
	if limit := r.tickCfg.MaxInputsPerTick; limit > 0 && r.inputsThisTick[p.ID] >= limit {
		r.metrics.Inc(RateLimited)
		r.log.Debugw("input rate limited", "room", r.ID, "player", p.ID, "cmd", in.Command.String())
		return
	}
	r.inputsThisTick[p.ID]++
	if in.Seq > 0 {
		p.lastSeq = in.Seq
	}
	r.metrics.Inc(InputsAccepted)

	switch in.Command {
	case CmdMove:
		p.Entity.Move(in.Direction)
	case CmdStop:
		p.Entity.Stop()
	case CmdShoot:
		r.shoot(p)
	}
	r.dirty = true
}

func (r *Room) shoot(p *Player) {
	now := atomic.LoadInt64(&r.tickSeq)
	if cd := int64(r.tickCfg.ShootCooldownTicks); p.hasShot && now-p.lastShotTick < cd {
		r.metrics.Inc(ShotsOnCooldown)
		return
	}
	req := p.Entity.Shoot()
	pr := projectile.FromSpawn(string(p.ID), req, r.tickCfg.ProjectileSpeed, r.tickCfg.ProjectileTTL)
	r.spawned = append(r.spawned, pr)
	p.lastShotTick = now
	p.hasShot = true
	r.metrics.Inc(ShotsFired)
	r.log.Debugw("projectile spawned", "room", r.ID, "player", p.ID, "id", pr.ID.String(),
		"x", req.OriginX, "y", req.OriginY, "heading", req.Heading)
}

// UpdateWorld 推进已有投射物并登记本帧新生成的；玩家位置只由输入驱动
func (r *Room) UpdateWorld() {
	removed := r.projectiles.Step()
	for i, pr := range r.spawned {
		r.projectiles.Add(pr)
		r.spawned[i] = nil
	}
	r.spawned = r.spawned[:0]
	if removed > 0 || r.projectiles.Len() > 0 {
		r.dirty = true
	}
}

// BroadcastDelta 本帧有变化时才广播
func (r *Room) BroadcastDelta() {
	if !r.dirty {
		return
	}
	r.Broadcast()
}

// Snapshot 当前世界状态（玩家按 ID 排序）
func (r *Room) Snapshot() StateMessage {
	players := make([]PlayerState, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.state())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	prs := r.projectiles.Snapshot()
	projectiles := make([]ProjectileState, 0, len(prs))
	for _, pr := range prs {
		projectiles = append(projectiles, ProjectileState{
			ID:      pr.ID.String(),
			Owner:   pr.OwnerID,
			X:       pr.X,
			Y:       pr.Y,
			Heading: pr.Heading,
		})
	}
	return StateMessage{
		Type:        "state",
		Room:        r.ID,
		Tick:        atomic.LoadInt64(&r.tickSeq),
		Players:     players,
		Projectiles: projectiles,
	}
}

// Broadcast 将当前世界状态广播给所有玩家（文本 JSON）
func (r *Room) Broadcast() {
	b, err := json.Marshal(r.Snapshot())
	if err != nil {
		r.log.Errorw("marshal snapshot", "room", r.ID, "err", err)
		return
	}
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Enqueue(b)
		}
	}
}

// Stop 结束 Tick 循环
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
