package server

import (
	"sync"

	"go.uber.org/zap"

	"slimearena/assets"
	"slimearena/player"
)

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	cfg    RoomConfig
	images player.ImageSet
	log    *zap.SugaredLogger
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

// NewRoomManager 新房间使用 cfg 作为初始规则，共享同一份只读图片表
func NewRoomManager(cfg RoomConfig, images player.ImageSet) *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room), cfg: cfg, images: images, log: Log}
}

// WithLogger 替换管理器及其之后创建的房间使用的日志器，需在处理请求之前调用
func (m *RoomManager) WithLogger(l *zap.SugaredLogger) *RoomManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = l
	return m
}

func (m *RoomManager) logger() *zap.SugaredLogger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.log
}

// Configure 设置单例的房间规则与图片表，需在首次 GetRoomManager 之前调用
func Configure(cfg RoomConfig, images player.ImageSet) *RoomManager {
	once.Do(func() {
		defaultManager = NewRoomManager(cfg, images)
	})
	return defaultManager
}

// GetRoomManager 单例房间管理器；未 Configure 时使用默认规则与内嵌图片
func GetRoomManager() *RoomManager {
	once.Do(func() {
		set, err := assets.Default()
		if err != nil {
			Log.Errorw("load default assets", "err", err)
		}
		defaultManager = NewRoomManager(DefaultRoomConfig(), set)
	})
	return defaultManager
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.cfg, m.images)
		r.log = m.log
		m.rooms[id] = r
		r.StartTicker()
		m.log.Infow("room created", "room", id)
	}
	return r
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Close 停止全部房间的 Tick
func (m *RoomManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		r.Stop()
	}
}
