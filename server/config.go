package server

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomConfig 房间规则，可通过 /admin/config 热更新
type RoomConfig struct {
	Step         float64 `yaml:"step" json:"step"` // 新加入玩家的移动步长
	PlayerWidth  float64 `yaml:"player_width" json:"playerWidth"`
	PlayerHeight float64 `yaml:"player_height" json:"playerHeight"`
	SpawnX       float64 `yaml:"spawn_x" json:"spawnX"`
	SpawnY       float64 `yaml:"spawn_y" json:"spawnY"`

	ProjectileSpeed    float64 `yaml:"projectile_speed" json:"projectileSpeed"`
	ProjectileTTL      int     `yaml:"projectile_ttl" json:"projectileTTL"` // Tick 数
	ShootCooldownTicks int     `yaml:"shoot_cooldown_ticks" json:"shootCooldownTicks"`

	// 输入限流与网络模拟
	MaxInputsPerTick   int     `yaml:"max_inputs_per_tick" json:"maxInputsPerTick"`
	SimulateDelayMinMs int     `yaml:"simulate_delay_min_ms" json:"simulateDelayMinMs"`
	SimulateDelayMaxMs int     `yaml:"simulate_delay_max_ms" json:"simulateDelayMaxMs"`
	SimulateDropProb   float64 `yaml:"simulate_drop_prob" json:"simulateDropProb"`
}

// Config 进程级配置
type Config struct {
	Addr        string     `yaml:"addr"`
	LogFile     string     `yaml:"log_file"`
	LogLevel    string     `yaml:"log_level"`
	DefaultRoom string     `yaml:"default_room"`
	Room        RoomConfig `yaml:"room"`
}

var ErrInvalidConfig = errors.New("invalid config")

// maxPerTick 单 Tick 位移上限，超过后坐标很快溢出为 ±Inf，快照无法编码
const maxPerTick = 1e4

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Step:               1,
		PlayerWidth:        32,
		PlayerHeight:       32,
		SpawnX:             50,
		SpawnY:             50,
		ProjectileSpeed:    4,
		ProjectileTTL:      40, // 2 秒
		ShootCooldownTicks: 5,
		MaxInputsPerTick:   3,
	}
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		LogFile:     "app.log",
		LogLevel:    "debug",
		DefaultRoom: "room-1",
		Room:        DefaultRoomConfig(),
	}
}

// LoadConfig 读取 YAML 配置；path 为空时返回默认值，文件中缺省的字段保持默认
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Room.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate 检查会导致实体构造失败或模拟异常的取值
func (c RoomConfig) Validate() error {
	switch {
	case !(c.Step > 0 && c.Step <= maxPerTick):
		return fmt.Errorf("%w: step must be in (0,%v], got %v", ErrInvalidConfig, float64(maxPerTick), c.Step)
	case !(c.ProjectileSpeed >= 0 && c.ProjectileSpeed <= maxPerTick):
		return fmt.Errorf("%w: projectile speed must be in [0,%v], got %v", ErrInvalidConfig, float64(maxPerTick), c.ProjectileSpeed)
	case !finite(c.PlayerWidth, c.PlayerHeight, c.SpawnX, c.SpawnY):
		return fmt.Errorf("%w: spawn and size must be finite", ErrInvalidConfig)
	case c.ProjectileTTL < 0 || c.ShootCooldownTicks < 0 || c.MaxInputsPerTick < 0:
		return fmt.Errorf("%w: tick counts must not be negative", ErrInvalidConfig)
	case c.SimulateDelayMinMs < 0 || c.SimulateDelayMaxMs < c.SimulateDelayMinMs:
		return fmt.Errorf("%w: delay window [%d,%d]", ErrInvalidConfig, c.SimulateDelayMinMs, c.SimulateDelayMaxMs)
	case c.SimulateDropProb < 0 || c.SimulateDropProb > 1:
		return fmt.Errorf("%w: drop probability %v", ErrInvalidConfig, c.SimulateDropProb)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
