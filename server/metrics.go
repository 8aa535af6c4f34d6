package server

import (
	"sync/atomic"
	"time"
)

// Counter 房间运行期计数项
type Counter int

const (
	InputsAccepted    Counter = iota // 被接受的输入
	RateLimited                      // 同帧限流拒绝
	OldSeqIgnored                    // 旧序列号
	DropsSimulated                   // 模拟丢包
	ChanFullDiscarded                // 输入通道满
	ShotsFired                       // 生成的投射物
	ShotsOnCooldown                  // 冷却中的射击
	numCounters
)

var counterKeys = [numCounters]string{
	InputsAccepted:    "inputs_accepted",
	RateLimited:       "rate_limited",
	OldSeqIgnored:     "old_seq_ignored",
	DropsSimulated:    "drops_simulated",
	ChanFullDiscarded: "chan_full_discarded",
	ShotsFired:        "shots_fired",
	ShotsOnCooldown:   "shots_on_cooldown",
}

func (c Counter) String() string {
	if c < 0 || c >= numCounters {
		return "unknown"
	}
	return counterKeys[c]
}

// RoomMetrics 并发安全；Tick 线程写，HTTP 线程读
type RoomMetrics struct {
	counters [numCounters]atomic.Int64
	ticks    atomic.Int64
	tickTime atomic.Int64 // 纳秒
}

func (m *RoomMetrics) Inc(c Counter) {
	if c >= 0 && c < numCounters {
		m.counters[c].Add(1)
	}
}

func (m *RoomMetrics) Get(c Counter) int64 {
	if c < 0 || c >= numCounters {
		return 0
	}
	return m.counters[c].Load()
}

// ObserveTick 记录一次 Tick 的耗时
func (m *RoomMetrics) ObserveTick(d time.Duration) {
	m.ticks.Add(1)
	m.tickTime.Add(int64(d))
}

// Snapshot 用于 /metrics 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	out := make(map[string]any, int(numCounters)+2)
	for c := Counter(0); c < numCounters; c++ {
		out[c.String()] = m.counters[c].Load()
	}
	ticks := m.ticks.Load()
	var avg float64
	if ticks > 0 {
		avg = float64(m.tickTime.Load()) / float64(ticks) / float64(time.Millisecond)
	}
	out["tick_count"] = ticks
	out["avg_tick_ms"] = avg
	return out
}
