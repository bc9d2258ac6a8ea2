package health

import (
	"sync"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
)

// State 定义了Redis连接的健康状态
type State int

const (
	StateDisabled State = iota
	StateHealthy
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	default:
		return "disabled"
	}
}

// statusManager 负责线程安全地管理状态转换，只在状态变化时打印日志。
type statusManager struct {
	mu    sync.RWMutex
	state State
	log   *logger.Logger
}

func newStatusManager(initial State, log *logger.Logger) *statusManager {
	return &statusManager{state: initial, log: log}
}

func (sm *statusManager) get() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// assess 根据一次检查结果决定下一个状态，返回新状态。
func (sm *statusManager) assess(connected bool, cause error) State {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.state {
	case StateHealthy:
		if !connected {
			sm.state = StateDegraded
			sm.log.Warn("健康检查: Redis连接丢失，状态 -> [降级]", "error", cause)
		}
	case StateDegraded:
		if connected {
			sm.state = StateHealthy
			sm.log.Info("健康检查: Redis连接已恢复，状态 -> [健康]")
		}
	}
	return sm.state
}
