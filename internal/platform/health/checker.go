package health

import (
	"context"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// Monitor 定期检查Redis连接。Redis只承载事件广播，降级时事件被跳过，账本读写不受影响。
type Monitor struct {
	rdb    *redis.Client
	status *statusManager
	log    *logger.Logger
}

// NewMonitor 创建Redis监视器。rdb 为 nil 表示Redis未启用。
func NewMonitor(rdb *redis.Client, log *logger.Logger) *Monitor {
	initial := StateHealthy
	if rdb == nil {
		initial = StateDisabled
	}
	return &Monitor{rdb: rdb, status: newStatusManager(initial, log), log: log}
}

// State 返回当前状态。nil 的 Monitor 视为未启用。
func (m *Monitor) State() State {
	if m == nil {
		return StateDisabled
	}
	return m.status.get()
}

// IsHealthy 报告Redis当前是否可用。
func (m *Monitor) IsHealthy() bool {
	return m.State() == StateHealthy
}

// PerformCheck 执行一次检查并返回检查后的状态。
func (m *Monitor) PerformCheck(ctx context.Context) State {
	if m.rdb == nil {
		return StateDisabled
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := m.rdb.Ping(pingCtx).Err()
	return m.status.assess(err == nil, err)
}

// StartChecker 以固定间隔执行检查，直到 handle 收到停机信号。
func (m *Monitor) StartChecker(handle *lifecycle.Handle, interval time.Duration) {
	defer handle.Close()
	m.log.Info("Redis健康检查器已启动", "interval", interval)

	for {
		if err := handle.Sleep(interval); err != nil {
			return
		}
		m.PerformCheck(handle.Ctx())
	}
}
