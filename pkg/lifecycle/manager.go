package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
)

// Manager 管理一组后台服务的停机信号与退出等待。
// 它由上层模块（如shutdown）创建和持有，并向各个后台服务分发句柄(Handle)。
type Manager struct {
	name string
	log  *logger.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建一个新的生命周期管理器，name 只用于日志。
func NewManager(name string, log *logger.Logger) *Manager {
	m := &Manager{
		name:     name,
		log:      log,
		services: make(map[string]bool),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle 为一个服务创建一个新的生命周期句柄(Handle)。
// 管理器会自动为这个服务注册并增加WaitGroup计数。
func (m *Manager) NewServiceHandle(service string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.services[service] {
		return nil, fmt.Errorf("生命周期管理器 %s: 服务 '%s' 已被注册", m.name, service)
	}
	m.services[service] = true
	m.wg.Add(1)
	m.log.Debug("服务已注册", "manager", m.name, "service", service)

	var once sync.Once
	return &Handle{
		ctx: m.ctx,
		Close: func() {
			once.Do(func() {
				m.mu.Lock()
				defer m.mu.Unlock()
				delete(m.services, service)
				m.wg.Done()
			})
		},
	}, nil
}

// Shutdown 广播停机信号，可以重复调用。
func (m *Manager) Shutdown() {
	m.log.Info("广播停机信号", "manager", m.name)
	m.cancel()
}

// WaitWithTimeout 等待所有已注册的服务完成，直到指定的超时。
// 返回超时时仍未退出的服务名，按字典序排列。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	doneChan := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneChan)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-doneChan:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.remainingServices()
	}
}

func (m *Manager) remainingServices() []string {
	remaining := make([]string, 0, len(m.services))
	for name := range m.services {
		remaining = append(remaining, name)
	}
	sort.Strings(remaining)
	return remaining
}
