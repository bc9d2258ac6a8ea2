package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/pkg/lifecycle"
)

const (
	httpTimeout     = 15 * time.Second
	gracefulTimeout = 30 * time.Second
	forcefulTimeout = 1 * time.Second
)

// Coordinator 负责编排应用程序的优雅停机流程。
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager

	// FinalSnapshot 在所有后台服务退出后执行，为 nil 时跳过。
	FinalSnapshot func(ctx context.Context) error

	log *logger.Logger
}

// NewCoordinator 创建一个新的停机协调器。
func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager, log *logger.Logger) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		log:             log,
	}
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM 或 serverErr 有值，然后执行停机流程。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server, serverErr <-chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		c.log.Info("收到关闭信号，开始优雅停机", "signal", sig.String())
	case err := <-serverErr:
		c.log.Error("HTTP服务器异常退出，开始停机", "error", err)
	}

	c.Shutdown(server)
}

// Shutdown 依次关闭HTTP服务器、后台服务，最后执行一次快照。
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.log.Error("HTTP服务器关闭错误", "error", err)
		} else {
			c.log.Info("HTTP服务器已关闭")
		}
	}

	// --- 阶段一: 优雅停机 ---
	c.log.Info("第一阶段停机：等待后台任务完成", "timeout", gracefulTimeout)
	c.GracefulManager.Shutdown()

	remaining := c.GracefulManager.WaitWithTimeout(gracefulTimeout)
	if len(remaining) == 0 {
		c.log.Info("所有服务已在第一阶段优雅关闭")
	} else {
		// --- 阶段二: 强制停机 ---
		c.log.Warn("第一阶段超时，发送强制停机信号", "remaining", remaining, "timeout", forcefulTimeout)
		c.ForcefulManager.Shutdown()
		c.ForcefulManager.WaitWithTimeout(forcefulTimeout)
	}

	// --- 最终步骤 ---
	if c.FinalSnapshot != nil {
		c.log.Info("正在执行最终快照")
		if err := c.FinalSnapshot(context.Background()); err != nil {
			c.log.Error("最终快照失败", "error", err)
		} else {
			c.log.Info("最终快照成功")
		}
	}

	c.log.Info("优雅停机完成")
}
