package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给每个后台服务的生命周期控制器。
type Handle struct {
	ctx context.Context
	// Close 通知Manager其所属的服务已经退出，应当在服务的Goroutine中 defer 调用。
	// 多次调用是安全的。
	Close func()
}

// Ctx 返回在停机时被取消的上下文。
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 返回一个channel，当生命周期管理器发出停机信号时，该channel会关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 暂停指定的时长，如果期间收到停机信号则提前返回错误。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
