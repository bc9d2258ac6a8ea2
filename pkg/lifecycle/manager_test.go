package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DuplicateService(t *testing.T) {
	m := NewManager("graceful", logger.NewNop())
	_, err := m.NewServiceHandle("backup")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("backup")
	assert.Error(t, err)
}

func TestManager_ShutdownWakesSleepers(t *testing.T) {
	m := NewManager("graceful", logger.NewNop())
	h, err := m.NewServiceHandle("backup")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		defer h.Close()
		errCh <- h.Sleep(time.Hour)
	}()

	m.Shutdown()
	assert.Empty(t, m.WaitWithTimeout(time.Second))
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestManager_WaitReportsStragglers(t *testing.T) {
	m := NewManager("graceful", logger.NewNop())
	done, err := m.NewServiceHandle("done")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("stuck-b")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("stuck-a")
	require.NoError(t, err)

	done.Close()
	done.Close()

	m.Shutdown()
	assert.Equal(t, []string{"stuck-a", "stuck-b"}, m.WaitWithTimeout(20*time.Millisecond))
}

func TestHandle_SleepCompletes(t *testing.T) {
	m := NewManager("graceful", logger.NewNop())
	h, err := m.NewServiceHandle("svc")
	require.NoError(t, err)
	defer h.Close()

	assert.NoError(t, h.Sleep(time.Millisecond))
	assert.NoError(t, h.Err())
}
