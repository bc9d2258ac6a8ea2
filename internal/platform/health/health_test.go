package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/SlpAus/guo-backend/pkg/lifecycle"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Transitions(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()

	m := NewMonitor(rdb, logger.NewNop())
	ctx := context.Background()
	assert.True(t, m.IsHealthy())
	assert.Equal(t, StateHealthy, m.PerformCheck(ctx))

	mr.SetError("LOADING")
	assert.Equal(t, StateDegraded, m.PerformCheck(ctx))
	assert.False(t, m.IsHealthy())
	assert.Equal(t, StateDegraded, m.PerformCheck(ctx))

	mr.SetError("")
	assert.Equal(t, StateHealthy, m.PerformCheck(ctx))
	assert.True(t, m.IsHealthy())
}

func TestMonitor_Disabled(t *testing.T) {
	m := NewMonitor(nil, logger.NewNop())
	assert.Equal(t, StateDisabled, m.PerformCheck(context.Background()))
	assert.False(t, m.IsHealthy())

	var nilMonitor *Monitor
	assert.Equal(t, StateDisabled, nilMonitor.State())
	assert.Equal(t, "disabled", StateDisabled.String())
}

func TestMonitor_CheckerStops(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	m := NewMonitor(rdb, logger.NewNop())

	mgr := lifecycle.NewManager("graceful", logger.NewNop())
	h, err := mgr.NewServiceHandle("redis-health")
	require.NoError(t, err)
	go m.StartChecker(h, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mgr.Shutdown()
	assert.Empty(t, mgr.WaitWithTimeout(time.Second))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "guoql.db")
	repo := pot.NewRepository(path, nil)
	_, err := pot.Modify(repo, func(l *pot.Ledger) (pot.Pot, error) {
		return l.CreatePot(pot.CreatePotParams{Owner: "A"}), nil
	})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/api/health", Handler(repo, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "disabled", resp.Redis)
	assert.Equal(t, path, resp.Store.Path)
	assert.Equal(t, uint64(1), resp.Store.Revision)
	assert.Equal(t, 1, resp.Store.Pots)
}
