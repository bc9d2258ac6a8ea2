package health

import (
	"net/http"

	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/gin-gonic/gin"
)

type storeStatus struct {
	Path     string `json:"path"`
	Revision uint64 `json:"revision"`
	Pots     int    `json:"pots"`
}

// Response 是 /health 的响应体。
type Response struct {
	Status string      `json:"status"`
	Store  storeStatus `json:"store"`
	Redis  string      `json:"redis"`
}

// Handler 返回健康检查接口。账本在内存中，只要进程在运行就视为可用；Redis降级只体现在 redis 字段。
func Handler(repo *pot.Repository, monitor *Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{Status: "ok", Redis: monitor.State().String()}
		resp.Store.Path = repo.Path()
		repo.Read(func(l *pot.Ledger) {
			resp.Store.Pots = len(l.Pots)
		})
		resp.Store.Revision = repo.Revision()
		c.JSON(http.StatusOK, resp)
	}
}
