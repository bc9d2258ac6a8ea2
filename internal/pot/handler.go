package pot

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// --- 请求模型 ---

type createPotRequest struct {
	Position *string `json:"position" binding:"required"`
	Time     *string `json:"time" binding:"required"`
	Taste    *string `json:"taste" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Mian     *int    `json:"mian" binding:"required,min=0"`
	Fan      *int    `json:"fan" binding:"required,min=0"`
	Note     *string `json:"note"`
}

type eatRequest struct {
	Selector
	Name string `json:"name" binding:"required"`
	Mian *int   `json:"mian" binding:"required,min=0"`
	Fan  *int   `json:"fan" binding:"required,min=0"`
}

type selectorRequest struct {
	Selector
}

type editRequest struct {
	Selector
	Position *string    `json:"position"`
	Time     *string    `json:"time"`
	Taste    *string    `json:"taste"`
	Note     NoteUpdate `json:"note"`
}

type leaveRequest struct {
	Selector
	Name string `json:"name" binding:"required"`
}

type editDemandRequest struct {
	Selector
	Name string `json:"name" binding:"required"`
	Mian *int   `json:"mian" binding:"omitempty,min=0"`
	Fan  *int   `json:"fan" binding:"omitempty,min=0"`
}

type statsQuery struct {
	Top *int `form:"top" binding:"omitempty,min=0"`
}

// --- 错误响应 ---

// APIError 是错误响应体。Type 为 USER_ERROR 的是业务错误，其余是请求或服务端错误。
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// bindJSON 绑定请求体。空请求体等同于 {}，仍然要通过字段校验。
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(obj)
	}
	return err
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorEnvelope{Error: APIError{Type: "BAD_REQUEST", Message: "请求格式错误: " + err.Error()}})
}

func respondError(c *gin.Context, err error) {
	if ue, ok := AsUserError(err); ok {
		status := http.StatusNotFound
		if errors.Is(err, ErrAlreadyJoined) {
			status = http.StatusConflict
		}
		c.JSON(status, errorEnvelope{Error: APIError{Type: ue.Category, Code: ue.Code, Message: ue.Message}})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorEnvelope{Error: APIError{Type: "INTERNAL_ERROR", Message: "服务器内部错误"}})
}

// --- 控制器 ---

// Handler 把 HTTP 请求翻译为 Service 调用。
type Handler struct {
	svc *Service
}

// NewHandler 创建锅模块的控制器。
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListPots GET /pots
func (h *Handler) ListPots(c *gin.Context) {
	c.JSON(http.StatusOK, NewPotViews(h.svc.ListPots()))
}

// GetPot GET /pot?id=&index=
func (h *Handler) GetPot(c *gin.Context) {
	var sel Selector
	if err := c.ShouldBindQuery(&sel); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.GetPot(sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// GetStats GET /stats?top=
func (h *Handler) GetStats(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, NewEaterStatsViews(h.svc.Stats(q.Top)))
}

// CreatePot POST /pots
func (h *Handler) CreatePot(c *gin.Context) {
	var body createPotRequest
	if err := bindJSON(c, &body); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.CreatePot(c.Request.Context(), CreatePotParams{
		Position: *body.Position,
		Time:     *body.Time,
		Taste:    *body.Taste,
		Owner:    body.Name,
		Mian:     *body.Mian,
		Fan:      *body.Fan,
		Note:     body.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// Eat POST /pot/eat
func (h *Handler) Eat(c *gin.Context) {
	var body eatRequest
	if err := bindJSON(c, &body); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.Join(c.Request.Context(), body.Selector, body.Name, *body.Mian, *body.Fan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// Finish POST /pot/finish
func (h *Handler) Finish(c *gin.Context) {
	var body selectorRequest
	if err := bindJSON(c, &body); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.Finish(c.Request.Context(), body.Selector)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// Edit POST /pot/edit
func (h *Handler) Edit(c *gin.Context) {
	var body editRequest
	if err := bindJSON(c, &body); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.Edit(c.Request.Context(), body.Selector, EditParams{
		Position: body.Position,
		Time:     body.Time,
		Taste:    body.Taste,
		Note:     body.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// Leave POST /pot/leave
func (h *Handler) Leave(c *gin.Context) {
	var body leaveRequest
	if err := bindJSON(c, &body); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.Leave(c.Request.Context(), body.Selector, body.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// EditDemand POST /pot/demand
func (h *Handler) EditDemand(c *gin.Context) {
	var body editDemandRequest
	if err := bindJSON(c, &body); err != nil {
		respondBadRequest(c, err)
		return
	}
	pot, err := h.svc.EditDemand(c.Request.Context(), body.Selector, body.Name, body.Mian, body.Fan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotView(pot))
}

// Clear POST /pots/clear
func (h *Handler) Clear(c *gin.Context) {
	pots, err := h.svc.Clear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPotViews(pots))
}

// RegisterRoutes 把锅相关的路由挂到 rg 上。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pots", h.ListPots)
	rg.POST("/pots", h.CreatePot)
	rg.POST("/pots/clear", h.Clear)

	potRoutes := rg.Group("/pot")
	{
		potRoutes.GET("", h.GetPot)
		potRoutes.POST("/eat", h.Eat)
		potRoutes.POST("/finish", h.Finish)
		potRoutes.POST("/edit", h.Edit)
		potRoutes.POST("/leave", h.Leave)
		potRoutes.POST("/demand", h.EditDemand)
	}

	rg.GET("/stats", h.GetStats)
}
