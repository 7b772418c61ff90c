package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/service"
	"github.com/valiflooz/chaouch-capital/internal/xe"
	"go.uber.org/zap"
)

// ChecklistHandler 交易纪律清单HTTP处理器
type ChecklistHandler struct {
	checklistService *service.ChecklistService
	logger           *zap.Logger
}

func NewChecklistHandler(checklistService *service.ChecklistService, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{
		checklistService: checklistService,
		logger:           logger,
	}
}

func (h *ChecklistHandler) RegisterRoutes(g *echo.Group) {
	checklist := g.Group("/checklist")

	checklist.GET("/:group", h.List)
	checklist.POST("/:group", h.Add)
	checklist.POST("/:group/reset", h.Reset)
	checklist.PUT("/items/:id/toggle", h.Toggle)
	checklist.DELETE("/items/:id", h.Delete)
}

// List 获取分组内的全部条目
// GET /api/checklist/:group
func (h *ChecklistHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.checklistService.List(ctx, c.Param("group"))
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.ChecklistItem{}
	}
	return c.JSON(http.StatusOK, items)
}

// AddItemRequest 新增条目请求
type AddItemRequest struct {
	Text string `json:"text" validate:"required"`
}

// Add 在分组末尾追加条目
// POST /api/checklist/:group
func (h *ChecklistHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.checklistService.Add(ctx, c.Param("group"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Toggle 翻转条目勾选状态
// PUT /api/checklist/items/:id/toggle
func (h *ChecklistHandler) Toggle(c echo.Context) error {
	ctx := c.Request().Context()

	item, err := h.checklistService.Toggle(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete 删除条目
// DELETE /api/checklist/items/:id
func (h *ChecklistHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.checklistService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}

// Reset 取消分组内全部勾选
// POST /api/checklist/:group/reset
func (h *ChecklistHandler) Reset(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.checklistService.Reset(ctx, c.Param("group")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reset": true,
	})
}
