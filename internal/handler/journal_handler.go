package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/service"
	"github.com/valiflooz/chaouch-capital/internal/xe"
	"go.uber.org/zap"
)

// 列表接口的展示上限，避免长尾分类刷屏
const (
	combinationsTopN = 5
	breakdownTopN    = 10
)

// JournalHandler 交易日志HTTP处理器
type JournalHandler struct {
	journalService *service.JournalService
	statsService   *service.StatsService
	coachService   *service.CoachService
	logger         *zap.Logger
}

// NewJournalHandler 创建日志处理器
func NewJournalHandler(
	journalService *service.JournalService,
	statsService *service.StatsService,
	coachService *service.CoachService,
	logger *zap.Logger,
) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		statsService:   statsService,
		coachService:   coachService,
		logger:         logger,
	}
}

func (h *JournalHandler) RegisterRoutes(g *echo.Group) {
	journal := g.Group("/journal")

	// 记录
	journal.GET("/trades", h.ListTrades)
	journal.POST("/trades", h.CreateTrade)
	journal.POST("/trades/quick", h.CreateQuickTrade)
	journal.GET("/trades/:id", h.GetTrade)
	journal.DELETE("/trades/:id", h.DeleteTrade)

	// 统计
	journal.GET("/stats", h.GetStats)
	journal.GET("/breakdowns", h.GetBreakdown)
	journal.GET("/combinations", h.GetCombinations)
	journal.GET("/equity-curve", h.GetEquityCurve)
	journal.GET("/calendar", h.GetCalendar)

	// 导入导出
	journal.POST("/import/csv", h.ImportCSV)
	journal.POST("/restore", h.Restore)
	journal.GET("/export", h.Export)

	// AI 复盘
	journal.POST("/coach/analyze", h.CoachAnalyze)
	journal.POST("/coach/trades/:id/feedback", h.CoachTradeFeedback)
}

// DetailedTradeRequest 详细模式录入请求
type DetailedTradeRequest struct {
	Ticker        string    `json:"ticker" validate:"required"`
	EntryDate     time.Time `json:"entryDate" validate:"required"`
	ExitDate      time.Time `json:"exitDate" validate:"required"`
	Type          string    `json:"type" validate:"required,oneof=Long Short"`
	Bias          string    `json:"bias" validate:"omitempty,oneof=Bullish Bearish"`
	EntryPrice    float64   `json:"entryPrice" validate:"gte=0"`
	StopLoss      float64   `json:"stopLoss" validate:"gte=0"`
	ExitPrice     float64   `json:"exitPrice" validate:"gte=0"`
	Quantity      float64   `json:"quantity" validate:"gte=0"`
	Fees          float64   `json:"fees" validate:"gte=0"`
	Setup         string    `json:"setup"`
	POI           string    `json:"poi"`
	Target        string    `json:"target"`
	Notes         string    `json:"notes"`
	ScreenshotURL string    `json:"screenshotUrl"`
}

// CreateTrade 详细模式录入一笔交易
// POST /api/journal/trades
func (h *JournalHandler) CreateTrade(c echo.Context) error {
	ctx := c.Request().Context()

	var req DetailedTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.journalService.CreateDetailed(ctx, models.DetailedEntry{
		Ticker:        req.Ticker,
		EntryDate:     req.EntryDate,
		ExitDate:      req.ExitDate,
		Type:          models.TradeType(req.Type),
		Bias:          req.Bias,
		EntryPrice:    req.EntryPrice,
		StopLoss:      req.StopLoss,
		ExitPrice:     req.ExitPrice,
		Quantity:      req.Quantity,
		Fees:          req.Fees,
		Setup:         req.Setup,
		POI:           req.POI,
		Target:        req.Target,
		Notes:         req.Notes,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// QuickTradeRequest 快速模式录入请求，只填盈亏不填价格
type QuickTradeRequest struct {
	Ticker        string    `json:"ticker" validate:"required"`
	EntryDate     time.Time `json:"entryDate" validate:"required"`
	ExitDate      time.Time `json:"exitDate" validate:"required"`
	Type          string    `json:"type" validate:"required,oneof=Long Short"`
	Bias          string    `json:"bias" validate:"omitempty,oneof=Bullish Bearish"`
	Quantity      float64   `json:"quantity" validate:"gte=0"`
	Fees          float64   `json:"fees" validate:"gte=0"`
	NetPnl        float64   `json:"netPnl"`
	RiskAmount    float64   `json:"riskAmount" validate:"gte=0"`
	Setup         string    `json:"setup"`
	POI           string    `json:"poi"`
	Target        string    `json:"target"`
	Notes         string    `json:"notes"`
	ScreenshotURL string    `json:"screenshotUrl"`
}

// CreateQuickTrade 快速模式录入一笔交易
// POST /api/journal/trades/quick
func (h *JournalHandler) CreateQuickTrade(c echo.Context) error {
	ctx := c.Request().Context()

	var req QuickTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.journalService.CreateQuick(ctx, models.QuickEntry{
		Ticker:        req.Ticker,
		EntryDate:     req.EntryDate,
		ExitDate:      req.ExitDate,
		Type:          models.TradeType(req.Type),
		Bias:          req.Bias,
		Quantity:      req.Quantity,
		Fees:          req.Fees,
		NetPnl:        req.NetPnl,
		RiskAmount:    req.RiskAmount,
		Setup:         req.Setup,
		POI:           req.POI,
		Target:        req.Target,
		Notes:         req.Notes,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// ListTrades 获取全部交易记录
// GET /api/journal/trades
func (h *JournalHandler) ListTrades(c echo.Context) error {
	ctx := c.Request().Context()

	trades, err := h.journalService.List(ctx)
	if err != nil {
		return err
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return c.JSON(http.StatusOK, trades)
}

// GetTrade 获取单条记录
// GET /api/journal/trades/:id
func (h *JournalHandler) GetTrade(c echo.Context) error {
	ctx := c.Request().Context()

	trade, err := h.journalService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// DeleteTrade 删除一条记录
// DELETE /api/journal/trades/:id
func (h *JournalHandler) DeleteTrade(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.journalService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}

// windowFromQuery 从查询参数解析统计时间范围
func windowFromQuery(c echo.Context) (service.Window, time.Time) {
	window := service.ParseWindow(c.QueryParam("window"))

	var customStart time.Time
	if start := c.QueryParam("start"); start != "" {
		if t, err := time.ParseInLocation("2006-01-02", start, time.Local); err == nil {
			customStart = t
		}
	}
	return window, customStart
}

// GetStats 总览统计
// GET /api/journal/stats?window=30D
func (h *JournalHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	window, customStart := windowFromQuery(c)
	stats, err := h.statsService.Overview(ctx, window, customStart)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// GetBreakdown 按维度分组统计
// GET /api/journal/breakdowns?key=setup&window=ALL
func (h *JournalHandler) GetBreakdown(c echo.Context) error {
	ctx := c.Request().Context()

	window, customStart := windowFromQuery(c)
	key := c.QueryParam("key")

	groups, err := h.statsService.Breakdown(ctx, window, customStart, key)
	if err != nil {
		return err
	}

	// 点位类维度取值分散，只展示头部
	if key == "poi" || key == "target" {
		if len(groups) > breakdownTopN {
			groups = groups[:breakdownTopN]
		}
	}
	return c.JSON(http.StatusOK, groups)
}

// GetCombinations 组合统计
// GET /api/journal/combinations?window=ALL
func (h *JournalHandler) GetCombinations(c echo.Context) error {
	ctx := c.Request().Context()

	window, customStart := windowFromQuery(c)
	combos, err := h.statsService.Combinations(ctx, window, customStart)
	if err != nil {
		return err
	}
	if len(combos) > combinationsTopN {
		combos = combos[:combinationsTopN]
	}
	return c.JSON(http.StatusOK, combos)
}

// GetEquityCurve 资金曲线
// GET /api/journal/equity-curve?window=YTD
func (h *JournalHandler) GetEquityCurve(c echo.Context) error {
	ctx := c.Request().Context()

	window, customStart := windowFromQuery(c)
	points, err := h.statsService.EquityCurve(ctx, window, customStart)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}

// GetCalendar 指定年月的逐日盈亏
// GET /api/journal/calendar?year=2024&month=6
func (h *JournalHandler) GetCalendar(c echo.Context) error {
	ctx := c.Request().Context()

	now := time.Now()
	year := cast.ToInt(c.QueryParam("year"))
	month := cast.ToInt(c.QueryParam("month"))
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}

	days, err := h.statsService.Calendar(ctx, year, time.Month(month))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

// ImportCSVRequest CSV 导入请求，content 为文件原文
type ImportCSVRequest struct {
	Content string `json:"content" validate:"required"`
}

// ImportCSV 导入 CSV，追加到现有记录
// POST /api/journal/import/csv
func (h *JournalHandler) ImportCSV(c echo.Context) error {
	ctx := c.Request().Context()

	var req ImportCSVRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	count, err := h.journalService.ImportCSV(ctx, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"imported": count,
	})
}

// Restore 用备份文件整体替换现有记录，请求体就是备份文件内容
// POST /api/journal/restore
func (h *JournalHandler) Restore(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return xe.ErrInvalidParams
	}

	count, err := h.journalService.ImportJSON(ctx, data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"restored": count,
	})
}

// Export 导出全部记录为备份文件
// GET /api/journal/export
func (h *JournalHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()

	data, filename, err := h.journalService.ExportJSON(ctx)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// CoachAnalyze AI 复盘最近的交易
// POST /api/journal/coach/analyze
func (h *JournalHandler) CoachAnalyze(c echo.Context) error {
	ctx := c.Request().Context()

	analysis, err := h.coachService.AnalyzeTrades(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"analysis": analysis,
	})
}

// CoachTradeFeedback AI 点评单笔交易
// POST /api/journal/coach/trades/:id/feedback
func (h *JournalHandler) CoachTradeFeedback(c echo.Context) error {
	ctx := c.Request().Context()

	feedback, err := h.coachService.TradeFeedback(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"feedback": feedback,
	})
}
