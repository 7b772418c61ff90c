package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-orz/orz"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Window 统计时间范围
type Window string

const (
	WindowAll    Window = "ALL"    // 全部
	Window7D     Window = "7D"     // 最近 7 天
	Window30D    Window = "30D"    // 最近 30 天
	WindowMTD    Window = "MTD"    // 本月以来
	WindowYTD    Window = "YTD"    // 今年以来
	WindowCustom Window = "CUSTOM" // 自定义起始日期
)

// ParseWindow 解析时间范围参数，无法识别时回落为全部
func ParseWindow(s string) Window {
	switch Window(strings.ToUpper(strings.TrimSpace(s))) {
	case Window7D:
		return Window7D
	case Window30D:
		return Window30D
	case WindowMTD:
		return WindowMTD
	case WindowYTD:
		return WindowYTD
	case WindowCustom:
		return WindowCustom
	default:
		return WindowAll
	}
}

// ProfitFactorCap 亏损为零且有盈利时的盈亏比哨兵值，表示"无穷大"
const ProfitFactorCap = 999

// CombinationMinCount 组合统计的最小样本数，低于此值的组合视为噪声
const CombinationMinCount = 2

// DashboardStats 总览统计
type DashboardStats struct {
	TotalTrades  int     `json:"totalTrades"`
	WinRate      float64 `json:"winRate"`
	TotalPnl     float64 `json:"totalPnl"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"` // 带符号的平均亏损，负数
	ProfitFactor float64 `json:"profitFactor"`
	BestTrade    float64 `json:"bestTrade"`
	WorstTrade   float64 `json:"worstTrade"`
}

// GroupStat 按分类维度聚合的统计
type GroupStat struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
	Pnl     float64 `json:"pnl"`
}

// EquityPoint 资金曲线上的一个点，每笔交易产生一个
type EquityPoint struct {
	Date             time.Time `json:"date"`
	CumulativeEquity float64   `json:"cumulativeEquity"`
	TradePnl         float64   `json:"tradePnl"`
}

// DayStat 日历视图中单日的汇总
type DayStat struct {
	Pnl   float64 `json:"pnl"`
	Count int     `json:"count"`
}

// StatsService 统计分析服务，所有指标都是对交易集合的纯函数，查询时实时计算
type StatsService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo
}

func NewStatsService(db *gorm.DB, logger *zap.Logger) *StatsService {
	return &StatsService{
		logger:    logger,
		Service:   orz.NewService(db),
		TradeRepo: repo.NewTradeRepo(db),
	}
}

// windowedTrades 加载全部交易并套用时间范围
func (s *StatsService) windowedTrades(ctx context.Context, window Window, customStart time.Time) ([]models.Trade, error) {
	trades, err := s.TradeRepo.FindAllOrderByCreatedAt(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByWindow(trades, window, time.Now(), customStart), nil
}

// Overview 总览统计
func (s *StatsService) Overview(ctx context.Context, window Window, customStart time.Time) (DashboardStats, error) {
	trades, err := s.windowedTrades(ctx, window, customStart)
	if err != nil {
		return DashboardStats{}, err
	}
	return ComputeDashboardStats(trades), nil
}

// Breakdown 按指定维度（setup/bias/type/poi/target）分组统计
func (s *StatsService) Breakdown(ctx context.Context, window Window, customStart time.Time, key string) ([]GroupStat, error) {
	trades, err := s.windowedTrades(ctx, window, customStart)
	if err != nil {
		return nil, err
	}
	return GroupTrades(trades, BreakdownKey(key)), nil
}

// Combinations 按 setup+bias+type 组合统计
func (s *StatsService) Combinations(ctx context.Context, window Window, customStart time.Time) ([]GroupStat, error) {
	trades, err := s.windowedTrades(ctx, window, customStart)
	if err != nil {
		return nil, err
	}
	return CombinationStats(trades, CombinationMinCount), nil
}

// EquityCurve 资金曲线
func (s *StatsService) EquityCurve(ctx context.Context, window Window, customStart time.Time) ([]EquityPoint, error) {
	trades, err := s.windowedTrades(ctx, window, customStart)
	if err != nil {
		return nil, err
	}
	return BuildEquityCurve(trades), nil
}

// Calendar 指定年月的逐日盈亏
func (s *StatsService) Calendar(ctx context.Context, year int, month time.Month) (map[int]DayStat, error) {
	trades, err := s.TradeRepo.FindAllOrderByCreatedAt(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCalendar(trades, year, month), nil
}

// FilterByWindow 按时间范围过滤交易，以离场时间为准，保持原有相对顺序
// 滚动范围（7D/30D）相对查询时刻计算，MTD/YTD/CUSTOM 从当地时间零点起算。
func FilterByWindow(trades []models.Trade, window Window, now time.Time, customStart time.Time) []models.Trade {
	var cutoff time.Time
	switch window {
	case Window7D:
		cutoff = now.AddDate(0, 0, -7)
	case Window30D:
		cutoff = now.AddDate(0, 0, -30)
	case WindowMTD:
		cutoff = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case WindowYTD:
		cutoff = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	case WindowCustom:
		if customStart.IsZero() {
			return trades
		}
		cutoff = time.Date(customStart.Year(), customStart.Month(), customStart.Day(), 0, 0, 0, 0, customStart.Location())
	default:
		return trades
	}

	var filtered []models.Trade
	for _, t := range trades {
		if !t.ExitDate.Before(cutoff) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ComputeDashboardStats 计算总览统计
// 所有除法都有分母检查，空集合返回零值而不是 NaN。
func ComputeDashboardStats(trades []models.Trade) DashboardStats {
	stats := DashboardStats{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var winSum, lossSum float64
	var winCount, lossCount int
	stats.BestTrade = trades[0].PnL
	stats.WorstTrade = trades[0].PnL

	for _, t := range trades {
		stats.TotalPnl += t.PnL
		if t.PnL > 0 {
			winCount++
			winSum += t.PnL
		} else {
			// 盈亏平衡计入亏损侧
			lossCount++
			lossSum += t.PnL
		}
		if t.PnL > stats.BestTrade {
			stats.BestTrade = t.PnL
		}
		if t.PnL < stats.WorstTrade {
			stats.WorstTrade = t.PnL
		}
	}

	stats.WinRate = float64(winCount) / float64(len(trades)) * 100
	if winCount > 0 {
		stats.AvgWin = winSum / float64(winCount)
	}
	if lossCount > 0 {
		stats.AvgLoss = lossSum / float64(lossCount)
	}

	absLoss := -lossSum
	switch {
	case absLoss > 0:
		stats.ProfitFactor = winSum / absLoss
	case winSum > 0:
		stats.ProfitFactor = ProfitFactorCap
	default:
		stats.ProfitFactor = 0
	}

	return stats
}

// BreakdownKey 把维度名映射为标签取值函数，空白值统一归入 Unspecified
func BreakdownKey(key string) func(models.Trade) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "bias":
		return func(t models.Trade) string { return t.Bias }
	case "type":
		return func(t models.Trade) string { return string(t.Type) }
	case "poi":
		return func(t models.Trade) string { return t.POI }
	case "target":
		return func(t models.Trade) string { return t.Target }
	default:
		return func(t models.Trade) string { return t.Setup }
	}
}

// GroupTrades 按标签函数分组聚合
// 胜负口径不对称：盈利严格大于 0 计为 win，小于等于 0（含盈亏平衡）计为 loss。
// 结果按总盈亏降序排列。
func GroupTrades(trades []models.Trade, labelOf func(models.Trade) string) []GroupStat {
	groups := make(map[string]*GroupStat)
	var order []string

	for _, t := range trades {
		label := strings.TrimSpace(labelOf(t))
		if label == "" {
			label = "Unspecified"
		}

		g, ok := groups[label]
		if !ok {
			g = &GroupStat{Label: label}
			groups[label] = g
			order = append(order, label)
		}

		g.Count++
		g.Pnl += t.PnL
		if t.PnL > 0 {
			g.Wins++
		} else {
			g.Losses++
		}
	}

	result := make([]GroupStat, 0, len(order))
	for _, label := range order {
		g := groups[label]
		g.WinRate = float64(g.Wins) / float64(g.Count) * 100
		result = append(result, *g)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Pnl > result[j].Pnl
	})
	return result
}

// CombinationStats 按 setup + bias + type 的组合聚合
// 标签由非空字段按序用 " + " 连接，三者全空时归入 "No Data"；
// 样本数低于 minCount 的组合被过滤掉。
func CombinationStats(trades []models.Trade, minCount int) []GroupStat {
	grouped := GroupTrades(trades, func(t models.Trade) string {
		var parts []string
		for _, p := range []string{t.Setup, t.Bias, string(t.Type)} {
			if strings.TrimSpace(p) != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return "No Data"
		}
		return strings.Join(parts, " + ")
	})

	result := make([]GroupStat, 0, len(grouped))
	for _, g := range grouped {
		if g.Count >= minCount {
			result = append(result, g)
		}
	}
	return result
}

// BuildEquityCurve 资金曲线：按离场时间升序累加每笔盈亏
// 在副本上排序，不改动调用方的切片。
func BuildEquityCurve(trades []models.Trade) []EquityPoint {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitDate.Before(sorted[j].ExitDate)
	})

	points := make([]EquityPoint, 0, len(sorted))
	var equity float64
	for _, t := range sorted {
		equity += t.PnL
		points = append(points, EquityPoint{
			Date:             t.ExitDate,
			CumulativeEquity: equity,
			TradePnl:         t.PnL,
		})
	}
	return points
}

// BuildCalendar 把指定年月内的交易按离场日聚合
// 没有交易的日期不出现在结果里，调用方以键是否存在区分"无数据"和"盈亏为零"。
func BuildCalendar(trades []models.Trade, year int, month time.Month) map[int]DayStat {
	days := make(map[int]DayStat)
	for _, t := range trades {
		if t.ExitDate.Year() != year || t.ExitDate.Month() != month {
			continue
		}
		d := days[t.ExitDate.Day()]
		d.Pnl += t.PnL
		d.Count++
		days[t.ExitDate.Day()] = d
	}
	return days
}
