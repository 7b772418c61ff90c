package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valiflooz/chaouch-capital/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func sampleTrade(pnl float64, exit time.Time) models.Trade {
	return models.Trade{
		Ticker:   "AAPL",
		Type:     models.TradeTypeLong,
		ExitDate: exit,
		PnL:      pnl,
		Status:   models.DeriveStatus(pnl),
	}
}

func TestFilterByWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		sampleTrade(10, day(2024, 6, 14)),  // 昨天
		sampleTrade(20, day(2024, 6, 1)),   // 本月第一天
		sampleTrade(30, day(2024, 5, 20)),  // 上个月
		sampleTrade(40, day(2024, 1, 2)),   // 今年年初
		sampleTrade(50, day(2023, 12, 31)), // 去年
	}

	assert.Len(t, FilterByWindow(trades, WindowAll, now, time.Time{}), 5)
	assert.Len(t, FilterByWindow(trades, Window7D, now, time.Time{}), 1)
	assert.Len(t, FilterByWindow(trades, Window30D, now, time.Time{}), 3)
	assert.Len(t, FilterByWindow(trades, WindowMTD, now, time.Time{}), 2)
	assert.Len(t, FilterByWindow(trades, WindowYTD, now, time.Time{}), 4)
}

func TestFilterByWindowCustomStartsAtMidnight(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		sampleTrade(10, time.Date(2024, 5, 20, 0, 30, 0, 0, time.UTC)),
		sampleTrade(20, time.Date(2024, 5, 19, 23, 30, 0, 0, time.UTC)),
	}

	custom := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	filtered := FilterByWindow(trades, WindowCustom, now, custom)
	// 自定义起点取当天零点，当天凌晨的交易包含在内
	require.Len(t, filtered, 1)
	assert.Equal(t, 10.0, filtered[0].PnL)

	// 未提供起始日期时不过滤
	assert.Len(t, FilterByWindow(trades, WindowCustom, now, time.Time{}), 2)
}

func TestFilterByWindowPreservesOrder(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		sampleTrade(3, day(2024, 6, 14)),
		sampleTrade(1, day(2024, 6, 10)),
		sampleTrade(2, day(2024, 6, 12)),
	}

	filtered := FilterByWindow(trades, Window30D, now, time.Time{})
	require.Len(t, filtered, 3)
	assert.Equal(t, 3.0, filtered[0].PnL)
	assert.Equal(t, 1.0, filtered[1].PnL)
	assert.Equal(t, 2.0, filtered[2].PnL)
}

func TestParseWindow(t *testing.T) {
	assert.Equal(t, Window7D, ParseWindow("7d"))
	assert.Equal(t, WindowMTD, ParseWindow(" MTD "))
	assert.Equal(t, WindowAll, ParseWindow("whatever"))
	assert.Equal(t, WindowAll, ParseWindow(""))
}

func TestComputeDashboardStats(t *testing.T) {
	trades := []models.Trade{
		sampleTrade(100, day(2024, 6, 1)),
		sampleTrade(50, day(2024, 6, 2)),
		sampleTrade(-60, day(2024, 6, 3)),
		sampleTrade(0, day(2024, 6, 4)), // 盈亏平衡计入亏损侧
	}

	stats := ComputeDashboardStats(trades)
	assert.Equal(t, 4, stats.TotalTrades)
	assert.Equal(t, 50.0, stats.WinRate)
	assert.Equal(t, 90.0, stats.TotalPnl)
	assert.Equal(t, 75.0, stats.AvgWin)
	assert.Equal(t, -30.0, stats.AvgLoss)
	assert.InDelta(t, 2.5, stats.ProfitFactor, 1e-9)
	assert.Equal(t, 100.0, stats.BestTrade)
	assert.Equal(t, -60.0, stats.WorstTrade)
}

func TestComputeDashboardStatsEmpty(t *testing.T) {
	stats := ComputeDashboardStats(nil)
	assert.Equal(t, 0, stats.TotalTrades)
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Equal(t, 0.0, stats.ProfitFactor)
	assert.Equal(t, 0.0, stats.BestTrade)
	assert.Equal(t, 0.0, stats.WorstTrade)
}

func TestProfitFactorSentinel(t *testing.T) {
	// 只有盈利没有亏损时，盈亏比取哨兵值
	stats := ComputeDashboardStats([]models.Trade{
		sampleTrade(60, day(2024, 6, 1)),
		sampleTrade(40, day(2024, 6, 2)),
	})
	assert.Equal(t, float64(ProfitFactorCap), stats.ProfitFactor)

	// 全部盈亏平衡时为 0
	stats = ComputeDashboardStats([]models.Trade{
		sampleTrade(0, day(2024, 6, 1)),
	})
	assert.Equal(t, 0.0, stats.ProfitFactor)
}

func TestGroupTrades(t *testing.T) {
	trades := []models.Trade{
		{Setup: "Breakout", PnL: 100, ExitDate: day(2024, 6, 1)},
		{Setup: "Breakout", PnL: -40, ExitDate: day(2024, 6, 2)},
		{Setup: "Reversal", PnL: 200, ExitDate: day(2024, 6, 3)},
		{Setup: "", PnL: 0, ExitDate: day(2024, 6, 4)},
	}

	groups := GroupTrades(trades, func(t models.Trade) string { return t.Setup })
	require.Len(t, groups, 3)

	// 按总盈亏降序
	assert.Equal(t, "Reversal", groups[0].Label)
	assert.Equal(t, "Breakout", groups[1].Label)
	assert.Equal(t, "Unspecified", groups[2].Label)

	breakout := groups[1]
	assert.Equal(t, 2, breakout.Count)
	assert.Equal(t, 1, breakout.Wins)
	assert.Equal(t, 1, breakout.Losses)
	assert.Equal(t, 50.0, breakout.WinRate)
	assert.Equal(t, 60.0, breakout.Pnl)

	// 盈亏平衡计为 loss
	unspecified := groups[2]
	assert.Equal(t, 0, unspecified.Wins)
	assert.Equal(t, 1, unspecified.Losses)
}

func TestGroupTradesPartitionSum(t *testing.T) {
	trades := []models.Trade{
		{Setup: "A", PnL: 12.5},
		{Setup: "B", PnL: -7.25},
		{Setup: "A", PnL: 3},
		{Setup: "", PnL: 42},
	}

	var total float64
	for _, tr := range trades {
		total += tr.PnL
	}

	var grouped float64
	for _, g := range GroupTrades(trades, func(t models.Trade) string { return t.Setup }) {
		grouped += g.Pnl
	}
	assert.InDelta(t, total, grouped, 1e-9)
}

func TestCombinationStats(t *testing.T) {
	trades := []models.Trade{
		{Setup: "Breakout", Bias: "Bullish", Type: models.TradeTypeLong, PnL: 100},
		{Setup: "Breakout", Bias: "Bullish", Type: models.TradeTypeLong, PnL: 50},
		{Setup: "Reversal", Type: models.TradeTypeShort, PnL: 500}, // 只出现一次，被噪声过滤
		{PnL: 10},
		{PnL: -5},
	}

	combos := CombinationStats(trades, CombinationMinCount)
	require.Len(t, combos, 2)
	assert.Equal(t, "Breakout + Bullish + Long", combos[0].Label)
	assert.Equal(t, 150.0, combos[0].Pnl)
	assert.Equal(t, "No Data", combos[1].Label)
	assert.Equal(t, 2, combos[1].Count)
}

func TestCombinationStatsSkipsEmptyParts(t *testing.T) {
	trades := []models.Trade{
		{Setup: "Breakout", Type: models.TradeTypeShort, PnL: 10},
		{Setup: "Breakout", Type: models.TradeTypeShort, PnL: 20},
	}

	combos := CombinationStats(trades, CombinationMinCount)
	require.Len(t, combos, 1)
	assert.Equal(t, "Breakout + Short", combos[0].Label)
}

func TestBuildEquityCurve(t *testing.T) {
	trades := []models.Trade{
		sampleTrade(-20, day(2024, 6, 3)),
		sampleTrade(100, day(2024, 6, 1)),
		sampleTrade(50, day(2024, 6, 2)),
	}

	points := BuildEquityCurve(trades)
	require.Len(t, points, 3)

	assert.Equal(t, 100.0, points[0].CumulativeEquity)
	assert.Equal(t, 150.0, points[1].CumulativeEquity)
	assert.Equal(t, 130.0, points[2].CumulativeEquity)
	assert.Equal(t, -20.0, points[2].TradePnl)
	assert.Equal(t, day(2024, 6, 3), points[2].Date)

	// 原切片顺序不受影响
	assert.Equal(t, -20.0, trades[0].PnL)
}

func TestBuildCalendar(t *testing.T) {
	trades := []models.Trade{
		sampleTrade(100, day(2024, 6, 3)),
		sampleTrade(-40, day(2024, 6, 3)),
		sampleTrade(25, day(2024, 6, 10)),
		sampleTrade(999, day(2024, 5, 3)), // 不在目标月份
	}

	days := BuildCalendar(trades, 2024, time.June)
	require.Len(t, days, 2)

	assert.Equal(t, 60.0, days[3].Pnl)
	assert.Equal(t, 2, days[3].Count)
	assert.Equal(t, 25.0, days[10].Pnl)
	assert.Equal(t, 1, days[10].Count)

	// 没有交易的日期不出现在结果中
	_, ok := days[4]
	assert.False(t, ok)
}

func TestBreakdownKey(t *testing.T) {
	trade := models.Trade{
		Setup:  "Breakout",
		Bias:   "Bearish",
		Type:   models.TradeTypeShort,
		POI:    "OB",
		Target: "FVG",
	}

	assert.Equal(t, "Breakout", BreakdownKey("setup")(trade))
	assert.Equal(t, "Bearish", BreakdownKey("bias")(trade))
	assert.Equal(t, "Short", BreakdownKey("type")(trade))
	assert.Equal(t, "OB", BreakdownKey("poi")(trade))
	assert.Equal(t, "FVG", BreakdownKey("target")(trade))
	// 未知维度回落到 setup
	assert.Equal(t, "Breakout", BreakdownKey("unknown")(trade))
}
