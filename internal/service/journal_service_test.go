package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/pkg/csvimport"
)

func TestRecordToTrade(t *testing.T) {
	exit := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	rec := csvimport.Record{
		Ticker:     "AAPL",
		Type:       csvimport.TypeLong,
		EntryDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		ExitDate:   exit,
		EntryPrice: 100,
		ExitPrice:  110,
		Quantity:   10,
		Pnl:        100,
		Setup:      "Breakout",
	}

	trade := recordToTrade(rec)
	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, "AAPL", trade.Ticker)
	assert.Equal(t, models.TradeTypeLong, trade.Type)
	assert.Equal(t, 100.0, trade.PnL)
	assert.InDelta(t, 10.0, trade.PnLPercentage, 1e-9)
	assert.Equal(t, models.TradeStatusWin, trade.Status)
	assert.Equal(t, exit, trade.ExitDate)
}

func TestRecordToTradeStatusFollowsPnl(t *testing.T) {
	// 盈亏直接取文件里的值，状态跟着盈亏符号走
	rec := csvimport.Record{
		Ticker: "SPY",
		Type:   csvimport.TypeShort,
		Pnl:    -55,
	}

	trade := recordToTrade(rec)
	assert.Equal(t, models.TradeStatusLoss, trade.Status)
	assert.Equal(t, 0.0, trade.PnLPercentage)
}

func TestRecordToTradeDerivationIsPositionIndependent(t *testing.T) {
	rec := csvimport.Record{
		Ticker:     "EURUSD",
		Type:       csvimport.TypeLong,
		EntryPrice: 1.1,
		ExitPrice:  1.2,
		Quantity:   1000,
		Pnl:        100,
	}

	a := recordToTrade(rec)
	b := recordToTrade(rec)
	assert.Equal(t, a.PnL, b.PnL)
	assert.Equal(t, a.PnLPercentage, b.PnLPercentage)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDedupeTrades(t *testing.T) {
	trades := []models.Trade{
		{ID: "a", Ticker: "AAPL", PnL: 1},
		{ID: "b", Ticker: "TSLA", PnL: 2},
		{ID: "a", Ticker: "DUPLICATE", PnL: 3},
		{Ticker: "NOID", PnL: 4},
	}

	deduped := dedupeTrades(trades)
	require.Len(t, deduped, 3)

	// 重复 ID 保留先出现的那条
	assert.Equal(t, "AAPL", deduped[0].Ticker)
	assert.Equal(t, "TSLA", deduped[1].Ticker)

	// 缺失的 ID 补新生成的
	assert.Equal(t, "NOID", deduped[2].Ticker)
	assert.NotEmpty(t, deduped[2].ID)
}
