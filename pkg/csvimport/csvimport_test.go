package csvimport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importedAt = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func TestParseBasic(t *testing.T) {
	text := "Ticker,Type,Entry Price,Exit Price,Quantity,Stop\n" +
		"AAPL,Long,100,110,10,95\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "AAPL", rec.Ticker)
	assert.Equal(t, TypeLong, rec.Type)
	assert.Equal(t, 100.0, rec.EntryPrice)
	assert.Equal(t, 110.0, rec.ExitPrice)
	assert.Equal(t, 10.0, rec.Quantity)
}

func TestParseHeaderAliases(t *testing.T) {
	text := "Symbol,Side,Open Price,Close Price,Size,Commission,Net\n" +
		"btcusdt,SELL SHORT,50000,49000,0.5,12.5,487.5\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "BTCUSDT", rec.Ticker)
	assert.Equal(t, TypeShort, rec.Type)
	assert.Equal(t, 50000.0, rec.EntryPrice)
	assert.Equal(t, 49000.0, rec.ExitPrice)
	assert.Equal(t, 0.5, rec.Quantity)
	assert.Equal(t, 12.5, rec.Fees)
	assert.Equal(t, 487.5, rec.Pnl)
}

func TestParseFirstMatchingColumnWins(t *testing.T) {
	// entry price 的关键字包含 "entry"，第一个命中的列生效
	text := "Entry Price,Entry Time\n" +
		"123.45,2024-01-02\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, 123.45, records[0].EntryPrice)
}

func TestParseQuotedFields(t *testing.T) {
	text := "Ticker,Notes,PnL\n" +
		`TSLA,"pulled back, then reversed",-150` + "\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "TSLA", rec.Ticker)
	assert.Equal(t, "pulled back, then reversed", rec.Notes)
	assert.Equal(t, -150.0, rec.Pnl)
}

func TestParseNumericScrubbing(t *testing.T) {
	text := "Ticker,PnL,Fees\n" +
		`EURUSD,"$1,234.50",$2.30` + "\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, 1234.50, records[0].Pnl)
	assert.Equal(t, 2.30, records[0].Fees)
}

func TestParseInvalidNumberFallsBackToZero(t *testing.T) {
	text := "Ticker,PnL\n" +
		"SPY,n/a\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].Pnl)
}

func TestParseBias(t *testing.T) {
	text := "Ticker,Bias,PnL\n" +
		"ES,bullish,100\n" +
		"NQ,Bearish setup,-50\n" +
		"YM,neutral,10\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 3)
	assert.Equal(t, BiasBullish, records[0].Bias)
	assert.Equal(t, BiasBearish, records[1].Bias)
	assert.Empty(t, records[2].Bias)
}

func TestParseDates(t *testing.T) {
	text := "Ticker,Entry Date,Exit Date,PnL\n" +
		"GBPUSD,2024-03-01,2024-03-02,75\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.EntryDate)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), rec.ExitDate)
}

func TestParseExitDateFallsBackToEntryDate(t *testing.T) {
	text := "Ticker,Date,PnL\n" +
		"AUDUSD,2024-04-10,30\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), rec.EntryDate)
	assert.Equal(t, rec.EntryDate, rec.ExitDate)
}

func TestParseUnparsableDateFallsBackToNow(t *testing.T) {
	text := "Ticker,Entry Date,PnL\n" +
		"USDJPY,someday,20\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, importedAt, records[0].EntryDate)
}

func TestParseMissingTickerColumn(t *testing.T) {
	text := "PnL,Setup\n" +
		"100,Breakout\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, "UNKNOWN", records[0].Ticker)
	assert.Equal(t, "Breakout", records[0].Setup)
}

func TestParseSkipsShortAndBlankLines(t *testing.T) {
	text := "Ticker,Type,PnL\n" +
		"\n" +
		"garbage\n" +
		"MSFT,Long,42\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, "MSFT", records[0].Ticker)
}

func TestParseHeaderOnly(t *testing.T) {
	assert.Empty(t, Parse("Ticker,Type,PnL\n", importedAt))
	assert.Empty(t, Parse("", importedAt))
}

func TestParseCRLF(t *testing.T) {
	text := "Ticker,PnL\r\nAMZN,55\r\n"

	records := Parse(text, importedAt)
	require.Len(t, records, 1)
	assert.Equal(t, "AMZN", records[0].Ticker)
	assert.Equal(t, 55.0, records[0].Pnl)
}
