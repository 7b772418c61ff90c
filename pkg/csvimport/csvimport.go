// Package csvimport 把第三方导出的 CSV 文本解析为标准化的交易记录字段。
// 列的识别基于表头关键字而不是固定位置，兼容不同平台的导出格式。
package csvimport

import (
	"strconv"
	"strings"
	"time"
)

// 交易方向取值
const (
	TypeLong  = "Long"
	TypeShort = "Short"
)

// 多空倾向取值
const (
	BiasBullish = "Bullish"
	BiasBearish = "Bearish"
)

// Record 从一行 CSV 解析出的标准化交易字段
// 数值解析失败统一回落为 0，日期解析失败回落为导入时刻，由调用方做最终派生。
type Record struct {
	Ticker     string
	Type       string // Long/Short
	Bias       string // Bullish/Bearish，空表示未识别
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	Fees       float64
	Pnl        float64
	Setup      string
	Notes      string
	POI        string
	Target     string
}

// 逻辑字段名
const (
	fieldTicker     = "ticker"
	fieldType       = "type"
	fieldEntryDate  = "entry_date"
	fieldExitDate   = "exit_date"
	fieldEntryPrice = "entry_price"
	fieldExitPrice  = "exit_price"
	fieldQuantity   = "quantity"
	fieldPnl        = "pnl"
	fieldSetup      = "setup"
	fieldNotes      = "notes"
	fieldBias       = "bias"
	fieldPOI        = "poi"
	fieldTarget     = "target"
	fieldFees       = "fees"
)

// fieldAliases 逻辑字段 → 表头关键字映射表
// 按列顺序扫描，第一个包含任一关键字的表头列生效。
// 关键字表作为纯数据维护，便于单独测试和扩展。
var fieldAliases = []struct {
	field    string
	keywords []string
}{
	{fieldTicker, []string{"ticker", "symbol", "pair", "instrument"}},
	{fieldType, []string{"type", "direction", "side"}},
	{fieldEntryDate, []string{"entry date", "open date", "date", "time"}},
	{fieldExitDate, []string{"exit date", "close date"}},
	{fieldEntryPrice, []string{"entry price", "entry", "open price"}},
	{fieldExitPrice, []string{"exit price", "exit", "close price"}},
	{fieldQuantity, []string{"quantity", "qty", "size", "volume"}},
	{fieldPnl, []string{"pnl", "profit", "loss", "net", "p&l"}},
	{fieldSetup, []string{"setup", "strategy", "system"}},
	{fieldNotes, []string{"notes", "comment", "description"}},
	{fieldBias, []string{"bias"}},
	{fieldPOI, []string{"poi", "interest"}},
	{fieldTarget, []string{"target", "take profit"}},
	{fieldFees, []string{"fee", "commission"}},
}

// Parse 解析整段 CSV 文本
// 第一行必须是表头；不足两行时返回空结果。
// 无法识别的行静默跳过，不会因单行数据问题中断整体导入。
func Parse(text string, now time.Time) []Record {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil
	}

	headers := parseHeaders(lines[0])
	columns := resolveColumns(headers)

	var records []Record
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		values := splitQuoted(line)
		if len(values) < 2 {
			// 字段太少，按无效行处理
			continue
		}

		records = append(records, buildRecord(values, columns, now))
	}
	return records
}

func splitLines(text string) []string {
	return strings.FieldsFunc(strings.ReplaceAll(text, "\r\n", "\n"), func(r rune) bool {
		return r == '\n'
	})
}

func parseHeaders(line string) []string {
	parts := strings.Split(strings.ToLower(line), ",")
	headers := make([]string, len(parts))
	for i, p := range parts {
		headers[i] = stripQuotes(strings.TrimSpace(p))
	}
	return headers
}

// resolveColumns 根据关键字表定位每个逻辑字段所在的列，未命中为 -1
func resolveColumns(headers []string) map[string]int {
	columns := make(map[string]int, len(fieldAliases))
	for _, alias := range fieldAliases {
		columns[alias.field] = findColumn(headers, alias.keywords)
	}
	return columns
}

func findColumn(headers []string, keywords []string) int {
	for i, h := range headers {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				return i
			}
		}
	}
	return -1
}

// splitQuoted 按逗号切分一行，双引号内的逗号不作为分隔符
// 判定标准：当前位置之前出现过的引号数为偶数时，逗号才是分隔符。
func splitQuoted(line string) []string {
	var values []string
	var sb strings.Builder
	quotes := 0

	for _, r := range line {
		switch {
		case r == '"':
			quotes++
			sb.WriteRune(r)
		case r == ',' && quotes%2 == 0:
			values = append(values, cleanValue(sb.String()))
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	values = append(values, cleanValue(sb.String()))
	return values
}

func cleanValue(v string) string {
	return stripQuotes(strings.TrimSpace(v))
}

func stripQuotes(v string) string {
	v = strings.TrimPrefix(v, `"`)
	return strings.TrimSuffix(v, `"`)
}

func buildRecord(values []string, columns map[string]int, now time.Time) Record {
	value := func(field string) (string, bool) {
		i := columns[field]
		if i < 0 || i >= len(values) {
			return "", false
		}
		return values[i], true
	}

	rec := Record{
		Ticker:     "UNKNOWN",
		Type:       TypeLong,
		EntryDate:  now,
		ExitDate:   now,
		EntryPrice: parseNumber(values, columns, fieldEntryPrice),
		ExitPrice:  parseNumber(values, columns, fieldExitPrice),
		Quantity:   parseNumber(values, columns, fieldQuantity),
		Fees:       parseNumber(values, columns, fieldFees),
		Pnl:        parseNumber(values, columns, fieldPnl),
	}

	if v, ok := value(fieldTicker); ok {
		rec.Ticker = strings.ToUpper(v)
	}
	if v, ok := value(fieldType); ok && strings.Contains(strings.ToLower(v), "short") {
		rec.Type = TypeShort
	}
	if v, ok := value(fieldSetup); ok {
		rec.Setup = v
	}
	if v, ok := value(fieldNotes); ok {
		rec.Notes = v
	}
	if v, ok := value(fieldPOI); ok {
		rec.POI = v
	}
	if v, ok := value(fieldTarget); ok {
		rec.Target = v
	}
	if v, ok := value(fieldBias); ok {
		b := strings.ToLower(v)
		if strings.Contains(b, "bull") {
			rec.Bias = BiasBullish
		}
		if strings.Contains(b, "bear") {
			rec.Bias = BiasBearish
		}
	}

	if v, ok := value(fieldEntryDate); ok && v != "" {
		rec.EntryDate = parseDate(v, now)
	}
	if v, ok := value(fieldExitDate); ok && v != "" {
		rec.ExitDate = parseDate(v, now)
	} else if columns[fieldEntryDate] >= 0 {
		// 没有离场时间时，以入场时间作为离场时间
		rec.ExitDate = rec.EntryDate
	}

	return rec
}

// parseNumber 数值字段的宽松解析：仅保留数字、小数点和负号后再转换，失败回落为 0
func parseNumber(values []string, columns map[string]int, field string) float64 {
	i := columns[field]
	if i < 0 || i >= len(values) {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, values[i])

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// dateLayouts 日期解析依次尝试的格式
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDate 宽松的日期解析，全部格式失败时回落为导入时刻
func parseDate(v string, now time.Time) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return now
}
