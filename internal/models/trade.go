package models

import (
	"math"
	"strings"
	"time"
)

// TradeType 交易方向
type TradeType string

const (
	TradeTypeLong  TradeType = "Long"
	TradeTypeShort TradeType = "Short"
)

// Multiplier 方向系数，做多为 +1，做空为 -1
func (t TradeType) Multiplier() float64 {
	if t == TradeTypeShort {
		return -1
	}
	return 1
}

// TradeStatus 交易结果状态
type TradeStatus string

const (
	TradeStatusWin       TradeStatus = "Win"
	TradeStatusLoss      TradeStatus = "Loss"
	TradeStatusBreakEven TradeStatus = "Break Even"
	TradeStatusOpen      TradeStatus = "Open" // 预留给未平仓交易，当前推导逻辑不会产生
)

// Trade 交易日志记录
// JSON 字段名与备份文件格式一一对应（camelCase），导出的文件可以原样恢复。
// 可选的数值字段用 omitempty，0 即视为未设置，与备份格式中字段缺省的语义一致。
type Trade struct {
	ID            string      `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Ticker        string      `gorm:"type:varchar(20);not null;index" json:"ticker"`    // 交易品种，统一大写
	EntryDate     time.Time   `gorm:"not null" json:"entryDate"`                        // 入场时间
	ExitDate      time.Time   `gorm:"not null;index" json:"exitDate"`                   // 离场时间，所有按时间的统计都以它为准
	Type          TradeType   `gorm:"type:varchar(10);not null" json:"type"`            // Long/Short
	Bias          string      `gorm:"type:varchar(10)" json:"bias,omitempty"`           // Bullish/Bearish，空表示未标记
	EntryPrice    float64     `gorm:"type:decimal(20,8)" json:"entryPrice"`             // 入场价，0 表示未知（快速记录模式）
	StopLoss      float64     `gorm:"type:decimal(20,8)" json:"stopLoss,omitempty"`     // 止损价，0 表示未设置
	ExitPrice     float64     `gorm:"type:decimal(20,8)" json:"exitPrice"`              // 离场价
	Quantity      float64     `gorm:"type:decimal(20,8)" json:"quantity"`               // 数量
	Fees          float64     `gorm:"type:decimal(20,8)" json:"fees"`                   // 手续费
	Setup         string      `gorm:"type:varchar(100)" json:"setup"`                   // 交易模型，空表示未分类
	POI           string      `gorm:"type:varchar(100)" json:"poi,omitempty"`           // 关注点位
	Target        string      `gorm:"type:varchar(100)" json:"target,omitempty"`        // 目标位
	InitialRisk   float64     `gorm:"type:decimal(20,8)" json:"initialRisk,omitempty"`  // 初始风险金额（美元）
	RMultiple     float64     `gorm:"type:decimal(10,2)" json:"rMultiple,omitempty"`    // R 倍数，保留两位小数
	Notes         string      `gorm:"type:text" json:"notes"`                           // 备注
	PnL           float64     `gorm:"type:decimal(20,8);not null" json:"pnl"`           // 净盈亏（已扣手续费）
	PnLPercentage float64     `gorm:"type:decimal(10,4)" json:"pnlPercentage"`          // 百分比收益，入场价为 0 时无意义
	Status        TradeStatus `gorm:"type:varchar(12);not null" json:"status"`          // 由 pnl 符号推导，创建后不再单独修改
	ScreenshotURL string      `gorm:"type:text" json:"screenshotUrl,omitempty"`         // 截图链接
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"-"`
}

// TableName 指定表名
func (Trade) TableName() string {
	return "trades"
}

// HasPriceData 快速记录模式下入场价为 0，此时百分比收益无意义
func (t *Trade) HasPriceData() bool {
	return t.EntryPrice > 0
}

// DeriveStatus 根据净盈亏推导交易状态
func DeriveStatus(pnl float64) TradeStatus {
	switch {
	case pnl > 0:
		return TradeStatusWin
	case pnl < 0:
		return TradeStatusLoss
	default:
		return TradeStatusBreakEven
	}
}

// NetPnl 计算净盈亏：(离场价 - 入场价) × 数量 × 方向系数 - 手续费
func NetPnl(entryPrice, exitPrice, quantity, fees float64, typ TradeType) float64 {
	gross := (exitPrice - entryPrice) * quantity * typ.Multiplier()
	return gross - fees
}

// PnlPercentage 计算百分比收益，入场价为 0 时返回 0
func PnlPercentage(entryPrice, exitPrice float64, typ TradeType) float64 {
	if entryPrice <= 0 {
		return 0
	}
	return (exitPrice - entryPrice) / entryPrice * 100 * typ.Multiplier()
}

// PriceRMultiple 基于价格计算 R 倍数
// 风险间距必须为正数，否则视为止损设置有误，返回 ok=false。
func PriceRMultiple(entryPrice, exitPrice, stopLoss float64, typ TradeType) (float64, bool) {
	if stopLoss <= 0 {
		return 0, false
	}

	var priceDiff, riskDiff float64
	if typ == TradeTypeLong {
		priceDiff = exitPrice - entryPrice
		riskDiff = entryPrice - stopLoss
	} else {
		priceDiff = entryPrice - exitPrice
		riskDiff = stopLoss - entryPrice
	}

	if riskDiff <= 0 {
		return 0, false
	}
	return priceDiff / riskDiff, true
}

// RiskRMultiple 基于风险金额计算 R 倍数（快速记录模式）
func RiskRMultiple(pnl, initialRisk float64) (float64, bool) {
	if initialRisk <= 0 {
		return 0, false
	}
	return pnl / initialRisk, true
}

// roundR R 倍数统一保留两位小数
func roundR(r float64) float64 {
	return math.Round(r*100) / 100
}

// DetailedEntry 详细模式录入的原始输入
type DetailedEntry struct {
	Ticker        string
	EntryDate     time.Time
	ExitDate      time.Time
	Type          TradeType
	Bias          string
	EntryPrice    float64
	StopLoss      float64
	ExitPrice     float64
	Quantity      float64
	Fees          float64
	Setup         string
	POI           string
	Target        string
	Notes         string
	ScreenshotURL string
}

// NewDetailedTrade 由详细输入构造完整交易记录
// 所有派生字段在这里一次性算好，记录不会处于 status 与 pnl 符号不一致的状态。
func NewDetailedTrade(id string, e DetailedEntry) *Trade {
	pnl := NetPnl(e.EntryPrice, e.ExitPrice, e.Quantity, e.Fees, e.Type)

	t := &Trade{
		ID:            id,
		Ticker:        strings.ToUpper(e.Ticker),
		EntryDate:     e.EntryDate,
		ExitDate:      e.ExitDate,
		Type:          e.Type,
		Bias:          e.Bias,
		EntryPrice:    e.EntryPrice,
		ExitPrice:     e.ExitPrice,
		Quantity:      e.Quantity,
		Fees:          e.Fees,
		Setup:         e.Setup,
		POI:           e.POI,
		Target:        e.Target,
		Notes:         e.Notes,
		PnL:           pnl,
		PnLPercentage: PnlPercentage(e.EntryPrice, e.ExitPrice, e.Type),
		Status:        DeriveStatus(pnl),
		ScreenshotURL: e.ScreenshotURL,
	}

	if e.StopLoss > 0 {
		t.StopLoss = e.StopLoss
		if risk := math.Abs(e.EntryPrice-e.StopLoss) * e.Quantity; risk > 0 {
			t.InitialRisk = risk
		}
		if r, ok := PriceRMultiple(e.EntryPrice, e.ExitPrice, e.StopLoss, e.Type); ok && r != 0 {
			t.RMultiple = roundR(r)
		}
	}

	return t
}

// QuickEntry 快速记录模式的原始输入，只有净盈亏和风险金额，没有价格
type QuickEntry struct {
	Ticker        string
	EntryDate     time.Time
	ExitDate      time.Time
	Type          TradeType
	Bias          string
	Quantity      float64
	Fees          float64
	NetPnl        float64
	RiskAmount    float64
	Setup         string
	POI           string
	Target        string
	Notes         string
	ScreenshotURL string
}

// NewQuickTrade 由快速输入构造交易记录，价格字段置 0 表示未知
func NewQuickTrade(id string, e QuickEntry) *Trade {
	t := &Trade{
		ID:        id,
		Ticker:    strings.ToUpper(e.Ticker),
		EntryDate: e.EntryDate,
		ExitDate:  e.ExitDate,
		Type:      e.Type,
		Bias:      e.Bias,
		Quantity:  e.Quantity,
		Fees:      e.Fees,
		Setup:     e.Setup,
		POI:       e.POI,
		Target:    e.Target,
		Notes:     e.Notes,
		PnL:       e.NetPnl,
		// 没有价格数据，百分比收益无从算起
		PnLPercentage: 0,
		Status:        DeriveStatus(e.NetPnl),
		ScreenshotURL: e.ScreenshotURL,
	}

	if e.RiskAmount > 0 {
		t.InitialRisk = e.RiskAmount
		if r, ok := RiskRMultiple(e.NetPnl, e.RiskAmount); ok && r != 0 {
			t.RMultiple = roundR(r)
		}
	}

	return t
}
