package models

import (
	"time"
)

// 清单分组
const (
	ChecklistGroupPreMarket = "pre_market" // 盘前准备
	ChecklistGroupExecution = "execution"  // 执行纪律
)

// ChecklistItem 交易纪律清单条目
type ChecklistItem struct {
	ID          string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	GroupKey    string    `gorm:"type:varchar(30);not null;index" json:"group"` // 分组，pre_market/execution
	Text        string    `gorm:"type:varchar(200);not null" json:"text"`       // 条目内容
	IsCompleted bool      `gorm:"not null;default:false" json:"isCompleted"`    // 是否已勾选
	Position    int       `gorm:"type:int" json:"position"`                     // 展示顺序
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

// TableName 指定表名
func (ChecklistItem) TableName() string {
	return "checklist_items"
}
