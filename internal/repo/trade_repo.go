package repo

import (
	"context"

	"github.com/go-orz/orz"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"gorm.io/gorm"
)

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{
		Repository: orz.NewRepository[models.Trade, string](db),
	}
}

type TradeRepo struct {
	orz.Repository[models.Trade, string]
}

// FindAllOrderByCreatedAt 获取全部交易记录，保持录入顺序
func (r TradeRepo) FindAllOrderByCreatedAt(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("created_at ASC").
		Find(&trades).Error
	return trades, err
}

// FindRecentByExitDate 获取按离场时间倒序的最近 N 笔交易
func (r TradeRepo) FindRecentByExitDate(ctx context.Context, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("exit_date DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}

// DeleteAll 清空全部交易记录（备份恢复与重置时使用）
func (r TradeRepo) DeleteAll(ctx context.Context) error {
	db := r.GetDB(ctx)
	return db.Where("1 = 1").Delete(&models.Trade{}).Error
}
