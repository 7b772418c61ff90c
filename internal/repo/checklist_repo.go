package repo

import (
	"context"

	"github.com/go-orz/orz"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"gorm.io/gorm"
)

func NewChecklistRepo(db *gorm.DB) *ChecklistRepo {
	return &ChecklistRepo{
		Repository: orz.NewRepository[models.ChecklistItem, string](db),
	}
}

type ChecklistRepo struct {
	orz.Repository[models.ChecklistItem, string]
}

// FindByGroup 获取指定分组的清单条目，按展示顺序排列
func (r ChecklistRepo) FindByGroup(ctx context.Context, groupKey string) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("group_key = ?", groupKey).
		Order("position ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// ResetGroup 取消指定分组中全部条目的勾选状态
func (r ChecklistRepo) ResetGroup(ctx context.Context, groupKey string) error {
	db := r.GetDB(ctx)
	return db.Table(r.GetTableName()).
		Where("group_key = ?", groupKey).
		Update("is_completed", false).Error
}

// NextPosition 计算分组内新条目的展示顺序
func (r ChecklistRepo) NextPosition(ctx context.Context, groupKey string) (int, error) {
	var maxPosition int
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("group_key = ?", groupKey).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition).Error
	return maxPosition + 1, err
}
