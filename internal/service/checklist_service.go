package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/repo"
	"github.com/valiflooz/chaouch-capital/internal/xe"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultChecklistItems 首次启动时种子化的清单内容
var defaultChecklistItems = map[string][]string{
	models.ChecklistGroupPreMarket: {
		"Check Economic Calendar for High Impact News",
		"Review Daily/4H Market Structure",
		"Mark Key Support & Resistance Levels",
		"Define Risk per Trade (Max 1-2%)",
		"Clear Mental State / No Distractions",
	},
	models.ChecklistGroupExecution: {
		"Trend Alignment (HTF Direction)",
		"Clean Liquidity Sweep / Key Level Test",
		"Valid Entry Signal (Candlestick Pattern)",
		"Minimum 1:2 Risk to Reward Ratio",
		"No High Impact News During Trade Duration",
	},
}

// ChecklistService 交易纪律清单服务
type ChecklistService struct {
	logger *zap.Logger

	*orz.Service
	*repo.ChecklistRepo
}

func NewChecklistService(db *gorm.DB, logger *zap.Logger) *ChecklistService {
	return &ChecklistService{
		logger:        logger,
		Service:       orz.NewService(db),
		ChecklistRepo: repo.NewChecklistRepo(db),
	}
}

// Initialize 库里没有任何条目时写入默认清单
func (s *ChecklistService) Initialize(ctx context.Context) {
	count, err := s.ChecklistRepo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count checklist items", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	for groupKey, texts := range defaultChecklistItems {
		for i, text := range texts {
			item := models.ChecklistItem{
				ID:       ulid.Make().String(),
				GroupKey: groupKey,
				Text:     text,
				Position: i + 1,
			}
			if err := s.ChecklistRepo.Create(ctx, &item); err != nil {
				s.logger.Error("failed to seed checklist item", zap.Error(err))
				return
			}
		}
	}
	s.logger.Info("seeded default checklist items")
}

// List 获取指定分组的条目
func (s *ChecklistService) List(ctx context.Context, groupKey string) ([]models.ChecklistItem, error) {
	if err := validateGroup(groupKey); err != nil {
		return nil, err
	}
	return s.ChecklistRepo.FindByGroup(ctx, groupKey)
}

// Add 在分组末尾追加一个条目
func (s *ChecklistService) Add(ctx context.Context, groupKey, text string) (*models.ChecklistItem, error) {
	if err := validateGroup(groupKey); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, xe.ErrInvalidParams
	}

	position, err := s.ChecklistRepo.NextPosition(ctx, groupKey)
	if err != nil {
		return nil, err
	}

	item := models.ChecklistItem{
		ID:       ulid.Make().String(),
		GroupKey: groupKey,
		Text:     text,
		Position: position,
	}
	if err := s.ChecklistRepo.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Toggle 翻转条目的勾选状态
func (s *ChecklistService) Toggle(ctx context.Context, id string) (*models.ChecklistItem, error) {
	item, err := s.ChecklistRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xe.ErrChecklistNotFound
		}
		return nil, err
	}

	item.IsCompleted = !item.IsCompleted
	if err := s.ChecklistRepo.Save(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete 删除一个条目
func (s *ChecklistService) Delete(ctx context.Context, id string) error {
	if _, err := s.ChecklistRepo.FindById(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrChecklistNotFound
		}
		return err
	}
	return s.ChecklistRepo.DeleteById(ctx, id)
}

// Reset 取消分组内全部条目的勾选
func (s *ChecklistService) Reset(ctx context.Context, groupKey string) error {
	if err := validateGroup(groupKey); err != nil {
		return err
	}
	return s.ChecklistRepo.ResetGroup(ctx, groupKey)
}

func validateGroup(groupKey string) error {
	if groupKey != models.ChecklistGroupPreMarket && groupKey != models.ChecklistGroupExecution {
		return xe.ErrInvalidParams
	}
	return nil
}
