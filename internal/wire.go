//go:build wireinject
// +build wireinject

package internal

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/valiflooz/chaouch-capital/internal/config"
	"github.com/valiflooz/chaouch-capital/internal/handler"
	"github.com/valiflooz/chaouch-capital/internal/service"
)

var (
	handlerSet = wire.NewSet(
		handler.NewJournalHandler,
		handler.NewChecklistHandler,
	)

	journalSet = wire.NewSet(
		provideOpenAIClient,
		service.NewJournalService,
		service.NewStatsService,
		service.NewCoachService,
		service.NewChecklistService,
		service.NewDigestService,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		journalSet,
		provideTelegram,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}
