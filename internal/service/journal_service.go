package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"github.com/valiflooz/chaouch-capital/internal/config"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/repo"
	"github.com/valiflooz/chaouch-capital/internal/telegram"
	"github.com/valiflooz/chaouch-capital/internal/xe"
	"github.com/valiflooz/chaouch-capital/pkg/csvimport"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JournalService 交易日志服务，负责记录的增删、导入导出
type JournalService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo

	tg           *telegram.Telegram
	telegramConf config.TelegramConf
}

func NewJournalService(db *gorm.DB, logger *zap.Logger, tg *telegram.Telegram, conf *config.Config) *JournalService {
	return &JournalService{
		logger:       logger,
		Service:      orz.NewService(db),
		TradeRepo:    repo.NewTradeRepo(db),
		tg:           tg,
		telegramConf: conf.Telegram,
	}
}

// CreateDetailed 详细模式录入一笔交易
func (s *JournalService) CreateDetailed(ctx context.Context, entry models.DetailedEntry) (*models.Trade, error) {
	trade := models.NewDetailedTrade(ulid.Make().String(), entry)
	if err := s.TradeRepo.Create(ctx, trade); err != nil {
		return nil, err
	}
	s.notifyTrade(trade)
	return trade, nil
}

// CreateQuick 快速模式录入一笔交易，只有盈亏没有价格
func (s *JournalService) CreateQuick(ctx context.Context, entry models.QuickEntry) (*models.Trade, error) {
	trade := models.NewQuickTrade(ulid.Make().String(), entry)
	if err := s.TradeRepo.Create(ctx, trade); err != nil {
		return nil, err
	}
	s.notifyTrade(trade)
	return trade, nil
}

// List 获取全部交易记录
func (s *JournalService) List(ctx context.Context) ([]models.Trade, error) {
	return s.TradeRepo.FindAllOrderByCreatedAt(ctx)
}

// Get 按 ID 获取单条记录
func (s *JournalService) Get(ctx context.Context, id string) (models.Trade, error) {
	trade, err := s.TradeRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Trade{}, xe.ErrTradeNotFound
		}
		return models.Trade{}, err
	}
	return trade, nil
}

// Delete 删除一条记录，物理删除不留痕
func (s *JournalService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.TradeRepo.DeleteById(ctx, id)
}

// RecentTrades 按离场时间取最近 N 笔交易
func (s *JournalService) RecentTrades(ctx context.Context, limit int) ([]models.Trade, error) {
	return s.TradeRepo.FindRecentByExitDate(ctx, limit)
}

// ImportCSV 解析 CSV 并追加到现有记录，整批一起提交
// 一条都没解析出来视为导入失败。
func (s *JournalService) ImportCSV(ctx context.Context, text string) (int, error) {
	records := csvimport.Parse(text, time.Now())
	if len(records) == 0 {
		return 0, xe.ErrCsvNoRows
	}

	trades := make([]models.Trade, 0, len(records))
	for _, rec := range records {
		trades = append(trades, recordToTrade(rec))
	}

	err := s.TradeRepo.GetDB(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(trades, 100).Error
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("imported trades from csv", zap.Int("count", len(trades)))
	return len(trades), nil
}

// recordToTrade 把 CSV 解析结果转成交易记录，派生规则与手工录入一致
// 盈亏直接取文件中的值，百分比收益和状态照常派生。
func recordToTrade(rec csvimport.Record) models.Trade {
	typ := models.TradeType(rec.Type)
	return models.Trade{
		ID:            ulid.Make().String(),
		Ticker:        rec.Ticker,
		EntryDate:     rec.EntryDate,
		ExitDate:      rec.ExitDate,
		Type:          typ,
		Bias:          rec.Bias,
		EntryPrice:    rec.EntryPrice,
		ExitPrice:     rec.ExitPrice,
		Quantity:      rec.Quantity,
		Fees:          rec.Fees,
		Setup:         rec.Setup,
		POI:           rec.POI,
		Target:        rec.Target,
		Notes:         rec.Notes,
		PnL:           rec.Pnl,
		PnLPercentage: models.PnlPercentage(rec.EntryPrice, rec.ExitPrice, typ),
		Status:        models.DeriveStatus(rec.Pnl),
	}
}

// ImportJSON 用备份文件整体替换现有记录
// 备份中的字段原样恢复，不重新派生；文件内重复的 ID 保留先出现的那条。
func (s *JournalService) ImportJSON(ctx context.Context, data []byte) (int, error) {
	var trades []models.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return 0, xe.ErrInvalidBackup
	}

	deduped := dedupeTrades(trades)

	err := s.TradeRepo.GetDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Trade{}).Error; err != nil {
			return err
		}
		if len(deduped) == 0 {
			return nil
		}
		return tx.CreateInBatches(deduped, 100).Error
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("restored trades from backup", zap.Int("count", len(deduped)))
	return len(deduped), nil
}

// dedupeTrades 去掉备份里重复的 ID，保留先出现的那条；缺失的 ID 补新生成的
func dedupeTrades(trades []models.Trade) []models.Trade {
	seen := make(map[string]struct{}, len(trades))
	deduped := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.ID == "" {
			t.ID = ulid.Make().String()
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		deduped = append(deduped, t)
	}
	return deduped
}

// ExportJSON 导出全部记录为带缩进的 JSON，返回内容和带日期的文件名
func (s *JournalService) ExportJSON(ctx context.Context) ([]byte, string, error) {
	trades, err := s.TradeRepo.FindAllOrderByCreatedAt(ctx)
	if err != nil {
		return nil, "", err
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("chaouch_capital_backup_%s.json", time.Now().Format("2006-01-02"))
	return data, filename, nil
}

// notifyTrade 录入成功后推送 Telegram 消息，失败只记日志不影响主流程
func (s *JournalService) notifyTrade(trade *models.Trade) {
	if s.tg == nil || !s.telegramConf.Enabled {
		return
	}

	msg := fmt.Sprintf("*%s* %s %s\n盈亏: %.2f\n状态: %s",
		trade.Ticker, trade.Type, trade.ExitDate.Format("2006-01-02"), trade.PnL, trade.Status)

	go func() {
		if err := s.tg.Notify(s.telegramConf.ChatID, msg); err != nil {
			s.logger.Warn("failed to send telegram notification", zap.Error(err))
		}
	}()
}
