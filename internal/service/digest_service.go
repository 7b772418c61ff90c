package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/valiflooz/chaouch-capital/internal/config"
	"github.com/valiflooz/chaouch-capital/internal/telegram"
	"go.uber.org/zap"
)

// defaultDigestCron 默认每天 22:00 推送当日总结
const defaultDigestCron = "0 22 * * *"

// DigestService 每日总结推送，汇总当天的交易表现发送到 Telegram
type DigestService struct {
	logger *zap.Logger

	journalService *JournalService
	statsService   *StatsService
	tg             *telegram.Telegram
	telegramConf   config.TelegramConf
	cronExpr       string

	cron *cron.Cron
}

func NewDigestService(
	journalService *JournalService,
	statsService *StatsService,
	tg *telegram.Telegram,
	logger *zap.Logger,
	conf *config.Config,
) *DigestService {
	cronExpr := conf.Journal.DigestCron
	if cronExpr == "" {
		cronExpr = defaultDigestCron
	}
	return &DigestService{
		logger:         logger,
		journalService: journalService,
		statsService:   statsService,
		tg:             tg,
		telegramConf:   conf.Telegram,
		cronExpr:       cronExpr,
	}
}

// Start 启动定时任务，Telegram 未启用时直接跳过
func (s *DigestService) Start() error {
	if s.tg == nil || !s.telegramConf.Enabled {
		s.logger.Info("telegram not enabled, daily digest disabled")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cronExpr, func() {
		if err := s.SendDailyDigest(context.Background()); err != nil {
			s.logger.Error("failed to send daily digest", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add digest cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("daily digest scheduled", zap.String("cron_expression", s.cronExpr))
	return nil
}

// Stop 停止定时任务，等待在途任务结束
func (s *DigestService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// BuildDailyDigest 生成当日总结文本，当天没有平仓交易时返回空串
func (s *DigestService) BuildDailyDigest(ctx context.Context) (string, error) {
	trades, err := s.journalService.List(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now()
	days := BuildCalendar(trades, now.Year(), now.Month())
	today, ok := days[now.Day()]
	if !ok {
		return "", nil
	}

	stats := ComputeDashboardStats(FilterByWindow(trades, WindowMTD, now, time.Time{}))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*交易日报 %s*\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("今日交易: %d 笔\n", today.Count))
	sb.WriteString(fmt.Sprintf("今日盈亏: %.2f\n\n", today.Pnl))
	sb.WriteString(fmt.Sprintf("本月胜率: %.1f%%\n", stats.WinRate))
	sb.WriteString(fmt.Sprintf("本月盈亏: %.2f", stats.TotalPnl))
	return sb.String(), nil
}

// SendDailyDigest 汇总今天平仓的交易并推送
// 当天没有交易就不打扰
func (s *DigestService) SendDailyDigest(ctx context.Context) error {
	msg, err := s.BuildDailyDigest(ctx)
	if err != nil {
		return err
	}
	if msg == "" {
		s.logger.Info("no trades today, skipping daily digest")
		return nil
	}
	return s.tg.Notify(s.telegramConf.ChatID, msg)
}
