package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-orz/orz"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/valiflooz/chaouch-capital/internal/config"
	"github.com/valiflooz/chaouch-capital/internal/repo"
	"github.com/valiflooz/chaouch-capital/internal/xe"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed templates/system_instructions.txt
var systemInstructionsTemplate string

//go:embed templates/analysis_prompt.txt
var analysisPromptTemplate string

//go:embed templates/trade_feedback_prompt.txt
var tradeFeedbackPromptTemplate string

// recentTradesLimit 复盘分析最多取最近多少笔交易，控制上下文长度
const recentTradesLimit = 20

// LLM 调用失败时的兜底文案，复盘功能只降级不报错
const (
	fallbackNoTrades      = "No trades available to analyze. Please add some trades to your journal first."
	fallbackEmptyAnalysis = "Analysis could not be generated at this time."
	fallbackAnalysisError = "An error occurred while connecting to the AI analyst. Please try again later."
	fallbackNoFeedback    = "No feedback available."
	fallbackFeedbackError = "Could not generate feedback."
)

// CoachService AI 复盘教练服务
type CoachService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo

	openAIClient *openai.Client
	model        string
}

func NewCoachService(db *gorm.DB, openAIClient *openai.Client, logger *zap.Logger, conf *config.Config) *CoachService {
	return &CoachService{
		logger:       logger,
		Service:      orz.NewService(db),
		TradeRepo:    repo.NewTradeRepo(db),
		openAIClient: openAIClient,
		model:        conf.LLM.Model,
	}
}

// coachTrade 提交给模型的交易快照，只保留复盘需要的字段
type coachTrade struct {
	Ticker string    `json:"ticker"`
	Type   string    `json:"type"`
	Pnl    float64   `json:"pnl"`
	Setup  string    `json:"setup"`
	Notes  string    `json:"notes"`
	Date   time.Time `json:"date"`
}

// AnalyzeTrades 对最近的交易做整体复盘
// 调用失败降级为固定文案，不向上抛错。
func (s *CoachService) AnalyzeTrades(ctx context.Context) (string, error) {
	if s.openAIClient == nil {
		return "", xe.ErrCoachDisabled
	}

	trades, err := s.TradeRepo.FindRecentByExitDate(ctx, recentTradesLimit)
	if err != nil {
		return "", err
	}
	if len(trades) == 0 {
		return fallbackNoTrades, nil
	}

	snapshots := make([]coachTrade, 0, len(trades))
	for _, t := range trades {
		snapshots = append(snapshots, coachTrade{
			Ticker: t.Ticker,
			Type:   string(t.Type),
			Pnl:    t.PnL,
			Setup:  t.Setup,
			Notes:  t.Notes,
			Date:   t.ExitDate,
		})
	}

	tradesJson, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fasttemplate.New(analysisPromptTemplate, "{{", "}}").ExecuteString(map[string]interface{}{
		"trades_json": string(tradesJson),
	})

	resp, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstructionsTemplate),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		s.logger.Warn("failed to call LLM for trade analysis", zap.Error(err))
		return fallbackAnalysisError, nil
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fallbackEmptyAnalysis, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// TradeFeedback 针对单笔交易的执行点评
func (s *CoachService) TradeFeedback(ctx context.Context, id string) (string, error) {
	if s.openAIClient == nil {
		return "", xe.ErrCoachDisabled
	}

	trade, err := s.TradeRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", xe.ErrTradeNotFound
		}
		return "", err
	}

	prompt := fasttemplate.New(tradeFeedbackPromptTemplate, "{{", "}}").ExecuteString(map[string]interface{}{
		"ticker": trade.Ticker,
		"pnl":    fmt.Sprintf("%.2f", trade.PnL),
		"setup":  trade.Setup,
		"notes":  trade.Notes,
	})

	resp, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		s.logger.Warn("failed to call LLM for trade feedback", zap.Error(err))
		return fallbackFeedbackError, nil
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fallbackNoFeedback, nil
	}
	return resp.Choices[0].Message.Content, nil
}
