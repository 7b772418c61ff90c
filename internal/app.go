package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/valiflooz/chaouch-capital/internal/config"
	"github.com/valiflooz/chaouch-capital/internal/handler"
	"github.com/valiflooz/chaouch-capital/internal/models"
	"github.com/valiflooz/chaouch-capital/internal/service"
	"github.com/valiflooz/chaouch-capital/internal/telegram"
	"github.com/valiflooz/chaouch-capital/pkg/nostd"
	"github.com/valiflooz/chaouch-capital/web"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func Run(configPath string) error {
	app := NewJournalApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewJournalApp() orz.Application {
	return &JournalApp{}
}

var _ orz.Application = (*JournalApp)(nil)

type AppComponents struct {
	JournalHandler   *handler.JournalHandler
	ChecklistHandler *handler.ChecklistHandler

	JournalService   *service.JournalService
	StatsService     *service.StatsService
	CoachService     *service.CoachService
	ChecklistService *service.ChecklistService
	DigestService    *service.DigestService

	Tg *telegram.Telegram
}

type JournalApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *JournalApp) GetComponents() *AppComponents {
	return r.components
}

func (r *JournalApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Trade{}, models.ChecklistItem{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().RequestURI
			if strings.HasPrefix(path, "/api") {
				return true
			}
			return false
		},
		Root:       "",
		Index:      "index.html",
		HTML5:      true,
		Browse:     false,
		IgnoreBase: false,
		Filesystem: http.FS(web.Assets()),
	}))

	api := e.Group("/api")
	{
		r.components.JournalHandler.RegisterRoutes(api)
		r.components.ChecklistHandler.RegisterRoutes(api)
	}

	return nil
}

func (r *JournalApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Chaouch Capital Journal Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	// 首次启动种子化默认交易清单
	components.ChecklistService.Initialize(context.Background())

	if components.Tg != nil {
		components.Tg.Handle("/today", func(c tele.Context) error {
			msg, err := components.DigestService.BuildDailyDigest(context.Background())
			if err != nil {
				logger.Error("failed to build daily digest", zap.Error(err))
				return c.Send("查询失败，请稍后再试")
			}
			if msg == "" {
				return c.Send("今天还没有平仓的交易")
			}
			return c.Send(msg)
		})
		components.Tg.Start()
	}

	if err := components.DigestService.Start(); err != nil {
		logger.Error("failed to start daily digest", zap.Error(err))
	}

	return nil
}
