package alerter

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/internal/adapters/config"
	postgresStorage "github.com/ggorockee/reviewmaps-alerts/internal/adapters/database/postgres"
	redisStorage "github.com/ggorockee/reviewmaps-alerts/internal/adapters/database/redis"
	"github.com/ggorockee/reviewmaps-alerts/internal/adapters/push"
	"github.com/ggorockee/reviewmaps-alerts/internal/domain/service"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
	"github.com/ggorockee/reviewmaps-alerts/pkg/scheduler"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type App struct {
	DB       *gorm.DB
	Redis    *redisStorage.Client
	Logger   *types.Logger
	Location *time.Location

	alertService   *service.AlertService
	keywordService *service.KeywordAlertService
	scheduler      *scheduler.Scheduler
}

func New(config *config.Config) (*App, error) {
	appLogger, err := logger.Named("alerts")
	if err != nil {
		return nil, err
	}
	keywordLogger, err := logger.Named("keyword")
	if err != nil {
		return nil, err
	}
	notifyLogger, err := logger.Named("notify")
	if err != nil {
		return nil, err
	}
	pushLogger, err := logger.Named("push")
	if err != nil {
		return nil, err
	}
	schedulerLogger, err := logger.Named("scheduler")
	if err != nil {
		return nil, err
	}

	activityAlertStorage := postgresStorage.NewActivityAlertStorage(config.Database)
	bookmarkStorage := postgresStorage.NewBookmarkStorage(config.Database)
	statusStorage := postgresStorage.NewCampaignStatusStorage(config.Database)
	campaignStorage := postgresStorage.NewCampaignStorage(config.Database)
	keywordStorage := postgresStorage.NewKeywordAlertStorage(config.Database)
	deviceStorage := postgresStorage.NewFCMDeviceStorage(config.Database)

	pushClient := push.NewClient(deviceStorage, pushLogger)
	notifyService := service.NewNotifyService(pushClient, notifyLogger)

	policy := service.Policy{
		High: viper.GetInt("alerts.keyword.high"),
		Low:  viper.GetInt("alerts.keyword.low"),
	}
	if err = policy.Validate(); err != nil {
		return nil, err
	}

	alertService := service.NewAlertService(
		activityAlertStorage,
		notifyService,
		appLogger,
		service.NewBookmarkStrategy(bookmarkStorage),
		service.NewApplyResultStrategy(statusStorage),
		service.NewReviewingStrategy(statusStorage),
		service.NewSelectedVisitStrategy(statusStorage),
	)
	keywordService := service.NewKeywordAlertService(
		keywordStorage,
		campaignStorage,
		config.Redis.Counts,
		notifyService,
		policy,
		keywordLogger,
	)

	app := &App{
		DB:             config.Database,
		Redis:          config.Redis,
		Logger:         appLogger,
		Location:       config.Location,
		alertService:   alertService,
		keywordService: keywordService,
		scheduler:      scheduler.New(schedulerLogger, config.Location),
	}
	return app, nil
}

// Start registers the cron jobs, launches the scheduler and blocks until
// the process receives an interrupt.
func (a *App) Start() error {
	err := a.scheduler.Register(viper.GetString("alerts.cron.activity"), "activity-alerts", a.runActivityAlerts)
	if err != nil {
		return err
	}
	err = a.scheduler.Register(viper.GetString("alerts.cron.keyword-update"), "keyword-update", a.runKeywordUpdate)
	if err != nil {
		return err
	}
	err = a.scheduler.Register(viper.GetString("alerts.cron.keyword-dispatch"), "keyword-dispatch", a.runKeywordDispatch)
	if err != nil {
		return err
	}

	a.scheduler.Start()
	logger.Log.Info("Alert worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Alert worker stopping")
	a.scheduler.Stop()
	return nil
}

func (a *App) runActivityAlerts(ctx context.Context) error {
	today := time.Now().In(a.Location)
	if _, err := a.alertService.RunScan(ctx, today); err != nil {
		return err
	}
	sent, failed, err := a.alertService.DispatchPending(ctx)
	if err != nil {
		return err
	}
	a.Logger.Infof("activity dispatch: %d sent, %d failed", sent, failed)
	return nil
}

func (a *App) runKeywordUpdate(ctx context.Context) error {
	return a.keywordService.UpdateStages(ctx, time.Now().In(a.Location))
}

func (a *App) runKeywordDispatch(ctx context.Context) error {
	sent, failed, err := a.keywordService.DispatchPending(ctx)
	if err != nil {
		return err
	}
	a.Logger.Infof("keyword dispatch: %d sent, %d failed", sent, failed)
	return nil
}
