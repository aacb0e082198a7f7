package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"viewtube/internal/cache"
	"viewtube/internal/config"
	"viewtube/internal/media"
	"viewtube/internal/model"
	mysqlClient "viewtube/internal/platform/mysql"
	rabbitmqClient "viewtube/internal/platform/rabbitmq"
	redisClient "viewtube/internal/platform/redis"
	"viewtube/internal/repository"
	"viewtube/internal/worker"
)

type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Uploader     *media.Uploader
	HistoryCache *cache.WatchHistoryCache
	ViewWorker   *worker.ViewPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Video{}, &model.Subscription{}, &model.WatchEvent{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	uploader, err := media.NewUploader(ctx, cfg.Media)
	if err != nil {
		return nil, err
	}

	historyCache := cache.NewWatchHistoryCache(
		redisCli,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	watchEventRepo := repository.NewWatchEventRepository(mysqlDB)
	videoRepo := repository.NewVideoRepository(mysqlDB)
	viewWorker := worker.NewViewPersistWorker(mqConn, watchEventRepo, videoRepo, historyCache, cfg.RabbitMQ.ViewEventQueue)
	if err := viewWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start view worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		Uploader:     uploader,
		HistoryCache: historyCache,
		ViewWorker:   viewWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ViewWorker != nil {
		a.ViewWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
