package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"heysera/internal/ai"
	"heysera/internal/app"
	"heysera/internal/cache"
	"heysera/internal/config"
	rabbitmqClient "heysera/internal/platform/rabbitmq"
	redisClient "heysera/internal/platform/redis"
	"heysera/internal/store"
	"heysera/internal/worker"
)

type App struct {
	Config       *config.Config
	Store        *store.Store
	Gateway      *ai.Gateway
	Appender     app.MessageAppender
	HistoryCache app.HistoryCache
	Counters     app.UsageCounters

	Redis         *redis.Client
	MQConn        *amqp.Connection
	MessageWorker *worker.MessagePersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	st, err := store.Open(cfg.Storage.DataDir, cfg.Storage.BackupDir)
	if err != nil {
		return nil, err
	}

	gateway := ai.NewGateway(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})

	a := &App{
		Config:    cfg,
		Store:     st,
		Gateway:   gateway,
		Appender:  app.NewStoreAppender(st),
		Counters:  cache.NewMemoryCounters(),
		StartedAt: time.Now(),
	}

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Redis = redisCli
		a.HistoryCache = cache.NewHistoryCache(
			redisCli,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
		a.Counters = cache.NewRedisCounters(redisCli, app.CounterNames)
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			a.closeRedis()
			return nil, err
		}
		a.MQConn = mqConn
		a.Appender = rabbitmqClient.NewMessagePublisher(mqConn, cfg.RabbitMQ.MessagePersistQueue)

		a.MessageWorker = worker.NewMessagePersistWorker(mqConn, st, cfg.RabbitMQ.MessagePersistQueue)
		if err := a.MessageWorker.Start(ctx); err != nil {
			a.closeRedis()
			_ = mqConn.Close()
			return nil, fmt.Errorf("start message worker failed: %w", err)
		}
	}

	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}

func (a *App) closeRedis() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
