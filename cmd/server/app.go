package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"zing_pool/internal/config"
	"zing_pool/internal/logger"
	"zing_pool/internal/notify"
	"zing_pool/internal/obs"
	"zing_pool/internal/store"
)

// app holds everything a command needs, opened once from the environment.
type app struct {
	cfg       *config.Config
	accessLog io.Writer
	serviceDB *gorm.DB
	users     *store.UserStore
	system    *store.ServiceStore
	closers   []func() error
}

func bootstrap(ctx context.Context, withUserStore bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{cfg: cfg, accessLog: logger.Setup(cfg.LogFile, cfg.LogLevel)}

	shutdown, err := obs.InitTracer(ctx, "zing-pool", cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(ctx)
	})

	a.serviceDB, err = cfg.OpenServiceDB()
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, closeDB(a.serviceDB))
	a.system = store.NewServiceStore(a.serviceDB, cfg.StoreTimeout, nil)

	if withUserStore {
		userDB, err := cfg.OpenUserDB()
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, closeDB(userDB))
		a.users = store.NewUserStore(userDB, cfg.StoreTimeout, nil)
	}
	return a, nil
}

// sinks builds the notification sinks named in NOTIFY_SINKS.
func (a *app) sinks(hub *notify.PoolHub) (*notify.Multi, error) {
	multi := notify.NewMulti()
	for _, name := range a.cfg.NotifySinks {
		switch name {
		case "log":
			multi.Add(name, notify.LogSink{})
		case "websocket":
			multi.Add(name, hub)
		case "rabbitmq":
			rabbit, err := notify.NewRabbitSink(a.cfg.RabbitMQURL, a.cfg.RabbitMQExchange)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, rabbit.Close)
			multi.Add(name, rabbit)
		case "redis":
			client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr, Password: a.cfg.RedisPassword})
			if err := client.Ping(context.Background()).Err(); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			a.closers = append(a.closers, client.Close)
			multi.Add(name, notify.NewRedisSink(client, a.cfg.RedisPushQueue))
		default:
			return nil, fmt.Errorf("unknown notification sink %q", name)
		}
	}
	if multi.Len() == 0 {
		multi.Add("log", notify.LogSink{})
	}
	logrus.WithField("sinks", a.cfg.NotifySinks).Info("Notification sinks ready")
	return multi, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logrus.WithError(err).Warn("Shutdown step failed")
		}
	}
}

func closeDB(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
