package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeRez0/storefront/internal/adapter/auth"
	"github.com/MikeRez0/storefront/internal/adapter/config"
	"github.com/MikeRez0/storefront/internal/adapter/events"
	"github.com/MikeRez0/storefront/internal/adapter/handler/http"
	"github.com/MikeRez0/storefront/internal/adapter/logger"
	"github.com/MikeRez0/storefront/internal/adapter/storage"
	"github.com/MikeRez0/storefront/internal/adapter/storage/cache"
	"github.com/MikeRez0/storefront/internal/adapter/storage/journal"
	"github.com/MikeRez0/storefront/internal/adapter/storage/repository"
	"github.com/MikeRez0/storefront/internal/adapter/telemetry"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/MikeRez0/storefront/internal/core/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		return
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, conf.Telemetry, conf.App.Mode)
	if err != nil {
		log.Error("telemetry setup error", zap.Error(err))
		return
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown error", zap.Error(err))
		}
	}()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	defer db.Close()
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repository creating error", zap.Error(err))
		return
	}

	var coupons port.CouponStore = repo
	if conf.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: conf.Redis.Addr, Password: conf.Redis.Password})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, coupon cache will fall through", zap.Error(err))
		}
		coupons = cache.NewCouponCache(repo, rdb, conf.Redis.TTL, log.Named("Coupon cache"))
	}

	var publisher port.EventPublisher = events.NewLogPublisher(log.Named("Events"))
	if len(conf.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaPublisher(conf.Kafka, log.Named("Kafka"))
		if err != nil {
			log.Error("kafka publisher creating error", zap.Error(err))
			return
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Warn("kafka flush error", zap.Error(err))
			}
		}()
		publisher = kafka
	}

	var commitJournal port.CommitJournal
	if conf.Journal.Path != "" {
		j, err := journal.Open(conf.Journal.Path)
		if err != nil {
			log.Error("commit journal error", zap.Error(err))
			return
		}
		defer j.Close()
		commitJournal = j
	}

	tokenService, err := auth.New(conf.Auth.TokenKey)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(service.Stores{
		Orders:  repo,
		Catalog: repo,
		Coupons: coupons,
		Users:   repo,
	}, publisher, commitJournal, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(tokenService, orderHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(ctx, conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
