package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"motivbot/internal/app"
	"motivbot/internal/bot"
	"motivbot/internal/config"
	"motivbot/internal/ratelimit"
	"motivbot/internal/util"
	"motivbot/pkg/ai"
	"motivbot/pkg/store"
	"motivbot/pkg/telegram"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init store", "err", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.AIQueriesPerMinute > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		limiter, err = ratelimit.NewFixedWindowLimiter(rdb, "motivbot:ai", cfg.AIQueriesPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init rate limiter", "err", err)
		}
	} else {
		slog.Warn("ai rate limiting disabled", "redisAddr", cfg.RedisAddr)
	}

	client, err := telegram.NewClient(cfg.BotToken)
	if err != nil {
		util.Fatal("failed to init bot client", "err", err)
	}
	transport, err := bot.NewTransport(client)
	if err != nil {
		util.Fatal("failed to init transport", "err", err)
	}

	generator, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GenerationModel)
	if err != nil {
		util.Fatal("failed to init gemini client", "err", err)
	}

	location := time.Local
	if cfg.Timezone != "" {
		location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			util.Fatal("failed to load timezone", "tz", cfg.Timezone, "err", err)
		}
	}
	hour, minute, err := cfg.NotificationClock()
	if err != nil {
		util.Fatal("failed to parse notification time", "err", err)
	}

	appCore, err := app.New(app.Config{
		Store:            st,
		Transport:        transport,
		Generator:        generator,
		Limiter:          limiter,
		AdminIDs:         cfg.AdminIDs,
		ChannelID:        cfg.ChannelID,
		GroupID:          cfg.GroupID,
		ModerationChatID: cfg.ModerationChatID,
		WebsiteURL:       cfg.WebsiteURL,
		DailyHour:        hour,
		DailyMinute:      minute,
		SendInterval:     time.Duration(cfg.SendIntervalMs) * time.Millisecond,
		Location:         location,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := bot.NewPoller(client, appCore)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error { return appCore.RunDailyLoop(gctx) })

	slog.Info("bot started", "admins", len(cfg.AdminIDs))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		util.Fatal("bot stopped", "err", err)
	}
	slog.Info("bot stopped")
}
