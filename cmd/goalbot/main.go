// Command goalbot runs the Telegram goal bot: it connects to Postgres,
// applies migrations, and drives the long-poll update loop until the
// process receives SIGINT or SIGTERM.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/goalbot/bot"
	"github.com/m3rciful/goalbot/core/bootstrap"
	coreconfig "github.com/m3rciful/goalbot/core/config"
	"github.com/m3rciful/goalbot/core/logger"
	"github.com/m3rciful/goalbot/storage"
	"github.com/m3rciful/goalbot/telegram"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("goalbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()
	defer func() {
		if err := res.DB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()

	client, err := telegram.NewAPIClient(cfg.Telegram.Token, cfg.Telegram.LongPollTimeoutSeconds)
	if err != nil {
		return err
	}

	dispatcher := bot.NewDispatcher(bot.Options{
		Sender:     client,
		TgUsers:    storage.NewTgUserRepo(res.DB),
		Categories: storage.NewCategoryRepo(res.DB),
		Goals:      storage.NewGoalRepo(res.DB),
		WebAppURL:  cfg.WebApp.BaseURL,
	})

	loop := telegram.NewLoop(telegram.LoopOptions{
		Client:  client,
		Handler: dispatcher.Handle,
		Middlewares: []telegram.Middleware{
			telegram.RecoverMiddleware,
			telegram.RateLimitMiddleware(time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond),
		},
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return loop.Run(ctx)
}
