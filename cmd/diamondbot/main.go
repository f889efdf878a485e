package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"diamond-bot/internal/bot"
	"diamond-bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	dataFile := envOr("DATA_FILE", "data/db.json")
	welcomeImage := envOr("WELCOME_IMAGE", "shapka.png")

	store, err := storage.Open(dataFile)
	if err != nil {
		logger.Fatal("open ledger store", zap.Error(err), zap.String("path", dataFile))
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Fatal("telegram auth", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot is running", zap.String("account", api.Self.UserName))
	bot.New(api, store, logger, welcomeImage).Run(ctx)

	if err := store.Flush(); err != nil {
		logger.Error("final flush", zap.Error(err))
	}
	logger.Info("bot stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
