// Package bot dispatches Telegram updates to the ledger engine and
// renders outcomes as reply text.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"diamond-bot/internal/ledger"
	"diamond-bot/internal/storage"
)

type Bot struct {
	api          *tgbotapi.BotAPI
	store        *storage.FileStore
	events       *ledger.Events
	log          *zap.Logger
	welcomeImage string
}

func New(api *tgbotapi.BotAPI, store *storage.FileStore, log *zap.Logger, welcomeImage string) *Bot {
	return &Bot{
		api:          api,
		store:        store,
		events:       ledger.NewEvents(store.Events()),
		log:          log,
		welcomeImage: welcomeImage,
	}
}

// Run processes updates one at a time until ctx is cancelled. The
// single-threaded loop is what makes compound ledger operations safe
// without per-account locks.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if len(msg.NewChatMembers) > 0 {
		b.welcome(msg)
		return
	}
	if msg.From == nil || msg.Text == "" {
		return
	}
	if msg.IsCommand() {
		if reply := b.handleCommand(msg); reply != "" {
			b.reply(msg.Chat.ID, reply)
		}
		return
	}
	b.countMessage(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send reply", zap.Error(err), zap.Int64("chat", chatID))
	}
}

func (b *Bot) welcome(msg *tgbotapi.Message) {
	member := msg.NewChatMembers[0]
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FilePath(b.welcomeImage))
	photo.Caption = fmt.Sprintf(welcomeCaption, displayName(&member))
	photo.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn("send welcome", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		b.log.Warn("delete join notice", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
	}
}
