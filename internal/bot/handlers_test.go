package bot

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"diamond-bot/internal/storage"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return New(nil, store, zap.NewNop(), "shapka.png")
}

// commandMsg builds a message carrying the bot_command entity the
// library needs for Command and CommandArguments to work.
func commandMsg(from int64, text string) *tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.Index(text, " "); i >= 0 {
		cmdLen = i
	}
	return &tgbotapi.Message{
		Text:     text,
		Date:     int(time.Now().Unix()),
		From:     &tgbotapi.User{ID: from, UserName: "user" + strconv.FormatInt(from, 10)},
		Chat:     &tgbotapi.Chat{ID: 100},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func textMsg(from int64, text string, sentAt time.Time) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Date: int(sentAt.Unix()),
		From: &tgbotapi.User{ID: from, UserName: "user" + strconv.FormatInt(from, 10)},
		Chat: &tgbotapi.Chat{ID: 100},
	}
}

func TestBalanceCommand(t *testing.T) {
	b := newTestBot(t)
	require.Equal(t, "У вас 0 алмазов.", b.handleCommand(commandMsg(1, "/balance")))

	b.store.GetOrCreate(1).Diamonds = 77
	require.Equal(t, "У вас 77 алмазов.", b.handleCommand(commandMsg(1, "/balance")))
}

func TestCountMessage(t *testing.T) {
	b := newTestBot(t)
	sentAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	b.countMessage(textMsg(1, "привет", sentAt))
	b.countMessage(textMsg(1, "/notacommand without entity", sentAt))

	acc := b.store.GetOrCreate(1)
	require.EqualValues(t, 2, acc.MessageCount)
	require.EqualValues(t, 2, acc.DailyMessageCount)
	require.Equal(t, "user1", acc.Username)
}

func TestDailyBonusCommand(t *testing.T) {
	b := newTestBot(t)

	require.Equal(t, "Вы получили ежедневный бонус в размере 10 алмазов!",
		b.handleCommand(commandMsg(1, "/dailybonus")))
	require.Equal(t, "Вы уже получили ежедневный бонус. Приходите завтра!",
		b.handleCommand(commandMsg(1, "/dailybonus")))
	require.EqualValues(t, 10, b.store.GetOrCreate(1).Diamonds)
}

func transferMsg(from int64, target *tgbotapi.User, args string) *tgbotapi.Message {
	msg := commandMsg(from, "/transfer "+args)
	if target != nil {
		msg.Entities = append(msg.Entities, tgbotapi.MessageEntity{
			Type:   "text_mention",
			Offset: len("/transfer "),
			Length: len(strings.Fields(args)[0]),
			User:   target,
		})
	}
	return msg
}

func TestTransferCommand(t *testing.T) {
	b := newTestBot(t)
	b.store.GetOrCreate(1).Diamonds = 100
	bob := &tgbotapi.User{ID: 2, UserName: "bob"}

	reply := b.handleCommand(transferMsg(1, bob, "@bob 40"))
	require.Equal(t, "Вы успешно передали 40 алмазов пользователю @bob.", reply)
	require.EqualValues(t, 60, b.store.GetOrCreate(1).Diamonds)
	require.EqualValues(t, 40, b.store.GetOrCreate(2).Diamonds)
	require.Equal(t, "bob", b.store.GetOrCreate(2).Username)
}

func TestTransferCommandFailures(t *testing.T) {
	b := newTestBot(t)
	b.store.GetOrCreate(1).Diamonds = 100
	bob := &tgbotapi.User{ID: 2, UserName: "bob"}

	require.Equal(t, "У вас недостаточно алмазов.",
		b.handleCommand(transferMsg(1, bob, "@bob 500")))
	require.Equal(t, "Количество должно быть положительным числом.",
		b.handleCommand(transferMsg(1, bob, "@bob -5")))
	require.Equal(t, "Пользователь не найден.",
		b.handleCommand(transferMsg(1, nil, "@bob 10")))
	require.Equal(t, "Использование: /transfer <имя_пользователя> <количество>",
		b.handleCommand(transferMsg(1, bob, "@bob")))
	require.Equal(t, "Использование: /transfer <имя_пользователя> <количество>",
		b.handleCommand(transferMsg(1, bob, "@bob many")))

	require.EqualValues(t, 100, b.store.GetOrCreate(1).Diamonds)
	require.Zero(t, b.store.GetOrCreate(2).Diamonds)
}

func TestEventCommand(t *testing.T) {
	b := newTestBot(t)

	require.Equal(t, "Ивент начался! Все награды умножены на 2.",
		b.handleCommand(commandMsg(1, "/event start 2")))
	require.EqualValues(t, 2, b.events.CurrentMultiplier())

	require.Equal(t, "Ивент завершен.", b.handleCommand(commandMsg(1, "/event stop")))
	require.EqualValues(t, 1, b.events.CurrentMultiplier())
	require.False(t, b.store.Events().Active)

	require.Equal(t, "Множитель должен быть положительным числом.",
		b.handleCommand(commandMsg(1, "/event start -1")))
	require.Equal(t, "Использование: /event <start|stop> [множитель]",
		b.handleCommand(commandMsg(1, "/event")))
	require.Equal(t, "Использование: /event <start|stop> [множитель]",
		b.handleCommand(commandMsg(1, "/event start")))
}

func TestEventMultiplierAffectsAccrual(t *testing.T) {
	b := newTestBot(t)
	b.handleCommand(commandMsg(1, "/event start 3"))

	acc := b.store.GetOrCreate(2)
	acc.MessageCount = 999
	sentAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b.countMessage(textMsg(2, "gg", sentAt))

	require.EqualValues(t, 30, acc.Diamonds)
}

func TestTopCommand(t *testing.T) {
	b := newTestBot(t)
	a := b.store.GetOrCreate(1)
	a.Diamonds, a.Username = 100, "alice"
	bb := b.store.GetOrCreate(2)
	bb.Diamonds, bb.Username = 100, "bob"
	c := b.store.GetOrCreate(3)
	c.Diamonds = 50

	reply := b.handleCommand(commandMsg(1, "/top"))
	require.Equal(t, "Топ пользователей по количеству алмазов:\n\n"+
		"1. alice: 100 алмазов\n"+
		"2. bob: 100 алмазов\n"+
		"3. User: 50 алмазов", reply)
}

func TestShopAndBuyCommands(t *testing.T) {
	b := newTestBot(t)

	shop := b.handleCommand(commandMsg(1, "/shop"))
	require.Contains(t, shop, "1. Виртуальная наклейка - 10 алмазов")
	require.Contains(t, shop, "4. Префикс на месяц - 200 алмазов")

	require.Equal(t, "У вас недостаточно алмазов для покупки виртуальной наклейки.",
		b.handleCommand(commandMsg(1, "/buy 1")))
	require.Equal(t, "Неверный номер товара.",
		b.handleCommand(commandMsg(1, "/buy 9")))
	require.Equal(t, "Использование: /buy <номер_товара>",
		b.handleCommand(commandMsg(1, "/buy sticker")))

	b.store.GetOrCreate(1).Diamonds = 60
	require.Equal(t, "Вы успешно купили префикс на неделю!",
		b.handleCommand(commandMsg(1, "/buy 3")))
	require.EqualValues(t, 10, b.store.GetOrCreate(1).Diamonds)
	require.Len(t, b.store.GetOrCreate(1).Perks, 1)
}

func TestPerksCommand(t *testing.T) {
	b := newTestBot(t)
	require.Equal(t, "У вас нет активных префиксов.", b.handleCommand(commandMsg(1, "/perks")))

	b.store.GetOrCreate(1).Diamonds = 50
	b.handleCommand(commandMsg(1, "/buy 3"))
	reply := b.handleCommand(commandMsg(1, "/perks"))
	require.Contains(t, reply, "Префикс на неделю")
}

func TestUnknownCommandCountsAsMessage(t *testing.T) {
	b := newTestBot(t)

	require.Empty(t, b.handleCommand(commandMsg(1, "/frobnicate")))
	acc := b.store.GetOrCreate(1)
	require.EqualValues(t, 1, acc.MessageCount)
	require.EqualValues(t, 1, acc.DailyMessageCount)

	require.Equal(t, helpText, b.handleCommand(commandMsg(1, "/help")))
	require.Equal(t, helpText, b.handleCommand(commandMsg(1, "/start")))
	require.EqualValues(t, 1, acc.MessageCount, "recognized commands are not counted")
}
