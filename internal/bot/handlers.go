package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"diamond-bot/internal/domain"
	"diamond-bot/internal/ledger"
)

const (
	replyFailure = "Произошла ошибка, попробуйте позже."

	welcomeCaption = "Добро пожаловать в чат Imzmo, %s.\n\n" +
		"Пожалуйста, ознакомьтесь с нашими правилами. Помните, что незнание правил не освобождает вас от ответственности. Давайте поддерживать порядок вместе!\n\n" +
		"[Магазин](https://t.me/ImzmoShopbot) | [Правила](https://t.me/ImzmoMlbb/1709)"

	helpText = "Доступные команды:\n" +
		"/balance — баланс алмазов\n" +
		"/transfer <@пользователь> <количество> — передать алмазы\n" +
		"/dailybonus — ежедневный бонус\n" +
		"/top — топ по алмазам\n" +
		"/shop — магазин\n" +
		"/buy <номер_товара> — покупка\n" +
		"/perks — ваши активные префиксы\n" +
		"/event <start|stop> [множитель] — управление ивентом"
)

var buyReplies = map[int]struct{ ok, noFunds string }{
	1: {"Вы успешно купили виртуальную наклейку!", "У вас недостаточно алмазов для покупки виртуальной наклейки."},
	2: {"Вы успешно купили виртуальную роль!", "У вас недостаточно алмазов для покупки виртуальной роли."},
	3: {"Вы успешно купили префикс на неделю!", "У вас недостаточно алмазов для покупки префикса на неделю."},
	4: {"Вы успешно купили префикс на месяц!", "У вас недостаточно алмазов для покупки префикса на месяц."},
}

// countMessage applies message accrual for any non-command text. The
// flush is part of the operation: if it fails, the account is rolled
// back so in-memory state never runs ahead of the durable snapshot.
func (b *Bot) countMessage(msg *tgbotapi.Message) {
	acc := b.store.GetOrCreate(msg.From.ID)
	undo := acc.Clone()
	acc.Username = displayName(msg.From)
	ledger.RecordMessage(acc, msg.Time(), b.events.CurrentMultiplier())
	if err := b.store.Flush(); err != nil {
		*acc = undo
		b.log.Error("flush after message accrual", zap.Error(err), zap.Int64("user", msg.From.ID))
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) string {
	switch msg.Command() {
	case "start", "help":
		return helpText
	case "balance":
		acc := b.store.GetOrCreate(msg.From.ID)
		return fmt.Sprintf("У вас %d алмазов.", acc.Diamonds)
	case "transfer":
		return b.cmdTransfer(msg)
	case "dailybonus":
		return b.cmdDailyBonus(msg)
	case "event":
		return b.cmdEvent(msg)
	case "top":
		return b.cmdTop()
	case "shop":
		return shopText()
	case "buy":
		return b.cmdBuy(msg)
	case "perks":
		return b.cmdPerks(msg)
	default:
		// unrecognized command-shaped text is just a message
		b.countMessage(msg)
		return ""
	}
}

func (b *Bot) cmdTransfer(msg *tgbotapi.Message) string {
	const usage = "Использование: /transfer <имя_пользователя> <количество>"
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return usage
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return usage
	}
	target, err := mentionedUser(msg)
	if err != nil {
		return "Пользователь не найден."
	}

	sender := b.store.GetOrCreate(msg.From.ID)
	receiver := b.store.GetOrCreate(target.ID)
	undoSender, undoReceiver := sender.Clone(), receiver.Clone()

	switch err := ledger.Transfer(sender, receiver, amount); {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "Количество должно быть положительным числом."
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "У вас недостаточно алмазов."
	}
	receiver.Username = displayName(target)
	if err := b.store.Flush(); err != nil {
		*sender = undoSender
		*receiver = undoReceiver
		b.log.Error("flush after transfer", zap.Error(err),
			zap.Int64("from", msg.From.ID), zap.Int64("to", target.ID))
		return replyFailure
	}
	return fmt.Sprintf("Вы успешно передали %d алмазов пользователю %s.", amount, args[0])
}

// mentionedUser resolves the transfer recipient from the message's
// entity list. Only text_mention entities carry a user id; plain
// @name text and forwarded messages resolve to ErrUserNotFound.
func mentionedUser(msg *tgbotapi.Message) (*tgbotapi.User, error) {
	for _, e := range msg.Entities {
		if e.Type == "text_mention" && e.User != nil {
			return e.User, nil
		}
	}
	return nil, ledger.ErrUserNotFound
}

func (b *Bot) cmdDailyBonus(msg *tgbotapi.Message) string {
	acc := b.store.GetOrCreate(msg.From.ID)
	undo := acc.Clone()
	if err := ledger.ClaimDailyBonus(acc, time.Now()); err != nil {
		return "Вы уже получили ежедневный бонус. Приходите завтра!"
	}
	if err := b.store.Flush(); err != nil {
		*acc = undo
		b.log.Error("flush after daily bonus", zap.Error(err), zap.Int64("user", msg.From.ID))
		return replyFailure
	}
	return "Вы получили ежедневный бонус в размере 10 алмазов!"
}

func (b *Bot) cmdEvent(msg *tgbotapi.Message) string {
	const usage = "Использование: /event <start|stop> [множитель]"
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return usage
	}
	switch args[0] {
	case "start":
		if len(args) < 2 {
			return usage
		}
		mult, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return usage
		}
		undo := *b.store.Events()
		if err := b.events.Set(true, mult); err != nil {
			return "Множитель должен быть положительным числом."
		}
		if err := b.store.Flush(); err != nil {
			*b.store.Events() = undo
			b.log.Error("flush after event start", zap.Error(err))
			return replyFailure
		}
		return fmt.Sprintf("Ивент начался! Все награды умножены на %s.", args[1])
	case "stop":
		undo := *b.store.Events()
		_ = b.events.Set(false, 0)
		if err := b.store.Flush(); err != nil {
			*b.store.Events() = undo
			b.log.Error("flush after event stop", zap.Error(err))
			return replyFailure
		}
		return "Ивент завершен."
	default:
		return usage
	}
}

func (b *Bot) cmdTop() string {
	ranked := ledger.TopN(b.store.Accounts(), 10)
	var sb strings.Builder
	sb.WriteString("Топ пользователей по количеству алмазов:\n\n")
	for i, acc := range ranked {
		fmt.Fprintf(&sb, "%d. %s: %d алмазов\n", i+1, accountName(acc), acc.Diamonds)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func shopText() string {
	var sb strings.Builder
	sb.WriteString("Добро пожаловать в магазин!\n\n")
	for _, it := range ledger.Catalog {
		fmt.Fprintf(&sb, "%d. %s - %d алмазов\n", it.ID, it.Name, it.Price)
	}
	sb.WriteString("\nИспользуйте /buy <номер_товара> для покупки.")
	return sb.String()
}

func (b *Bot) cmdBuy(msg *tgbotapi.Message) string {
	const usage = "Использование: /buy <номер_товара>"
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return usage
	}
	itemID, err := strconv.Atoi(args[0])
	if err != nil {
		return usage
	}

	acc := b.store.GetOrCreate(msg.From.ID)
	undo := acc.Clone()
	item, perr := ledger.Purchase(acc, itemID, time.Now())
	switch {
	case errors.Is(perr, ledger.ErrUnknownItem):
		return "Неверный номер товара."
	case errors.Is(perr, ledger.ErrInsufficientFunds):
		return buyReplies[item.ID].noFunds
	}
	if err := b.store.Flush(); err != nil {
		*acc = undo
		b.log.Error("flush after purchase", zap.Error(err),
			zap.Int64("user", msg.From.ID), zap.Int("item", itemID))
		return replyFailure
	}
	return buyReplies[item.ID].ok
}

func (b *Bot) cmdPerks(msg *tgbotapi.Message) string {
	now := time.Now()
	acc := b.store.GetOrCreate(msg.From.ID)
	active := ledger.ActivePerks(acc, now)
	if len(active) == 0 {
		return "У вас нет активных префиксов."
	}
	var sb strings.Builder
	sb.WriteString("Ваши активные префиксы:\n")
	for _, p := range active {
		left := time.UnixMilli(p.ExpiresAt).Sub(now)
		fmt.Fprintf(&sb, "- %s (ещё %s)\n", p.Kind, durShort(left))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "User"
}

func accountName(acc *domain.Account) string {
	if acc.Username != "" {
		return acc.Username
	}
	return "User"
}

func durShort(d time.Duration) string {
	if d <= 0 {
		return "0с"
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	sb := &strings.Builder{}
	if days > 0 {
		fmt.Fprintf(sb, "%dд", days)
	}
	if h > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(sb, "%dч", h)
	}
	if days == 0 && h == 0 {
		fmt.Fprintf(sb, "%dм", m)
	}
	return sb.String()
}
