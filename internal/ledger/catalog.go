package ledger

import (
	"time"

	"diamond-bot/internal/domain"
)

// Item is a shop catalog entry. PerkKind is empty for one-shot items
// that only debit the balance.
type Item struct {
	ID           int
	Name         string
	Price        int64
	PerkKind     string
	PerkDuration time.Duration
}

// Catalog order matches the /shop listing and the /buy item numbers.
var Catalog = []Item{
	{ID: 1, Name: "Виртуальная наклейка", Price: 10},
	{ID: 2, Name: "Виртуальная роль", Price: 100},
	{ID: 3, Name: "Префикс на неделю", Price: 50, PerkKind: "Префикс на неделю", PerkDuration: 7 * 24 * time.Hour},
	{ID: 4, Name: "Префикс на месяц", Price: 200, PerkKind: "Префикс на месяц", PerkDuration: 30 * 24 * time.Hour},
}

func ItemByID(id int) (Item, bool) {
	for _, it := range Catalog {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Purchase debits the item price and, for perk items, appends the
// perk with its expiration. On any error the account is untouched.
func Purchase(acc *domain.Account, itemID int, now time.Time) (Item, error) {
	item, ok := ItemByID(itemID)
	if !ok {
		return Item{}, ErrUnknownItem
	}
	if acc.Diamonds < item.Price {
		return item, ErrInsufficientFunds
	}
	acc.Diamonds -= item.Price
	if item.PerkKind != "" {
		acc.Perks = append(acc.Perks, domain.Perk{
			Kind:      item.PerkKind,
			ExpiresAt: now.Add(item.PerkDuration).UnixMilli(),
		})
	}
	return item, nil
}
