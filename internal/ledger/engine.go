// Package ledger implements the account engine: message accrual,
// daily bonuses, transfers, shop purchases and the global event
// multiplier. All operations mutate accounts in place and leave
// persistence to the caller.
package ledger

import (
	"math"
	"sort"
	"time"

	"diamond-bot/internal/domain"
)

const (
	lifetimeRewardEvery = 1000 // every N lifetime messages
	lifetimeReward      = 10
	dailyRewardAt       = 5000 // once per day, on crossing exactly N
	dailyReward         = 30

	dailyBonusAmount = 10
	bonusCooldown    = 24 * time.Hour
)

const dateLayout = "2006-01-02"

// RecordMessage counts one text message for the account and returns
// the diamonds credited by the activity thresholds, already scaled by
// the event multiplier. It never fails.
func RecordMessage(acc *domain.Account, sentAt time.Time, multiplier float64) int64 {
	today := sentAt.UTC().Format(dateLayout)
	if acc.LastMessageDate != today {
		acc.DailyMessageCount = 0
		acc.LastMessageDate = today
	}
	acc.MessageCount++
	acc.DailyMessageCount++

	var credited int64
	if acc.MessageCount%lifetimeRewardEvery == 0 {
		credited += scale(lifetimeReward, multiplier)
	}
	// edge-triggered: fires only on the message that reaches the
	// threshold, not on every multiple past it
	if acc.DailyMessageCount == dailyRewardAt {
		credited += scale(dailyReward, multiplier)
	}
	acc.Diamonds += credited
	return credited
}

// scale keeps balances integral under fractional event multipliers.
func scale(base int64, multiplier float64) int64 {
	return int64(math.Round(float64(base) * multiplier))
}

// ClaimDailyBonus credits the flat daily bonus if at least 24h passed
// since the last successful claim. The cooldown is rolling, not tied
// to calendar days.
func ClaimDailyBonus(acc *domain.Account, now time.Time) error {
	ms := now.UnixMilli()
	if acc.LastBonusAt != 0 && ms-acc.LastBonusAt < bonusCooldown.Milliseconds() {
		return ErrAlreadyClaimed
	}
	acc.Diamonds += dailyBonusAmount
	acc.LastBonusAt = ms
	return nil
}

// Transfer moves amount from sender to receiver. Both mutations apply
// together or neither. Self-transfer is permitted and leaves the
// balance unchanged.
func Transfer(sender, receiver *domain.Account, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if sender.Diamonds < amount {
		return ErrInsufficientFunds
	}
	sender.Diamonds -= amount
	receiver.Diamonds += amount
	return nil
}

// TopN returns up to n accounts ordered by balance descending. The
// input is expected in creation order; the sort is stable, so ties
// keep that order and the leaderboard is reproducible across runs.
func TopN(accounts []*domain.Account, n int) []*domain.Account {
	ranked := append([]*domain.Account(nil), accounts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Diamonds > ranked[j].Diamonds
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ActivePerks filters out expired perks at read time. The stored
// slice is never compacted.
func ActivePerks(acc *domain.Account, now time.Time) []domain.Perk {
	var out []domain.Perk
	for _, p := range acc.Perks {
		if !p.Expired(now) {
			out = append(out, p)
		}
	}
	return out
}
