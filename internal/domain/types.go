package domain

import "time"

// Account is the per-user ledger record. JSON field names match the
// snapshot layout written by earlier deployments of the bot.
type Account struct {
	Diamonds          int64  `json:"diamonds"`
	LastBonusAt       int64  `json:"lastBonus"` // epoch millis, 0 = never claimed
	MessageCount      int64  `json:"messageCount"`
	DailyMessageCount int64  `json:"dailyMessageCount"`
	LastMessageDate   string `json:"lastMessageDate,omitempty"` // UTC YYYY-MM-DD
	Perks             []Perk `json:"prefixes"`
	Username          string `json:"username,omitempty"`
	Seq               int64  `json:"seq"` // creation order, breaks leaderboard ties
}

// Clone returns a deep copy suitable for restoring the account if a
// flush fails after a mutation.
func (a *Account) Clone() Account {
	c := *a
	c.Perks = append([]Perk(nil), a.Perks...)
	return c
}

// Perk is a purchased time-limited effect. Expired entries stay in
// the slice; validity is checked at read time.
type Perk struct {
	Kind      string `json:"prefix"`
	ExpiresAt int64  `json:"expires"` // epoch millis
}

func (p Perk) Expired(now time.Time) bool {
	return p.ExpiresAt <= now.UnixMilli()
}

// EventState is the global accrual multiplier toggle. Multiplier is 1
// whenever Active is false.
type EventState struct {
	Active     bool    `json:"active"`
	Multiplier float64 `json:"multiplier"`
}

// Snapshot is the whole durable state, persisted as one JSON document.
type Snapshot struct {
	Users   map[int64]*Account `json:"users"`
	Events  EventState         `json:"events"`
	NextSeq int64              `json:"nextSeq"`
}
