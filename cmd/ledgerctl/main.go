// ledgerctl inspects a ledger snapshot without connecting to Telegram.
//
//	ledgerctl -data data/db.json accounts
//	ledgerctl -data data/db.json top -n 10
//	ledgerctl -data data/db.json event
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"diamond-bot/internal/ledger"
	"diamond-bot/internal/storage"
)

func main() {
	dataFile := flag.String("data", "data/db.json", "path to the ledger snapshot")
	n := flag.Int("n", 10, "leaderboard size for the top command")
	flag.Parse()

	if _, err := os.Stat(*dataFile); err != nil {
		fmt.Fprintln(os.Stderr, "snapshot not found:", *dataFile)
		os.Exit(1)
	}
	store, err := storage.Open(*dataFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "top":
		for i, acc := range ledger.TopN(store.Accounts(), *n) {
			fmt.Printf("%d. %s: %d\n", i+1, name(acc.Username), acc.Diamonds)
		}
	case "event":
		ev := store.Events()
		fmt.Printf("active=%v multiplier=%g\n", ev.Active, ev.Multiplier)
	case "accounts", "":
		now := time.Now()
		for _, acc := range store.Accounts() {
			fmt.Printf("%s: %d diamonds, %d messages (%d today), %d active perks\n",
				name(acc.Username), acc.Diamonds, acc.MessageCount, acc.DailyMessageCount,
				len(ledger.ActivePerks(acc, now)))
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", flag.Arg(0))
		os.Exit(2)
	}
}

func name(username string) string {
	if username == "" {
		return "User"
	}
	return username
}
