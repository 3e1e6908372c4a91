// Package ledger turns raw exchange account tables into logical transactions.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemType tags a raw ledger line.
type ItemType int

const (
	Deposit ItemType = iota + 1
	Match
	Fee
)

func (t ItemType) String() string {
	switch t {
	case Deposit:
		return "deposit"
	case Match:
		return "match"
	case Fee:
		return "fee"
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

// ParseItemType maps a table tag to its ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, nil
	case "match":
		return Match, nil
	case "fee":
		return Fee, nil
	}
	return 0, fmt.Errorf("unknown line type %q", s)
}

// LineItem is one raw ledger line. Balance is what the exchange reported
// after the line was applied and is informational only.
type LineItem struct {
	Type    ItemType
	Asset   string
	Delta   decimal.Decimal
	Balance decimal.Decimal
	ID      string
	Time    time.Time
}

func (li LineItem) String() string {
	return fmt.Sprintf("%s %s %s %s (balance %s) @ %s",
		li.Type, li.ID, li.Delta, li.Asset, li.Balance, li.Time.UTC().Format(time.RFC3339))
}

// Transaction is a logical transaction: every line item sharing one
// exchange-assigned identifier. All items share ID and Time.
type Transaction struct {
	ID    string
	Time  time.Time
	Items []LineItem
}

// Before reports whether t sorts ahead of o: by time, then by id.
func (t Transaction) Before(o Transaction) bool {
	if !t.Time.Equal(o.Time) {
		return t.Time.Before(o.Time)
	}
	return t.ID < o.ID
}
