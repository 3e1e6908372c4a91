package accounting

import (
	"time"

	"github.com/rustyeddy/taxlots/journal"
	"github.com/rustyeddy/taxlots/ledger"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func deposit(asset, delta string) ledger.LineItem {
	return ledger.LineItem{Type: ledger.Deposit, Asset: asset, Delta: d(delta)}
}

func match(asset, delta string) ledger.LineItem {
	return ledger.LineItem{Type: ledger.Match, Asset: asset, Delta: d(delta)}
}

func fee(asset, delta string) ledger.LineItem {
	return ledger.LineItem{Type: ledger.Fee, Asset: asset, Delta: d(delta)}
}

// tx builds a transaction hours after t0, stamping id and time on items.
func tx(id string, hours int, items ...ledger.LineItem) ledger.Transaction {
	at := t0.Add(time.Duration(hours) * time.Hour)
	for i := range items {
		items[i].ID = id
		items[i].Time = at
	}
	return ledger.Transaction{ID: id, Time: at, Items: items}
}

// memJournal keeps everything in memory.
type memJournal struct {
	runs      []journal.RunRecord
	disposals []journal.DisposalRecord
	positions []journal.PositionRecord
	closed    bool
	fail      error
}

func (m *memJournal) RecordRun(r journal.RunRecord) error {
	m.runs = append(m.runs, r)
	return m.fail
}

func (m *memJournal) RecordDisposal(r journal.DisposalRecord) error {
	m.disposals = append(m.disposals, r)
	return m.fail
}

func (m *memJournal) RecordPosition(r journal.PositionRecord) error {
	m.positions = append(m.positions, r)
	return m.fail
}

func (m *memJournal) Close() error {
	m.closed = true
	return nil
}
