// journal/journal.go
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisposalRecord is one slice of a lot consumed by a sale. Gain is the
// realized gain (negative for a loss) in fiat.
type DisposalRecord struct {
	RunID    string
	TxID     string
	Time     time.Time
	Asset    string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	Rate     decimal.Decimal
	Gain     decimal.Decimal
}

// PositionRecord is the end-of-run state of one asset.
type PositionRecord struct {
	RunID        string
	Asset        string
	Balance      decimal.Decimal
	OpenLots     int
	OpenQuantity decimal.Decimal
	CostBasis    decimal.Decimal
	Fees         decimal.Decimal
	Obligation   decimal.Decimal
}

// RunRecord summarizes one calculation.
type RunRecord struct {
	RunID           string
	Started         time.Time
	Finished        time.Time
	Fiat            string
	Transactions    int
	Issues          int
	TotalObligation decimal.Decimal
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordDisposal(DisposalRecord) error
	RecordPosition(PositionRecord) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(RunRecord) error           { return nil }
func (Nop) RecordDisposal(DisposalRecord) error { return nil }
func (Nop) RecordPosition(PositionRecord) error { return nil }
func (Nop) Close() error                        { return nil }
