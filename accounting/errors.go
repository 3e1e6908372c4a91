package accounting

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/taxlots/ledger"
	"github.com/rustyeddy/taxlots/lots"
	"github.com/shopspring/decimal"
)

// ClassificationError means a transaction's line items fit none of the
// known shapes. The transaction is not applied.
type ClassificationError struct {
	TxID   string
	Items  []ledger.LineItem
	Reason string
}

func (e *ClassificationError) Error() string {
	parts := make([]string, len(e.Items))
	for i, li := range e.Items {
		parts[i] = fmt.Sprintf("%s %s %s", li.Type, li.Delta, li.Asset)
	}
	return fmt.Sprintf("transaction %s: cannot classify: %s [%s]", e.TxID, e.Reason, strings.Join(parts, "; "))
}

// InsufficientLotsError reports a disposal that ran out of lots. The
// matched part of the disposal has been applied; the rest was abandoned.
type InsufficientLotsError struct {
	TxID      string
	Shortfall *lots.InsufficientLotsError
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.TxID, e.Shortfall)
}

func (e *InsufficientLotsError) Unwrap() error { return e.Shortfall }

// IntegrityError means a balance went negative. The ledger is inconsistent
// and the run cannot continue.
type IntegrityError struct {
	TxID    string
	Asset   string
	Balance decimal.Decimal
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("transaction %s: %s balance went negative (%s)", e.TxID, e.Asset, e.Balance)
}

// OrderError means the input stream was not in ascending (time, id) order.
type OrderError struct {
	PrevID   string
	PrevTime time.Time
	TxID     string
	Time     time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("transaction %s (%s) is out of order after %s (%s)",
		e.TxID, e.Time.UTC().Format(time.RFC3339), e.PrevID, e.PrevTime.UTC().Format(time.RFC3339))
}
