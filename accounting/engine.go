// Package accounting reconstructs cost basis and realized gains from a
// time-ordered stream of logical transactions.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/taxlots/journal"
	"github.com/rustyeddy/taxlots/ledger"
	"github.com/rustyeddy/taxlots/lots"
	"github.com/shopspring/decimal"
)

// Engine applies transactions to an Account one at a time, in order.
type Engine struct {
	acct    *Account
	journal journal.Journal
	logger  *slog.Logger
	metrics *Metrics
	runID   string
	strict  bool

	last      *ledger.Transaction
	disposals int
}

func NewEngine(acct *Account, j journal.Journal) *Engine {
	if j == nil {
		j = journal.Nop{}
	}
	return &Engine{
		acct:    acct,
		journal: j,
		logger:  slog.Default(),
	}
}

func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetMetrics attaches prometheus collectors. A nil Metrics disables them.
func (e *Engine) SetMetrics(m *Metrics) { e.metrics = m }

// SetStrict makes Run stop at the first unclassifiable transaction
// instead of skipping it.
func (e *Engine) SetStrict(strict bool) { e.strict = strict }

// SetRunID tags journal records written by this engine.
func (e *Engine) SetRunID(id string) { e.runID = id }

func (e *Engine) Account() *Account { return e.acct }

// ProcessTransaction classifies tx and applies it to the account.
//
// *ClassificationError and *InsufficientLotsError are recoverable: the
// former leaves the account untouched, the latter has already applied
// everything it could match. *IntegrityError and *OrderError are fatal.
func (e *Engine) ProcessTransaction(tx ledger.Transaction) error {
	if e.last != nil && !e.last.Before(tx) {
		return &OrderError{PrevID: e.last.ID, PrevTime: e.last.Time, TxID: tx.ID, Time: tx.Time}
	}
	e.last = &tx

	shape, err := Classify(tx, e.acct.Fiat)
	if err != nil {
		e.metrics.incIssue("classification")
		return err
	}
	e.metrics.incTransaction(shape.Kind())

	switch s := shape.(type) {
	case Deposit:
		e.acct.credit(s.Item.Asset, s.Item.Delta)
	case FiatTrade:
		err = e.applyFiatTrade(tx, s)
	case AssetTransfer:
		err = e.applyTransfer(tx, s)
	}

	var short *InsufficientLotsError
	if err != nil && !errors.As(err, &short) {
		return err
	}

	if asset, bad := e.acct.negative(); bad {
		return &IntegrityError{TxID: tx.ID, Asset: asset, Balance: e.acct.Balance(asset)}
	}
	if short != nil {
		e.metrics.incIssue("insufficient_lots")
		return short
	}
	return nil
}

func (e *Engine) applyFiatTrade(tx ledger.Transaction, t FiatTrade) error {
	asset := t.Asset.Asset
	fiatQty := t.Fiat.Delta.Abs()
	assetQty := t.Asset.Delta.Abs()

	e.acct.credit(t.Fiat.Asset, t.Fiat.Delta)
	e.acct.credit(asset, t.Asset.Delta)
	if t.Fee != nil {
		e.acct.chargeFee(t.Fee.Asset, t.Fee.Delta)
	}

	if t.Purchase() {
		if err := e.acct.store(asset).AddCost(fiatQty, assetQty); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		e.metrics.incLot(asset)
		e.logger.Debug("lot opened", "tx", tx.ID, "asset", asset, "quantity", assetQty.String(), "cost", fiatQty.String())
		return nil
	}

	rate := fiatQty.Div(assetQty)
	taken, takeErr := e.acct.store(asset).Take(assetQty)
	remaining := fiatQty
	for i, l := range taken {
		proceeds := l.Quantity.Mul(fiatQty).Div(assetQty)
		if takeErr == nil && i == len(taken)-1 {
			// The last slice takes what is left of the fiat leg so the
			// proceeds add up to it exactly.
			proceeds = remaining
		}
		remaining = remaining.Sub(proceeds)

		gain := proceeds.Sub(l.Cost())
		e.acct.realize(asset, gain)
		if err := e.recordDisposal(tx, l, rate, gain); err != nil {
			return err
		}
	}
	return e.shortfall(tx, takeErr)
}

func (e *Engine) applyTransfer(tx ledger.Transaction, t AssetTransfer) error {
	fromQty := t.From.Delta.Neg()
	toQty := t.To.Delta

	e.acct.credit(t.From.Asset, t.From.Delta)
	e.acct.credit(t.To.Asset, t.To.Delta)
	if t.Fee != nil {
		e.acct.chargeFee(t.Fee.Asset, t.Fee.Delta)
	}

	taken, takeErr := e.acct.store(t.From.Asset).Take(fromQty)
	dest := e.acct.store(t.To.Asset)
	remaining := toQty
	for i, l := range taken {
		q := l.Quantity.Mul(toQty).Div(fromQty)
		if takeErr == nil && i == len(taken)-1 {
			// Whatever is left lands on the last slice so the
			// destination total matches the credited quantity exactly.
			q = remaining
		}
		remaining = remaining.Sub(q)
		if !q.IsPositive() {
			continue
		}
		// The slice's basis moves over whole; only its unit cost changes.
		if err := dest.AddCost(l.Cost(), q); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		e.metrics.incLot(t.To.Asset)
		e.logger.Debug("basis moved", "tx", tx.ID, "from", t.From.Asset, "to", t.To.Asset,
			"quantity", q.String(), "cost", l.Cost().String())
	}
	return e.shortfall(tx, takeErr)
}

func (e *Engine) shortfall(tx ledger.Transaction, err error) error {
	if err == nil {
		return nil
	}
	var ie *lots.InsufficientLotsError
	if errors.As(err, &ie) {
		return &InsufficientLotsError{TxID: tx.ID, Shortfall: ie}
	}
	return err
}

func (e *Engine) recordDisposal(tx ledger.Transaction, l lots.Lot, rate, gain decimal.Decimal) error {
	e.disposals++
	e.metrics.incDisposal()
	e.logger.Debug("lot disposed", "tx", tx.ID, "asset", l.Asset, "quantity", l.Quantity.String(),
		"unit_cost", l.UnitCost.String(), "rate", rate.String(), "gain", gain.String())

	err := e.journal.RecordDisposal(journal.DisposalRecord{
		RunID:    e.runID,
		TxID:     tx.ID,
		Time:     tx.Time,
		Asset:    l.Asset,
		Quantity: l.Quantity,
		UnitCost: l.UnitCost,
		Rate:     rate,
		Gain:     gain,
	})
	if err != nil {
		return fmt.Errorf("journal disposal %s: %w", tx.ID, err)
	}
	return nil
}

// Result is the outcome of Run.
type Result struct {
	RunID           string
	Started         time.Time
	Finished        time.Time
	Transactions    int
	Skipped         int
	Disposals       int
	Issues          []error
	Positions       []Position
	TotalObligation decimal.Decimal
}

// Run processes txs in order. Recoverable errors are logged and kept in
// Result.Issues. It stops at the first fatal error, returning the partial
// result alongside it; in strict mode an unclassifiable transaction is fatal.
// Positions and the run summary are journaled only when the run completes.
func (e *Engine) Run(ctx context.Context, txs []ledger.Transaction) (*Result, error) {
	res := &Result{RunID: e.runID, Started: time.Now().UTC()}

	finish := func() {
		res.Finished = time.Now().UTC()
		res.Disposals = e.disposals
		res.Positions = e.acct.Positions()
		res.TotalObligation = e.acct.TotalObligation()
	}

	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			finish()
			return res, err
		}

		err := e.ProcessTransaction(tx)
		if err == nil {
			res.Transactions++
			continue
		}

		var ce *ClassificationError
		var ie *InsufficientLotsError
		switch {
		case errors.As(err, &ce):
			if e.strict {
				finish()
				return res, err
			}
			res.Skipped++
			res.Issues = append(res.Issues, err)
			e.logger.Warn("transaction skipped", "tx", tx.ID, "error", err)
		case errors.As(err, &ie):
			res.Transactions++
			res.Issues = append(res.Issues, err)
			e.logger.Warn("lot shortfall", "tx", tx.ID, "asset", ie.Shortfall.Asset,
				"unmatched", ie.Shortfall.Remaining.String())
		default:
			finish()
			return res, err
		}
	}

	finish()
	if err := e.journalResult(res); err != nil {
		return res, err
	}
	e.logger.Info("run complete", "run", res.RunID, "transactions", res.Transactions,
		"skipped", res.Skipped, "issues", len(res.Issues), "obligation", res.TotalObligation.String())
	return res, nil
}

func (e *Engine) journalResult(res *Result) error {
	for _, p := range res.Positions {
		err := e.journal.RecordPosition(journal.PositionRecord{
			RunID:        res.RunID,
			Asset:        p.Asset,
			Balance:      p.Balance,
			OpenLots:     len(p.Lots),
			OpenQuantity: p.OpenQuantity(),
			CostBasis:    p.CostBasis(),
			Fees:         p.Fees,
			Obligation:   p.Obligation,
		})
		if err != nil {
			return fmt.Errorf("journal position %s: %w", p.Asset, err)
		}
	}

	err := e.journal.RecordRun(journal.RunRecord{
		RunID:           res.RunID,
		Started:         res.Started,
		Finished:        res.Finished,
		Fiat:            e.acct.Fiat,
		Transactions:    res.Transactions,
		Issues:          len(res.Issues),
		TotalObligation: res.TotalObligation,
	})
	if err != nil {
		return fmt.Errorf("journal run: %w", err)
	}
	return nil
}
