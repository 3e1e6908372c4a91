package accounting

import (
	"github.com/rustyeddy/taxlots/ledger"
)

// Kind names a transaction shape.
type Kind string

const (
	KindDeposit       Kind = "deposit"
	KindFiatTrade     Kind = "fiat_trade"
	KindAssetTransfer Kind = "asset_transfer"
)

// Shape is the classified form of a transaction.
type Shape interface {
	Kind() Kind
}

// Deposit moves an asset into the account from outside.
type Deposit struct {
	Item ledger.LineItem
}

// FiatTrade swaps the fiat asset for one other asset.
type FiatTrade struct {
	Fiat  ledger.LineItem
	Asset ledger.LineItem
	Fee   *ledger.LineItem
}

// Purchase reports whether fiat was spent.
func (t FiatTrade) Purchase() bool { return t.Fiat.Delta.IsNegative() }

// AssetTransfer swaps one non-fiat asset for another.
type AssetTransfer struct {
	From ledger.LineItem
	To   ledger.LineItem
	Fee  *ledger.LineItem
}

func (Deposit) Kind() Kind       { return KindDeposit }
func (FiatTrade) Kind() Kind     { return KindFiatTrade }
func (AssetTransfer) Kind() Kind { return KindAssetTransfer }

// Classify works out which shape tx has. It has no side effects.
func Classify(tx ledger.Transaction, fiat string) (Shape, error) {
	fail := func(reason string) (Shape, error) {
		return nil, &ClassificationError{TxID: tx.ID, Items: tx.Items, Reason: reason}
	}

	items := tx.Items
	if len(items) == 0 {
		return fail("no line items")
	}
	if len(items) == 1 && items[0].Type == ledger.Deposit {
		return Deposit{Item: items[0]}, nil
	}

	var matches []ledger.LineItem
	var fee *ledger.LineItem
	touchesFiat := false
	for i := range items {
		li := items[i]
		if li.Asset == fiat {
			touchesFiat = true
		}
		switch li.Type {
		case ledger.Match:
			matches = append(matches, li)
		case ledger.Fee:
			if fee != nil {
				return fail("more than one fee")
			}
			fee = &items[i]
		default:
			return fail("unexpected " + li.Type.String() + " line in a trade")
		}
	}
	if len(matches) != 2 {
		return fail("a trade needs exactly two match lines")
	}
	a, b := matches[0], matches[1]
	if a.Delta.IsZero() || b.Delta.IsZero() {
		return fail("zero quantity match line")
	}

	if touchesFiat {
		var fiatLeg, assetLeg ledger.LineItem
		switch {
		case a.Asset == fiat && b.Asset != fiat:
			fiatLeg, assetLeg = a, b
		case b.Asset == fiat && a.Asset != fiat:
			fiatLeg, assetLeg = b, a
		default:
			return fail("no unique fiat and asset legs")
		}
		if fiatLeg.Delta.Sign() == assetLeg.Delta.Sign() {
			return fail("fiat and asset legs move in the same direction")
		}
		return FiatTrade{Fiat: fiatLeg, Asset: assetLeg, Fee: fee}, nil
	}

	var from, to ledger.LineItem
	switch {
	case a.Delta.IsNegative() && b.Delta.IsPositive():
		from, to = a, b
	case b.Delta.IsNegative() && a.Delta.IsPositive():
		from, to = b, a
	default:
		return fail("no unique from and to legs")
	}
	if from.Asset == to.Asset {
		return fail("transfer between the same asset")
	}
	return AssetTransfer{From: from, To: to, Fee: fee}, nil
}
