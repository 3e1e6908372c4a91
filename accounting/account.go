package accounting

import (
	"sort"

	"github.com/rustyeddy/taxlots/lots"
	"github.com/shopspring/decimal"
)

// Account holds every balance, open lot and realized obligation of one
// calculation. It is owned by a single Engine and is not safe for
// concurrent use.
type Account struct {
	Fiat string

	balances    map[string]decimal.Decimal
	stores      map[string]*lots.Store
	obligations map[string]decimal.Decimal
	fees        map[string]decimal.Decimal
}

func NewAccount(fiat string) *Account {
	return &Account{
		Fiat:        fiat,
		balances:    make(map[string]decimal.Decimal),
		stores:      make(map[string]*lots.Store),
		obligations: make(map[string]decimal.Decimal),
		fees:        make(map[string]decimal.Decimal),
	}
}

// Position is the state of one asset.
type Position struct {
	Asset      string
	Balance    decimal.Decimal
	Lots       []lots.Lot
	Obligation decimal.Decimal
	Fees       decimal.Decimal
}

// OpenQuantity is the total quantity still held in lots.
func (p Position) OpenQuantity() decimal.Decimal {
	q := decimal.Zero
	for _, l := range p.Lots {
		q = q.Add(l.Quantity)
	}
	return q
}

// CostBasis is the total cost of the open lots.
func (p Position) CostBasis() decimal.Decimal {
	c := decimal.Zero
	for _, l := range p.Lots {
		c = c.Add(l.Cost())
	}
	return c
}

func (a *Account) Balance(asset string) decimal.Decimal {
	return a.balances[asset]
}

func (a *Account) Obligation(asset string) decimal.Decimal {
	return a.obligations[asset]
}

// Lots returns the open lots of asset in disposal order.
func (a *Account) Lots(asset string) []lots.Lot {
	s, ok := a.stores[asset]
	if !ok {
		return nil
	}
	return s.Lots()
}

// TotalObligation sums the realized obligation across assets.
func (a *Account) TotalObligation() decimal.Decimal {
	total := decimal.Zero
	for _, o := range a.obligations {
		total = total.Add(o)
	}
	return total
}

// Assets returns every asset the account has seen, sorted.
func (a *Account) Assets() []string {
	seen := make(map[string]struct{})
	for k := range a.balances {
		seen[k] = struct{}{}
	}
	for k := range a.stores {
		seen[k] = struct{}{}
	}
	for k := range a.obligations {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Positions returns the state of every asset, sorted by asset.
func (a *Account) Positions() []Position {
	assets := a.Assets()
	out := make([]Position, 0, len(assets))
	for _, asset := range assets {
		out = append(out, Position{
			Asset:      asset,
			Balance:    a.balances[asset],
			Lots:       a.Lots(asset),
			Obligation: a.obligations[asset],
			Fees:       a.fees[asset],
		})
	}
	return out
}

func (a *Account) store(asset string) *lots.Store {
	s, ok := a.stores[asset]
	if !ok {
		s = lots.New(asset)
		a.stores[asset] = s
	}
	return s
}

func (a *Account) credit(asset string, delta decimal.Decimal) {
	a.balances[asset] = a.balances[asset].Add(delta)
}

func (a *Account) realize(asset string, gain decimal.Decimal) {
	a.obligations[asset] = a.obligations[asset].Add(gain)
}

func (a *Account) chargeFee(asset string, delta decimal.Decimal) {
	a.credit(asset, delta)
	a.fees[asset] = a.fees[asset].Add(delta.Neg())
}

// negative returns the first asset, in sorted order, with a balance below zero.
func (a *Account) negative() (string, bool) {
	var bad []string
	for asset, b := range a.balances {
		if b.IsNegative() {
			bad = append(bad, asset)
		}
	}
	if len(bad) == 0 {
		return "", false
	}
	sort.Strings(bad)
	return bad[0], true
}
