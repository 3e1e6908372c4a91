// Package lots keeps the open cost-basis lots of one asset.
//
// Disposals draw from the lot with the highest unit cost first (HIFO).
// Lots with equal unit cost are drawn in the order they were opened, and a
// partially consumed lot keeps its place in that order.
package lots

import (
	"container/heap"
	"fmt"

	"github.com/shopspring/decimal"
)

// Lot is an open quantity of Asset acquired at UnitCost (fiat per unit).
//
// The total cost basis is tracked exactly, apart from UnitCost, so splitting
// a lot never loses or invents basis. UnitCost is informational when the
// lot was opened from a total cost that does not divide evenly.
type Lot struct {
	Asset    string
	UnitCost decimal.Decimal
	Quantity decimal.Decimal

	basis decimal.Decimal
	// rankCost/rankQty is the unit cost the lot was opened at, kept as a
	// ratio so ordering never depends on rounding.
	rankCost decimal.Decimal
	rankQty  decimal.Decimal
	seq      uint64
}

// Cost is the lot's total cost basis.
func (l Lot) Cost() decimal.Decimal {
	return l.basis
}

// split cuts q off the front of l. The two halves' costs always sum to
// the cost of l.
func (l Lot) split(q decimal.Decimal) (head, rest Lot) {
	head, rest = l, l
	head.Quantity = q
	head.basis = l.basis.Mul(q).Div(l.Quantity)
	rest.Quantity = l.Quantity.Sub(q)
	rest.basis = l.basis.Sub(head.basis)
	return head, rest
}

func (l Lot) String() string {
	return fmt.Sprintf("%s %s @ %s", l.Quantity, l.Asset, l.UnitCost)
}

// InsufficientLotsError is returned when a disposal finds no lot left to
// draw from while quantity remains unmatched.
type InsufficientLotsError struct {
	Asset     string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("insufficient %s lots: %s of %s left unmatched", e.Asset, e.Remaining, e.Requested)
}

// Store is a max-heap of lots keyed by unit cost. The zero value is not
// usable; call New.
type Store struct {
	asset string
	h     lotHeap
	next  uint64
}

func New(asset string) *Store {
	return &Store{asset: asset}
}

func (s *Store) Asset() string { return s.asset }

func (s *Store) Len() int { return len(s.h) }

// Add opens a new lot at unitCost per unit. Non-positive quantities are
// rejected.
func (s *Store) Add(unitCost, quantity decimal.Decimal) error {
	if err := s.check(unitCost, quantity); err != nil {
		return err
	}
	s.push(Lot{
		UnitCost: unitCost,
		Quantity: quantity,
		basis:    unitCost.Mul(quantity),
		rankCost: unitCost,
		rankQty:  decimal.NewFromInt(1),
	})
	return nil
}

// AddCost opens a new lot whose total cost basis is cost. Use it when the
// cost is known as a total: it is kept exactly, where cost/quantity may
// not terminate.
func (s *Store) AddCost(cost, quantity decimal.Decimal) error {
	if err := s.check(cost, quantity); err != nil {
		return err
	}
	s.push(Lot{
		UnitCost: cost.Div(quantity),
		Quantity: quantity,
		basis:    cost,
		rankCost: cost,
		rankQty:  quantity,
	})
	return nil
}

func (s *Store) check(cost, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("lot %s: quantity must be positive, got %s", s.asset, quantity)
	}
	if cost.IsNegative() {
		return fmt.Errorf("lot %s: cost must not be negative, got %s", s.asset, cost)
	}
	return nil
}

func (s *Store) push(l Lot) {
	s.next++
	l.Asset = s.asset
	l.seq = s.next
	heap.Push(&s.h, l)
}

// Peek returns the lot the next disposal would draw from.
func (s *Store) Peek() (Lot, bool) {
	if len(s.h) == 0 {
		return Lot{}, false
	}
	return s.h[0], true
}

// Pop removes and returns the highest cost lot.
func (s *Store) Pop() (Lot, bool) {
	if len(s.h) == 0 {
		return Lot{}, false
	}
	return heap.Pop(&s.h).(Lot), true
}

// PushPartial puts back what is left of a popped lot after a partial
// disposal. The remainder keeps the lot's position among equal costs and
// its share of the cost basis.
func (s *Store) PushPartial(l Lot, remaining decimal.Decimal) {
	if !remaining.IsPositive() {
		return
	}
	if remaining.LessThan(l.Quantity) {
		_, l = l.split(l.Quantity.Sub(remaining))
	}
	heap.Push(&s.h, l)
}

// Take removes quantity from the store, highest cost first, and returns
// the slices it consumed. A lot that is only partly needed is split and its
// remainder pushed back. If the store runs dry first, the slices taken so
// far are returned along with an *InsufficientLotsError.
func (s *Store) Take(quantity decimal.Decimal) ([]Lot, error) {
	var taken []Lot
	remaining := quantity
	for remaining.IsPositive() {
		l, ok := s.Pop()
		if !ok {
			return taken, &InsufficientLotsError{Asset: s.asset, Requested: quantity, Remaining: remaining}
		}
		if remaining.GreaterThanOrEqual(l.Quantity) {
			taken = append(taken, l)
			remaining = remaining.Sub(l.Quantity)
			continue
		}
		head, rest := l.split(remaining)
		heap.Push(&s.h, rest)
		taken = append(taken, head)
		remaining = decimal.Zero
	}
	return taken, nil
}

// Quantity is the sum of open lot quantities.
func (s *Store) Quantity() decimal.Decimal {
	q := decimal.Zero
	for _, l := range s.h {
		q = q.Add(l.Quantity)
	}
	return q
}

// CostBasis is the sum of open lot costs.
func (s *Store) CostBasis() decimal.Decimal {
	c := decimal.Zero
	for _, l := range s.h {
		c = c.Add(l.Cost())
	}
	return c
}

// Lots returns a copy of the open lots in disposal order.
func (s *Store) Lots() []Lot {
	cp := make(lotHeap, len(s.h))
	copy(cp, s.h)

	out := make([]Lot, 0, len(cp))
	for len(cp) > 0 {
		out = append(out, heap.Pop(&cp).(Lot))
	}
	return out
}

type lotHeap []Lot

func (h lotHeap) Len() int { return len(h) }

func (h lotHeap) Less(i, j int) bool {
	ci := h[i].rankCost.Mul(h[j].rankQty)
	cj := h[j].rankCost.Mul(h[i].rankQty)
	if c := ci.Cmp(cj); c != 0 {
		return c > 0
	}
	return h[i].seq < h[j].seq
}

func (h lotHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *lotHeap) Push(x any) { *h = append(*h, x.(Lot)) }

func (h *lotHeap) Pop() any {
	old := *h
	n := len(old)
	l := old[n-1]
	*h = old[:n-1]
	return l
}
