package ledger

import (
	"fmt"
	"sort"
	"time"
)

// TimestampMismatchError means two lines sharing an id disagree on time.
// The ledger cannot be trusted past this point.
type TimestampMismatchError struct {
	ID    string
	First time.Time
	Other time.Time
}

func (e *TimestampMismatchError) Error() string {
	return fmt.Sprintf("transaction %s: line items disagree on time (%s vs %s)",
		e.ID, e.First.UTC().Format(time.RFC3339), e.Other.UTC().Format(time.RFC3339))
}

// Normalize groups line items by id and returns the logical transactions
// in ascending (time, id) order. Items keep their input order within a group.
func Normalize(items []LineItem) ([]Transaction, error) {
	index := make(map[string]int)
	var txs []Transaction

	for _, li := range items {
		i, ok := index[li.ID]
		if !ok {
			index[li.ID] = len(txs)
			txs = append(txs, Transaction{ID: li.ID, Time: li.Time, Items: []LineItem{li}})
			continue
		}
		tx := &txs[i]
		if !li.Time.Equal(tx.Time) {
			return nil, &TimestampMismatchError{ID: li.ID, First: tx.Time, Other: li.Time}
		}
		tx.Items = append(tx.Items, li)
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Before(txs[j]) })
	return txs, nil
}
