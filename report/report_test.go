package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/taxlots/accounting"
	"github.com/rustyeddy/taxlots/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(typ ledger.ItemType, asset, delta string) ledger.LineItem {
	return ledger.LineItem{Type: typ, Asset: asset, Delta: decimal.RequireFromString(delta)}
}

func sampleResult(t *testing.T) *accounting.Result {
	t.Helper()

	at := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []ledger.Transaction{
		{ID: "1", Time: at, Items: []ledger.LineItem{item(ledger.Deposit, "USD", "1000")}},
		{ID: "2", Time: at.Add(time.Hour), Items: []ledger.LineItem{item(ledger.Match, "USD", "-1000"), item(ledger.Match, "BTC", "1")}},
		{ID: "3", Time: at.Add(2 * time.Hour), Items: []ledger.LineItem{item(ledger.Match, "BTC", "-0.5"), item(ledger.Match, "USD", "600")}},
	}

	res, err := accounting.NewEngine(accounting.NewAccount("USD"), nil).Run(context.Background(), txs)
	require.NoError(t, err)
	return res
}

func TestWrite(t *testing.T) {
	res := sampleResult(t)
	res.Issues = append(res.Issues, errors.New("transaction x: cannot classify"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "USD", res))
	out := buf.String()

	assert.Contains(t, out, "OBLIGATION")
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "500.00")
	assert.Contains(t, out, "Total obligation: 100.00 USD")
	assert.Contains(t, out, "Transactions: 3 applied, 0 skipped, 1 disposals")
	assert.Contains(t, out, "Issues (1):")
	assert.Contains(t, out, "transaction x: cannot classify")
}

func TestWriteLots(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteLots(&buf, res))
	assert.Regexp(t, `BTC\s+0\.5\s+1000\.00\s+500\.00`, buf.String())
}
