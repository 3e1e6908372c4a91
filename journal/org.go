package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatDisposalOrg renders a DisposalRecord as an Org-mode block. The
// structured facts live in a PROPERTIES drawer so they stay searchable.
func FormatDisposalOrg(d DisposalRecord) string {
	heading := fmt.Sprintf("** Disposal: %s %s (%s)", d.Quantity, d.Asset, shortID(d.TxID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", d.RunID))
	b.WriteString(fmt.Sprintf(":TX_ID: %s\n", d.TxID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", d.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":ASSET: %s\n", d.Asset))
	b.WriteString(fmt.Sprintf(":QUANTITY: %s\n", d.Quantity))
	b.WriteString(fmt.Sprintf(":UNIT_COST: %s\n", d.UnitCost.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":RATE: %s\n", d.Rate.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":GAIN: %s\n", d.Gain.StringFixed(2)))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatDisposalsOrg renders multiple disposals separated by blank lines.
func FormatDisposalsOrg(ds []DisposalRecord) string {
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatDisposalOrg(d))
	}
	return b.String()
}

// FormatPositionsOrg renders positions as an Org table.
func FormatPositionsOrg(ps []PositionRecord) string {
	var b strings.Builder
	b.WriteString("| Asset | Balance | Lots | Open qty | Cost basis | Fees | Obligation |\n")
	b.WriteString("|-------+---------+------+----------+------------+------+------------|\n")
	for _, p := range ps {
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s | %s |\n",
			p.Asset, p.Balance, p.OpenLots, p.OpenQuantity,
			p.CostBasis.StringFixed(2), p.Fees, p.Obligation.StringFixed(2)))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
