// Package report renders calculation results for the console.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/taxlots/accounting"
)

// Write prints one row per asset, the total obligation and any issues.
func Write(w io.Writer, fiat string, res *accounting.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ASSET\tBALANCE\tLOTS\tOPEN QTY\tCOST BASIS\tFEES\tOBLIGATION\t")
	for _, p := range res.Positions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
			p.Asset, p.Balance, len(p.Lots), p.OpenQuantity(),
			p.CostBasis().StringFixed(2), p.Fees, p.Obligation.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal obligation: %s %s\n", res.TotalObligation.StringFixed(2), fiat)
	fmt.Fprintf(w, "Transactions: %d applied, %d skipped, %d disposals\n", res.Transactions, res.Skipped, res.Disposals)

	if len(res.Issues) > 0 {
		fmt.Fprintf(w, "\nIssues (%d):\n", len(res.Issues))
		for _, err := range res.Issues {
			fmt.Fprintf(w, "  - %v\n", err)
		}
	}
	return nil
}

// WriteLots lists every open lot, highest cost first within each asset.
func WriteLots(w io.Writer, res *accounting.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET\tQUANTITY\tUNIT COST\tCOST")
	for _, p := range res.Positions {
		for _, l := range p.Lots {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Asset, l.Quantity, l.UnitCost.StringFixed(2), l.Cost().StringFixed(2))
		}
	}
	return tw.Flush()
}
