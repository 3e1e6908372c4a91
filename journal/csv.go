package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal writes disposals and positions to two files. Runs are
// not written; the run id is a column of both files.
type CSVJournal struct {
	disposals *csv.Writer
	positions *csv.Writer
	df, pf    *os.File
}

var (
	disposalHeader = []string{"run_id", "tx_id", "time", "asset", "quantity", "unit_cost", "rate", "gain"}
	positionHeader = []string{"run_id", "asset", "balance", "open_lots", "open_quantity", "cost_basis", "fees", "obligation"}
)

func NewCSV(disposalsPath, positionsPath string) (*CSVJournal, error) {
	df, err := os.Create(disposalsPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(positionsPath)
	if err != nil {
		df.Close()
		return nil, err
	}

	dw := csv.NewWriter(df)
	pw := csv.NewWriter(pf)

	if err := dw.Write(disposalHeader); err != nil {
		return nil, err
	}
	if err := pw.Write(positionHeader); err != nil {
		return nil, err
	}

	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{dw, pw, df, pf}, nil
}

func (j *CSVJournal) RecordRun(RunRecord) error { return nil }

func (j *CSVJournal) RecordDisposal(d DisposalRecord) error {
	err := j.disposals.Write([]string{
		d.RunID,
		d.TxID,
		d.Time.UTC().Format(time.RFC3339),
		d.Asset,
		d.Quantity.String(),
		d.UnitCost.String(),
		d.Rate.String(),
		d.Gain.String(),
	})
	if err != nil {
		return err
	}
	j.disposals.Flush()
	return j.disposals.Error()
}

func (j *CSVJournal) RecordPosition(p PositionRecord) error {
	err := j.positions.Write([]string{
		p.RunID,
		p.Asset,
		p.Balance.String(),
		strconv.Itoa(p.OpenLots),
		p.OpenQuantity.String(),
		p.CostBasis.String(),
		p.Fees.String(),
		p.Obligation.String(),
	})
	if err != nil {
		return err
	}

	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSVJournal) Close() error {
	j.disposals.Flush()
	if err := j.disposals.Error(); err != nil {
		return err
	}
	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}

	if err := j.df.Close(); err != nil {
		return err
	}
	if err := j.pf.Close(); err != nil {
		return err
	}
	return nil
}
