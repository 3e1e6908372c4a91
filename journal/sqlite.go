package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, started, finished, fiat, transactions, issues, total_obligation)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Started.UTC(), r.Finished.UTC(), r.Fiat, r.Transactions, r.Issues, r.TotalObligation.String(),
	)
	return err
}

func (j *SQLite) RecordDisposal(d DisposalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO disposals
		(run_id, tx_id, time, asset, quantity, unit_cost, rate, gain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.TxID, d.Time.UTC(), d.Asset,
		d.Quantity.String(), d.UnitCost.String(), d.Rate.String(), d.Gain.String(),
	)
	return err
}

func (j *SQLite) RecordPosition(p PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(run_id, asset, balance, open_lots, open_quantity, cost_basis, fees, obligation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Asset, p.Balance.String(), p.OpenLots,
		p.OpenQuantity.String(), p.CostBasis.String(), p.Fees.String(), p.Obligation.String(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
