package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const disposalColumns = `run_id, tx_id, time, asset, quantity, unit_cost, rate, gain`

// GetRun returns a single run record by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, started, finished, fiat, transactions, issues, total_obligation
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Started,
		&rec.Finished,
		&rec.Fiat,
		&rec.Transactions,
		&rec.Issues,
		&rec.TotalObligation,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// LatestRunID returns the id of the most recently started run.
func (j *SQLite) LatestRunID() (string, error) {
	var id string
	err := j.db.QueryRow(`SELECT run_id FROM runs ORDER BY started DESC, run_id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("journal has no runs")
	}
	return id, err
}

// ListDisposalsByRun returns a run's disposals in the order they happened.
func (j *SQLite) ListDisposalsByRun(runID string) ([]DisposalRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+disposalColumns+`
		FROM disposals
		WHERE run_id = ?
		ORDER BY rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	return scanDisposals(rows)
}

// ListDisposalsBetween returns disposals whose time is within [start, end).
func (j *SQLite) ListDisposalsBetween(start, end time.Time) ([]DisposalRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+disposalColumns+`
		FROM disposals
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, rowid ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return scanDisposals(rows)
}

// ListPositionsByRun returns a run's end-of-run positions sorted by asset.
func (j *SQLite) ListPositionsByRun(runID string) ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, asset, balance, open_lots, open_quantity, cost_basis, fees, obligation
		FROM positions
		WHERE run_id = ?
		ORDER BY asset ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		var rec PositionRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Asset,
			&rec.Balance,
			&rec.OpenLots,
			&rec.OpenQuantity,
			&rec.CostBasis,
			&rec.Fees,
			&rec.Obligation,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanDisposals(rows *sql.Rows) ([]DisposalRecord, error) {
	defer rows.Close()

	var out []DisposalRecord
	for rows.Next() {
		var rec DisposalRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.TxID,
			&rec.Time,
			&rec.Asset,
			&rec.Quantity,
			&rec.UnitCost,
			&rec.Rate,
			&rec.Gain,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
