// journal/schema.go
package journal

// Amounts are stored as TEXT so decimals round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	started DATETIME NOT NULL,
	finished DATETIME NOT NULL,
	fiat TEXT NOT NULL,
	transactions INTEGER NOT NULL,
	issues INTEGER NOT NULL,
	total_obligation TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS disposals (
	run_id TEXT NOT NULL,
	tx_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	asset TEXT NOT NULL,
	quantity TEXT NOT NULL,
	unit_cost TEXT NOT NULL,
	rate TEXT NOT NULL,
	gain TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	run_id TEXT NOT NULL,
	asset TEXT NOT NULL,
	balance TEXT NOT NULL,
	open_lots INTEGER NOT NULL,
	open_quantity TEXT NOT NULL,
	cost_basis TEXT NOT NULL,
	fees TEXT NOT NULL,
	obligation TEXT NOT NULL,
	PRIMARY KEY (run_id, asset)
);

CREATE INDEX IF NOT EXISTS idx_disposals_time ON disposals(time);
CREATE INDEX IF NOT EXISTS idx_disposals_run ON disposals(run_id);
`
