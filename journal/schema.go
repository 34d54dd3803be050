package journal

const Schema = `
CREATE TABLE IF NOT EXISTS executions (
	execution_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity REAL NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	target REAL NOT NULL,
	commitment REAL NOT NULL,
	parent_id INTEGER NOT NULL,
	account TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS attempts (
	attempt_id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	fill_probability REAL NOT NULL,
	quantity REAL NOT NULL,
	commitment REAL NOT NULL,
	status TEXT NOT NULL,
	order_ids TEXT NOT NULL,
	details TEXT NOT NULL,
	account TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS realized_pnl (
	order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	pnl REAL NOT NULL,
	exit_date DATETIME NOT NULL,
	account TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_symbol ON attempts(symbol);
CREATE INDEX IF NOT EXISTS idx_pnl_exit_date ON realized_pnl(exit_date);
`
