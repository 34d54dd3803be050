package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/execution/order"
)

// SQLiteJournal persists executions, attempts and realized P&L in a single
// SQLite file. Margin validation is answered from a configured free-margin
// figure rather than a broker query; the adapter that owns the live account
// refreshes it.
type SQLiteJournal struct {
	db         *sql.DB
	freeMargin float64
}

func NewSQLite(path string, freeMargin float64) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db, freeMargin: freeMargin}, nil
}

func (j *SQLiteJournal) RecordOrderExecution(r ExecutionRecord) (string, error) {
	if r.ExecutionID == "" {
		r.ExecutionID = uuid.NewString()
	}
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO executions
		(execution_id, symbol, action, quantity, entry_price, stop_loss, target, commitment, parent_id, account, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ExecutionID, r.Symbol, string(r.Action), r.Quantity, r.EntryPrice,
		r.StopLoss, r.Target, r.Commitment, r.ParentID, r.Account, r.Time,
	)
	if err != nil {
		return "", err
	}
	return r.ExecutionID, nil
}

func (j *SQLiteJournal) RecordOrderAttempt(a order.ExecutionAttempt) error {
	if a.Time.IsZero() {
		a.Time = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO attempts
		(attempt_id, type, symbol, action, fill_probability, quantity, commitment, status, order_ids, details, account, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Type), a.Symbol, string(a.Action), a.FillProbability,
		a.Quantity, a.Commitment, string(a.Status), joinIDs(a.OrderIDs),
		a.Details, a.Account, a.Time,
	)
	return err
}

func (j *SQLiteJournal) ValidateSufficientMargin(symbol string, qty, price float64) (bool, string) {
	need := qty * price
	if need <= j.freeMargin {
		return true, ""
	}
	return false, fmt.Sprintf("insufficient margin for %s: need %.2f, free %.2f", symbol, need, j.freeMargin)
}

// SetFreeMargin refreshes the margin figure used by ValidateSufficientMargin.
func (j *SQLiteJournal) SetFreeMargin(v float64) { j.freeMargin = v }

func (j *SQLiteJournal) RealizedPnLPeriod(days int) (float64, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	row := j.db.QueryRow(`SELECT COALESCE(SUM(pnl), 0) FROM realized_pnl WHERE exit_date >= ?`, since)

	var total float64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (j *SQLiteJournal) RecordRealizedPnL(r PnLRecord) error {
	if r.ExitDate.IsZero() {
		r.ExitDate = time.Now().UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO realized_pnl (order_id, symbol, pnl, exit_date, account)
		VALUES (?, ?, ?, ?, ?)`,
		r.OrderID, r.Symbol, r.PnL, r.ExitDate, r.Account,
	)
	return err
}

// Attempts returns the journaled attempts for a symbol, newest last. Used by
// the CLI journal command and tests.
func (j *SQLiteJournal) Attempts(symbol string) ([]order.ExecutionAttempt, error) {
	rows, err := j.db.Query(`
		SELECT attempt_id, type, symbol, action, fill_probability, quantity, commitment, status, order_ids, details, account, time
		FROM attempts WHERE symbol = ? ORDER BY attempt_id`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.ExecutionAttempt
	for rows.Next() {
		var a order.ExecutionAttempt
		var typ, action, status, ids string
		if err := rows.Scan(&a.ID, &typ, &a.Symbol, &action, &a.FillProbability,
			&a.Quantity, &a.Commitment, &status, &ids, &a.Details, &a.Account, &a.Time); err != nil {
			return nil, err
		}
		a.Type = order.AttemptType(typ)
		a.Action = order.Action(action)
		a.Status = order.AttemptStatus(status)
		a.OrderIDs = splitIDs(ids)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var out []int64
	for _, p := range strings.Split(s, ",") {
		var id int64
		if _, err := fmt.Sscanf(p, "%d", &id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

var _ Journal = (*SQLiteJournal)(nil)
