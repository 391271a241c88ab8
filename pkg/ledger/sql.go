package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/snow-ghost/validator/core"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS decisions (
			id TEXT PRIMARY KEY,
			practice_id TEXT NOT NULL,
			q INTEGER NOT NULL,
			r INTEGER NOT NULL,
			u INTEGER NOT NULL,
			a INTEGER NOT NULL,
			i INTEGER NOT NULL,
			approved BOOLEAN NOT NULL,
			stake_amount INTEGER NOT NULL,
			decision TEXT NOT NULL,
			final_score REAL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_practice ON decisions(practice_id)`,
	},
	// MySQL DSNs need parseTime=true to scan created_at.
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS decisions (
			id CHAR(36) PRIMARY KEY,
			practice_id VARCHAR(255) NOT NULL,
			q INT NOT NULL,
			r INT NOT NULL,
			u INT NOT NULL,
			a INT NOT NULL,
			i INT NOT NULL,
			approved BOOLEAN NOT NULL,
			stake_amount BIGINT NOT NULL,
			decision VARCHAR(32) NOT NULL,
			final_score DOUBLE NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_decisions_practice (practice_id)
		)`,
	},
}

// SQLLedger stores entries in SQLite or MySQL.
type SQLLedger struct {
	db    *sql.DB
	stake int64
}

// Open connects to driver at dsn and creates the decisions table.
func Open(driver, dsn string, stake int64) (*SQLLedger, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported ledger driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	if stake <= 0 {
		stake = DefaultStakeAmount
	}
	return &SQLLedger{db: db, stake: stake}, nil
}

// Record appends the decision carried by report.
func (l *SQLLedger) Record(ctx context.Context, report core.ValidationReport) error {
	e := NewEntry(report, l.stake)
	_, err := l.db.ExecContext(ctx, `
	INSERT INTO decisions (
		id, practice_id, q, r, u, a, i, approved, stake_amount, decision, final_score, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PracticeID, e.Q, e.R, e.U, e.A, e.I, e.Approved, e.StakeAmount,
		string(e.Decision), e.FinalScore, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	slog.InfoContext(ctx, "decision recorded", "entry_id", e.ID, "practice_id", e.PracticeID, "decision", e.Decision)
	return nil
}

// ListByPractice returns the entries of one practice, oldest first.
func (l *SQLLedger) ListByPractice(ctx context.Context, practiceID string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
	SELECT id, practice_id, q, r, u, a, i, approved, stake_amount, decision, final_score, created_at
	FROM decisions WHERE practice_id = ? ORDER BY created_at, id`, practiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			decision string
			final    sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.PracticeID, &e.Q, &e.R, &e.U, &e.A, &e.I,
			&e.Approved, &e.StakeAmount, &decision, &final, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		e.Decision = core.Decision(decision)
		if final.Valid {
			v := final.Float64
			e.FinalScore = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary counts all entries by decision.
func (l *SQLLedger) Summary(ctx context.Context) (Summary, error) {
	summary := Summary{ByDecision: make(map[core.Decision]int)}
	rows, err := l.db.QueryContext(ctx, `SELECT decision, COUNT(*) FROM decisions GROUP BY decision`)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize decisions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			decision string
			count    int
		)
		if err := rows.Scan(&decision, &count); err != nil {
			return summary, fmt.Errorf("failed to scan summary: %w", err)
		}
		summary.ByDecision[core.Decision(decision)] = count
		summary.Total += count
	}
	return summary, rows.Err()
}

// Close closes the database.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}
