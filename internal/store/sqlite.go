package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"swing-trader/internal/models"
)

// SQLiteStore implements DecisionStore and CandleStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ DecisionStore = (*SQLiteStore)(nil)
	_ CandleStore   = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		approved INTEGER NOT NULL,
		stage TEXT NOT NULL,
		reason TEXT,
		decision_path TEXT,
		entry REAL,
		stop REAL,
		quantity INTEGER,
		risk_amount REAL,
		confidence REAL,
		expected_rr REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_symbol ON decisions(symbol);
	CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);

	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveDecision journals one decision outcome.
func (s *SQLiteStore) SaveDecision(ctx context.Context, rec *DecisionRecord) error {
	path, _ := json.Marshal(rec.DecisionPath)
	approved := 0
	if rec.Approved {
		approved = 1
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (timestamp, symbol, approved, stage, reason, decision_path, entry, stop, quantity, risk_amount, confidence, expected_rr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Timestamp, rec.Symbol, approved, rec.Stage, rec.Reason, string(path), rec.Entry, rec.Stop, rec.Quantity, rec.RiskAmount, rec.Confidence, rec.ExpectedRR)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// GetDecisions retrieves journaled decisions, newest first.
func (s *SQLiteStore) GetDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionRecord, error) {
	query := `SELECT id, timestamp, symbol, approved, stage, COALESCE(reason, ''), COALESCE(decision_path, '[]'),
		COALESCE(entry, 0), COALESCE(stop, 0), COALESCE(quantity, 0), COALESCE(risk_amount, 0),
		COALESCE(confidence, 0), COALESCE(expected_rr, 0)
		FROM decisions WHERE 1=1`
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.OnlyApproved {
		query += " AND approved = 1"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var approved int
		var path string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Symbol, &approved, &rec.Stage, &rec.Reason, &path,
			&rec.Entry, &rec.Stop, &rec.Quantity, &rec.RiskAmount, &rec.Confidence, &rec.ExpectedRR); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		rec.Approved = approved == 1
		if err := json.Unmarshal([]byte(path), &rec.DecisionPath); err != nil {
			rec.DecisionPath = nil
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}

	return records, nil
}

// GetDecisionStats aggregates approval counts and rejection stages.
func (s *SQLiteStore) GetDecisionStats(ctx context.Context) (*DecisionStats, error) {
	stats := &DecisionStats{RejectByStage: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(approved), 0) FROM decisions
	`).Scan(&stats.Total, &stats.Approved)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision stats: %w", err)
	}
	stats.Rejected = stats.Total - stats.Approved

	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, COUNT(*) FROM decisions WHERE approved = 0 GROUP BY stage
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejection stages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rejection stage: %w", err)
		}
		stats.RejectByStage[stage] = count
	}

	return stats, rows.Err()
}

// SaveCandles caches candles, replacing duplicates by (symbol, timeframe, timestamp).
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, timeframe, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCandles retrieves cached candles in ascending time order.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, timeframe, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}
