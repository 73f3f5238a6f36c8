package runlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/outcrop-ai/pipeline-governor/internal/run"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS run_records (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	ts            TEXT NOT NULL,
	pass          INTEGER NOT NULL,
	warn          INTEGER NOT NULL,
	cost          REAL NOT NULL,
	latency_ms    INTEGER NOT NULL,
	audit_score   REAL,
	p95           REAL,
	issues_json   TEXT
);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id       TEXT NOT NULL,
	score         REAL NOT NULL,
	risk_tier     TEXT NOT NULL,
	applies       INTEGER NOT NULL,
	changed_json  TEXT,
	evidence_json TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store

// Store is the append-only run history. Rows are inserted and read,
// never updated or deleted.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages
// (e.g. the dataset store).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region append

// Append inserts one run record. The history is ordered by insertion;
// records are immutable once logged.
func (s *Store) Append(rec run.Record) error {
	var issuesJSON any
	if len(rec.Issues) > 0 {
		b, err := json.Marshal(rec.Issues)
		if err != nil {
			return fmt.Errorf("marshal issues: %w", err)
		}
		issuesJSON = string(b)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO run_records (ts, pass, warn, cost, latency_ms, audit_score, p95, issues_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339Nano), boolInt(rec.Pass), boolInt(rec.Warn),
		rec.Cost, rec.LatencyMs, nullFloat(rec.AuditScore), nullFloat(rec.P95), issuesJSON,
	)
	if err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	return nil
}

// #endregion append

// #region list

// List returns the most recent run records, newest first.
func (s *Store) List(limit int) ([]run.Record, error) {
	rows, err := s.db.Query(
		`SELECT ts, pass, warn, cost, latency_ms, audit_score, p95, issues_json
		 FROM run_records ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list run records: %w", err)
	}
	defer rows.Close()

	var records []run.Record
	for rows.Next() {
		var rec run.Record
		var tsStr string
		var pass, warn int
		var audit, p95 sql.NullFloat64
		var issuesJSON sql.NullString

		if err := rows.Scan(&tsStr, &pass, &warn, &rec.Cost, &rec.LatencyMs, &audit, &p95, &issuesJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
		rec.Pass = pass != 0
		rec.Warn = warn != 0
		if audit.Valid {
			v := audit.Float64
			rec.AuditScore = &v
		}
		if p95.Valid {
			v := p95.Float64
			rec.P95 = &v
		}
		if issuesJSON.Valid {
			if err := json.Unmarshal([]byte(issuesJSON.String), &rec.Issues); err != nil {
				return nil, fmt.Errorf("unmarshal issues: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of logged run records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM run_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count run records: %w", err)
	}
	return n, nil
}

// #endregion list

// #region decision-log

// Decision is one evaluation cycle's outcome for the decision log.
type Decision struct {
	CardID    string
	Score     float64
	RiskTier  string
	Applies   bool
	Changed   []string
	Evidence  []string
	CreatedAt time.Time
}

// LogDecision appends a decision row for provenance.
func (s *Store) LogDecision(d Decision) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	changedJSON, err := json.Marshal(d.Changed)
	if err != nil {
		return fmt.Errorf("marshal changed fields: %w", err)
	}
	evidenceJSON, err := json.Marshal(d.Evidence)
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO decision_log (card_id, score, risk_tier, applies, changed_json, evidence_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.CardID, d.Score, d.RiskTier, boolInt(d.Applies),
		string(changedJSON), string(evidenceJSON), d.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion decision-log

// #region helpers

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// #endregion helpers
