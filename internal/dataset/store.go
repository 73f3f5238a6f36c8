package dataset

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/outcrop-ai/pipeline-governor/internal/diversity"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS samples (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    entity           TEXT NOT NULL,
    question_type    TEXT NOT NULL,
    evidence_source  TEXT NOT NULL,
    created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_entity ON samples(entity);
CREATE INDEX IF NOT EXISTS idx_samples_qtype ON samples(question_type);
`

// #endregion schema

// #region types

// Sample is one accumulated dataset row.
type Sample struct {
	Entity         string
	QuestionType   string
	EvidenceSource string
	CreatedAt      time.Time
}

// Store aggregates the growing sample dataset and computes coverage
// metrics per planning epoch.
type Store struct {
	db *sql.DB
}

// NewStore attaches the sample schema to an existing database handle.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate samples: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion types

// #region add-sample

// AddSample appends a sample row.
func (s *Store) AddSample(smp Sample) error {
	if smp.CreatedAt.IsZero() {
		smp.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO samples (entity, question_type, evidence_source, created_at)
		 VALUES (?, ?, ?, ?)`,
		smp.Entity, smp.QuestionType, smp.EvidenceSource,
		smp.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("add sample: %w", err)
	}
	return nil
}

// #endregion add-sample

// #region coverage

// ComputeCoverage recomputes coverage metrics from the accumulated
// dataset. EntityCoverage is the fraction of required entities with at
// least one sample; with no required entities it is 1.
func (s *Store) ComputeCoverage(requiredEntities []string) (diversity.CoverageMetrics, error) {
	metrics := diversity.CoverageMetrics{
		EntityCounts:             map[string]int{},
		QuestionTypeDistribution: map[string]int{},
		EvidenceSourceCounts:     map[string]int{},
	}

	if err := s.countBy("entity", metrics.EntityCounts); err != nil {
		return diversity.CoverageMetrics{}, err
	}
	if err := s.countBy("question_type", metrics.QuestionTypeDistribution); err != nil {
		return diversity.CoverageMetrics{}, err
	}
	if err := s.countBy("evidence_source", metrics.EvidenceSourceCounts); err != nil {
		return diversity.CoverageMetrics{}, err
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&metrics.TotalSamples); err != nil {
		return diversity.CoverageMetrics{}, fmt.Errorf("count samples: %w", err)
	}

	metrics.EntityCoverage = 1
	if len(requiredEntities) > 0 {
		covered := 0
		for _, entity := range requiredEntities {
			if metrics.EntityCounts[entity] > 0 {
				covered++
			}
		}
		metrics.EntityCoverage = float64(covered) / float64(len(requiredEntities))
	}

	return metrics, nil
}

func (s *Store) countBy(column string, out map[string]int) error {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM samples GROUP BY %s`, column, column),
	)
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s row: %w", column, err)
		}
		out[key] = count
	}
	return rows.Err()
}

// #endregion coverage
