package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const (
	driverName = "postgres"

	createReportsTable = `CREATE TABLE IF NOT EXISTS redistribution_reports (
	run_id     UUID PRIMARY KEY,
	issuer     TEXT NOT NULL,
	taxon      BIGINT NOT NULL,
	pool_size  INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

	insertReport = `INSERT INTO redistribution_reports (run_id, issuer, taxon, pool_size, document, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
)

// PostgresSink stores report documents as jsonb rows
type PostgresSink struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and makes sure the reports table exists
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, fmt.Errorf("unable to connect to postgres (%s): %w", pqErr.Code.Name(), err)
		}
		return nil, fmt.Errorf("unable to connect to postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, createReportsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reports table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// Save writes doc in a single transaction
func (s *PostgresSink) Save(ctx context.Context, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertReport,
		doc.RunID.String(), doc.Issuer, int64(doc.Taxon), doc.ExcludedAccountNFTs, body, doc.GeneratedAt,
	); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.WithError(rbErr).Warn("Rollback failed")
		}
		return fmt.Errorf("failed to insert report %s: %w", doc.RunID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report %s: %w", doc.RunID, err)
	}

	log.WithField("run_id", doc.RunID).Info("Stored report in postgres")
	return nil
}

// Load returns the stored document for runID
func (s *PostgresSink) Load(ctx context.Context, runID string) (*Document, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM redistribution_reports WHERE run_id = $1`, runID).Scan(&body)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}
	return &doc, nil
}

// Close closes the connection pool
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
