package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntityRecordRepository handles database operations for published entity records
type EntityRecordRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRecordRepository creates a new EntityRecordRepository
func NewEntityRecordRepository(pool *pgxpool.Pool) *EntityRecordRepository {
	return &EntityRecordRepository{pool: pool}
}

// ReplaceAll records the run and swaps the whole entity_records table for this run's output
// in one transaction.
func (r *EntityRecordRepository) ReplaceAll(ctx context.Context, records []models.EntityRecord, audit map[string]models.EntityAudit, summary models.RunSummary) error {
	runID, err := uuid.Parse(summary.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", summary.RunID, err)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO pipeline_runs (run_id, started_at, finished_at, listings, processed, succeeded,
			not_found, quality_flagged, stale_excluded, errored, cancelled, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, runID, summary.StartedAt, summary.FinishedAt, summary.Listings, summary.Processed, summary.Succeeded,
		summary.NotFound, summary.QualityFlagged, summary.StaleExcluded, summary.Errored, summary.Cancelled, summaryJSON)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entity_records`); err != nil {
		return fmt.Errorf("failed to clear entity records: %w", err)
	}

	query := `
		INSERT INTO entity_records (cik, symbol, reference_date, record, audit, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	batch := &pgx.Batch{}
	for _, rec := range records {
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", rec.CIK, err)
		}
		auditJSON, err := json.Marshal(audit[rec.CIK])
		if err != nil {
			return fmt.Errorf("failed to encode audit %s: %w", rec.CIK, err)
		}
		var refDate any
		if rec.ReferenceDate != nil {
			refDate = rec.ReferenceDate.Time
		}
		batch.Queue(query, rec.CIK, rec.Symbol, refDate, recJSON, auditJSON, runID)
	}

	br := tx.SendBatch(ctx, batch)
	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert record %s (%s): %w", rec.CIK, rec.Symbol, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetAll returns every published record ordered by display symbol
func (r *EntityRecordRepository) GetAll(ctx context.Context) ([]models.EntityRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT record FROM entity_records ORDER BY symbol, cik`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity records: %w", err)
	}
	defer rows.Close()

	var records []models.EntityRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan entity record: %w", err)
		}
		var rec models.EntityRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode entity record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetAudit returns the audit trail of one entity
func (r *EntityRecordRepository) GetAudit(ctx context.Context, cik string) (models.EntityAudit, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT audit FROM entity_records WHERE cik = $1`, cik).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}

	var audit models.EntityAudit
	if err := json.Unmarshal(raw, &audit); err != nil {
		return nil, fmt.Errorf("failed to decode audit: %w", err)
	}
	return audit, nil
}

// GetSummary returns the summary of the most recently published run
func (r *EntityRecordRepository) GetSummary(ctx context.Context) (*models.RunSummary, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT summary FROM pipeline_runs ORDER BY finished_at DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var summary models.RunSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &summary, nil
}
