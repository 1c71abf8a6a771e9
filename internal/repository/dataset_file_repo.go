package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/epeers/bankmetrics/internal/models"
)

// DatasetFileRepository publishes datasets as JSON files next to each other.
// Files are replaced by rename, so readers never see a half-written dataset.
type DatasetFileRepository struct {
	recordsPath string
	auditPath   string
	summaryPath string
}

// NewDatasetFileRepository creates a new DatasetFileRepository. The summary is written to
// the records path with a ".summary.json" suffix.
func NewDatasetFileRepository(recordsPath, auditPath string) *DatasetFileRepository {
	ext := filepath.Ext(recordsPath)
	return &DatasetFileRepository{
		recordsPath: recordsPath,
		auditPath:   auditPath,
		summaryPath: recordsPath[:len(recordsPath)-len(ext)] + ".summary.json",
	}
}

// ReplaceAll writes the audit trail, then the records, then the summary
func (r *DatasetFileRepository) ReplaceAll(ctx context.Context, records []models.EntityRecord, audit map[string]models.EntityAudit, summary models.RunSummary) error {
	if records == nil {
		records = []models.EntityRecord{}
	}
	if err := writeJSONAtomic(r.auditPath, audit); err != nil {
		return fmt.Errorf("failed to write audit trail: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeJSONAtomic(r.recordsPath, records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := writeJSONAtomic(r.summaryPath, summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// GetAll returns every published record, in published order
func (r *DatasetFileRepository) GetAll(ctx context.Context) ([]models.EntityRecord, error) {
	var records []models.EntityRecord
	if err := readJSON(r.recordsPath, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAudit returns the audit trail of one entity
func (r *DatasetFileRepository) GetAudit(ctx context.Context, cik string) (models.EntityAudit, error) {
	var audit map[string]models.EntityAudit
	if err := readJSON(r.auditPath, &audit); err != nil {
		return nil, err
	}
	entry, ok := audit[cik]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return entry, nil
}

// GetSummary returns the summary of the published run
func (r *DatasetFileRepository) GetSummary(ctx context.Context) (*models.RunSummary, error) {
	var summary models.RunSummary
	if err := readJSON(r.summaryPath, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoDataset
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
