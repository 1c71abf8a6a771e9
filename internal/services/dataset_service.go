package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/bankmetrics/internal/cache"
	"github.com/epeers/bankmetrics/internal/models"
	"github.com/epeers/bankmetrics/internal/repository"
	log "github.com/sirupsen/logrus"
)

// DatasetStore reads a published dataset. Both the JSON file repository and the
// Postgres repository implement it.
type DatasetStore interface {
	GetAll(ctx context.Context) ([]models.EntityRecord, error)
	GetAudit(ctx context.Context, cik string) (models.EntityAudit, error)
	GetSummary(ctx context.Context) (*models.RunSummary, error)
}

// DatasetSink receives a run's output and replaces whatever it held before
type DatasetSink interface {
	ReplaceAll(ctx context.Context, records []models.EntityRecord, audit map[string]models.EntityAudit, summary models.RunSummary) error
}

// DatasetService serves the published dataset through the memory cache
type DatasetService struct {
	store    DatasetStore
	memCache *cache.MemoryCache
}

// NewDatasetService creates a new DatasetService
func NewDatasetService(store DatasetStore, memCache *cache.MemoryCache) *DatasetService {
	return &DatasetService{
		store:    store,
		memCache: memCache,
	}
}

// GetRecords returns every published record
func (s *DatasetService) GetRecords(ctx context.Context) ([]models.EntityRecord, error) {
	if records, ok := s.memCache.GetRecords(); ok {
		return records, nil
	}
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.memCache.SetRecords(records)
	return records, nil
}

// ListEntities returns the compact listing of every published record
func (s *DatasetService) ListEntities(ctx context.Context) ([]models.EntityListItem, error) {
	records, err := s.GetRecords(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.EntityListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, models.EntityListItem{
			CIK:             rec.CIK,
			Symbol:          rec.Symbol,
			Name:            rec.Name,
			Exchange:        rec.Exchange,
			ReferenceDate:   rec.ReferenceDate,
			ReturnOnEquity:  rec.Ratios.ReturnOnEquity,
			EfficiencyRatio: rec.Ratios.EfficiencyRatio,
			Flagged:         len(rec.QualityFlags) > 0,
		})
	}
	return items, nil
}

// GetEntity returns one record by its zero-padded CIK
func (s *DatasetService) GetEntity(ctx context.Context, cik string) (*models.EntityRecord, error) {
	records, err := s.GetRecords(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].CIK == cik {
			return &records[i], nil
		}
	}
	return nil, repository.ErrEntityNotFound
}

// GetAudit returns the audit trail of one entity
func (s *DatasetService) GetAudit(ctx context.Context, cik string) (models.EntityAudit, error) {
	if audit, ok := s.memCache.GetAudit(cik); ok {
		return audit, nil
	}
	audit, err := s.store.GetAudit(ctx, cik)
	if err != nil {
		return nil, err
	}
	s.memCache.SetAudit(cik, audit)
	return audit, nil
}

// GetSummary returns the summary of the published run
func (s *DatasetService) GetSummary(ctx context.Context) (*models.RunSummary, error) {
	if summary, ok := s.memCache.GetSummary(); ok {
		return summary, nil
	}
	summary, err := s.store.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	s.memCache.SetSummary(summary)
	return summary, nil
}

// Invalidate drops every cached read so the next request goes to the store
func (s *DatasetService) Invalidate() {
	s.memCache.Clear()
}

// Publish hands a usable run to every sink. A run with no records is never published,
// so the previous dataset stays in place.
func Publish(ctx context.Context, result *RunResult, sinks ...DatasetSink) error {
	defer TrackTime("Publish", time.Now())

	if !result.Usable() {
		return ErrNothingToPublish
	}
	for _, sink := range sinks {
		if err := sink.ReplaceAll(ctx, result.Records, result.Audit, result.Summary); err != nil {
			return fmt.Errorf("failed to publish run %s: %w", result.Summary.RunID, err)
		}
	}
	log.Infof("Published %d records for run %s", len(result.Records), result.Summary.RunID)
	return nil
}
