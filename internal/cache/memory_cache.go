package cache

import (
	"sync"
	"time"

	"github.com/epeers/bankmetrics/internal/models"
)

// MemoryCache provides an in-memory L1 cache for the published dataset.
// Entries expire after ttl so a newly published run is picked up without a restart.
type MemoryCache struct {
	records   *recordsEntry
	summary   *summaryEntry
	audits    map[string]auditEntry
	datasetMu sync.RWMutex
	auditMu   sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
}

type recordsEntry struct {
	data      []models.EntityRecord
	fetchedAt time.Time
}

type summaryEntry struct {
	summary   *models.RunSummary
	fetchedAt time.Time
}

type auditEntry struct {
	audit     models.EntityAudit
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		audits: make(map[string]auditEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *MemoryCache) fresh(fetchedAt time.Time) bool {
	return c.now().Sub(fetchedAt) <= c.ttl
}

// GetRecords retrieves the cached record set if fresh
func (c *MemoryCache) GetRecords() ([]models.EntityRecord, bool) {
	c.datasetMu.RLock()
	defer c.datasetMu.RUnlock()

	if c.records == nil || !c.fresh(c.records.fetchedAt) {
		return nil, false
	}
	return c.records.data, true
}

// SetRecords caches the record set
func (c *MemoryCache) SetRecords(records []models.EntityRecord) {
	c.datasetMu.Lock()
	defer c.datasetMu.Unlock()

	c.records = &recordsEntry{data: records, fetchedAt: c.now()}
}

// GetSummary retrieves the cached run summary if fresh
func (c *MemoryCache) GetSummary() (*models.RunSummary, bool) {
	c.datasetMu.RLock()
	defer c.datasetMu.RUnlock()

	if c.summary == nil || !c.fresh(c.summary.fetchedAt) {
		return nil, false
	}
	return c.summary.summary, true
}

// SetSummary caches the run summary
func (c *MemoryCache) SetSummary(summary *models.RunSummary) {
	c.datasetMu.Lock()
	defer c.datasetMu.Unlock()

	c.summary = &summaryEntry{summary: summary, fetchedAt: c.now()}
}

// GetAudit retrieves a cached audit trail if fresh
func (c *MemoryCache) GetAudit(cik string) (models.EntityAudit, bool) {
	c.auditMu.RLock()
	defer c.auditMu.RUnlock()

	entry, exists := c.audits[cik]
	if !exists || !c.fresh(entry.fetchedAt) {
		return nil, false
	}
	return entry.audit, true
}

// SetAudit caches an audit trail
func (c *MemoryCache) SetAudit(cik string, audit models.EntityAudit) {
	c.auditMu.Lock()
	defer c.auditMu.Unlock()

	c.audits[cik] = auditEntry{audit: audit, fetchedAt: c.now()}
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.datasetMu.Lock()
	c.records = nil
	c.summary = nil
	c.datasetMu.Unlock()

	c.auditMu.Lock()
	c.audits = make(map[string]auditEntry)
	c.auditMu.Unlock()
}
