package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/epeers/bankmetrics/internal/edgar"
	"github.com/epeers/bankmetrics/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoIdentities is returned when the identity list resolves to zero entities
var ErrNoIdentities = errors.New("no entities to process")

// ErrNothingToPublish is returned when a run produced zero records
var ErrNothingToPublish = errors.New("run produced no records")

// FactSource loads one entity's company facts document.
// Implementations return edgar.ErrNotFound when the entity has no document.
type FactSource interface {
	Load(ctx context.Context, cik string) (*models.CompanyFacts, error)
}

// PipelineOptions tunes a PipelineService
type PipelineOptions struct {
	Concurrency int
	Staleness   StalenessPolicy
}

// PipelineService turns an identity list into entity records
type PipelineService struct {
	source  FactSource
	catalog *ConceptCatalog
	opts    PipelineOptions
}

// RunResult is everything a run produced. Records are sorted by display symbol.
type RunResult struct {
	Records []models.EntityRecord
	Audit   map[string]models.EntityAudit
	Summary models.RunSummary
}

// Usable reports whether the run produced anything worth publishing
func (r *RunResult) Usable() bool {
	return r != nil && len(r.Records) > 0
}

type entityStatus int

const (
	statusSucceeded entityStatus = iota
	statusNotFound
	statusErrored
	statusStale
	statusCancelled
)

type entityOutcome struct {
	status entityStatus
	record models.EntityRecord
	audit  models.EntityAudit
}

// runWarningCodes are the entity-level codes tallied in the run log
var runWarningCodes = []models.WarningCode{
	models.WarnEntityNotFound,
	models.WarnFetchFailed,
	models.WarnParseFailed,
	models.WarnStaleExcluded,
	models.WarnEntityCancelled,
	models.WarnDuplicateListing,
}

// NewPipelineService creates a new PipelineService
func NewPipelineService(source FactSource, catalog *ConceptCatalog, opts PipelineOptions) *PipelineService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	defaults := DefaultStalenessPolicy()
	if opts.Staleness.ExcludeAfterDays == 0 {
		opts.Staleness.ExcludeAfterDays = defaults.ExcludeAfterDays
	}
	if opts.Staleness.WarnAfterDays == 0 {
		opts.Staleness.WarnAfterDays = defaults.WarnAfterDays
	}
	return &PipelineService{
		source:  source,
		catalog: catalog,
		opts:    opts,
	}
}

// Run processes every entity in listings. Per-entity failures are counted and never abort the
// run. Cancelling ctx stops entities that have not started; finished records are kept.
func (s *PipelineService) Run(ctx context.Context, listings []models.IdentityListing, now time.Time) (*RunResult, error) {
	defer TrackTime("PipelineService.Run", time.Now())

	identities := ResolveIdentities(listings)
	if len(identities) == 0 {
		return nil, ErrNoIdentities
	}

	ctx, wc := NewWarningContext(ctx)
	for _, ident := range identities {
		if len(ident.OtherSymbols) > 0 {
			AddWarning(ctx, models.Warning{
				Code:    models.WarnDuplicateListing,
				CIK:     ident.CIK,
				Message: fmt.Sprintf("display symbol %s chosen over %v", ident.Symbol, ident.OtherSymbols),
			})
		}
	}

	result := &RunResult{
		Audit: make(map[string]models.EntityAudit),
		Summary: models.RunSummary{
			RunID:     uuid.NewString(),
			StartedAt: time.Now().UTC(),
			Listings:  len(listings),
		},
	}
	log.Infof("Run %s: %d listings resolved to %d entities", result.Summary.RunID, len(listings), len(identities))

	var mu sync.Mutex
	collect := func(out entityOutcome) {
		mu.Lock()
		defer mu.Unlock()
		sum := &result.Summary
		if out.status != statusCancelled {
			sum.Processed++
		}
		switch out.status {
		case statusSucceeded:
			sum.Succeeded++
			if len(out.record.QualityFlags) > 0 {
				sum.QualityFlagged++
			}
			result.Records = append(result.Records, out.record)
			result.Audit[out.record.CIK] = out.audit
		case statusNotFound:
			sum.NotFound++
		case statusErrored:
			sum.Errored++
		case statusStale:
			sum.StaleExcluded++
		case statusCancelled:
			sum.Cancelled++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, ident := range identities {
		ident := ident
		if gctx.Err() != nil {
			collect(s.cancelled(gctx, ident))
			continue
		}
		g.Go(func() error {
			collect(s.processEntity(gctx, ident, now))
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Records, func(i, j int) bool {
		if result.Records[i].Symbol != result.Records[j].Symbol {
			return result.Records[i].Symbol < result.Records[j].Symbol
		}
		return result.Records[i].CIK < result.Records[j].CIK
	})

	result.Summary.Warnings = wc.Sorted()
	result.Summary.FinishedAt = time.Now().UTC()
	log.Infof("Run %s finished: processed=%d succeeded=%d not_found=%d quality_flagged=%d stale_excluded=%d errored=%d cancelled=%d",
		result.Summary.RunID, result.Summary.Processed, result.Summary.Succeeded, result.Summary.NotFound,
		result.Summary.QualityFlagged, result.Summary.StaleExcluded, result.Summary.Errored, result.Summary.Cancelled)
	if len(result.Summary.Warnings) > 0 {
		fields := log.Fields{}
		for _, code := range runWarningCodes {
			if n := wc.Count(code); n > 0 {
				fields[string(code)] = n
			}
		}
		log.WithFields(fields).Infof("Run %s warnings by code", result.Summary.RunID)
	}

	return result, nil
}

func (s *PipelineService) processEntity(ctx context.Context, ident models.Identity, now time.Time) entityOutcome {
	if ctx.Err() != nil {
		return s.cancelled(ctx, ident)
	}

	doc, err := s.source.Load(ctx, ident.CIK)
	if err != nil {
		switch {
		case errors.Is(err, edgar.ErrNotFound):
			log.Debugf("No facts for %s (CIK %s)", ident.Symbol, ident.CIK)
			AddWarning(ctx, models.Warning{Code: models.WarnEntityNotFound, CIK: ident.CIK, Message: ident.Symbol + ": no company facts"})
			return entityOutcome{status: statusNotFound}
		case ctx.Err() != nil:
			return s.cancelled(ctx, ident)
		case errors.Is(err, edgar.ErrMalformed):
			log.Warnf("Parse failed for %s (CIK %s): %v", ident.Symbol, ident.CIK, err)
			AddWarning(ctx, models.Warning{Code: models.WarnParseFailed, CIK: ident.CIK, Message: err.Error()})
		default:
			log.Warnf("Fetch failed for %s (CIK %s): %v", ident.Symbol, ident.CIK, err)
			AddWarning(ctx, models.Warning{Code: models.WarnFetchFailed, CIK: ident.CIK, Message: err.Error()})
		}
		return entityOutcome{status: statusErrored}
	}

	record, audit, excluded := BuildRecord(s.catalog, ident, doc, now, s.opts.Staleness)
	if excluded {
		ref := "none"
		if record.ReferenceDate != nil {
			ref = record.ReferenceDate.String()
		}
		log.Debugf("Excluding stale %s (CIK %s), reference date %s", ident.Symbol, ident.CIK, ref)
		AddWarning(ctx, models.Warning{Code: models.WarnStaleExcluded, CIK: ident.CIK, Message: ident.Symbol + ": reference date " + ref})
		return entityOutcome{status: statusStale}
	}

	return entityOutcome{status: statusSucceeded, record: record, audit: audit}
}

func (s *PipelineService) cancelled(ctx context.Context, ident models.Identity) entityOutcome {
	AddWarning(ctx, models.Warning{Code: models.WarnEntityCancelled, CIK: ident.CIK, Message: ident.Symbol + ": not processed before cancellation"})
	return entityOutcome{status: statusCancelled}
}
