package services

import (
	"context"
	"sort"
	"sync"

	"github.com/epeers/bankmetrics/internal/models"
)

type warningContextKey struct{}

// WarningCollector accumulates per-entity warnings during a pipeline run.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []models.Warning
}

// NewWarningContext returns a context carrying a fresh WarningCollector,
// plus a reference to the collector so the caller can read warnings after the run.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{}
	return context.WithValue(ctx, warningContextKey{}, wc), wc
}

// AddWarning appends a warning to the collector in ctx.
// If ctx has no collector, the call is a no-op.
func AddWarning(ctx context.Context, w models.Warning) {
	wc, ok := ctx.Value(warningContextKey{}).(*WarningCollector)
	if !ok || wc == nil {
		return
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.warnings = append(wc.warnings, w)
}

// GetWarnings returns all collected warnings in arrival order.
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return append([]models.Warning(nil), wc.warnings...)
}

// Sorted returns the warnings ordered by CIK, then code, then message, so concurrent runs
// report identically.
func (wc *WarningCollector) Sorted() []models.Warning {
	out := wc.GetWarnings()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CIK != out[j].CIK {
			return out[i].CIK < out[j].CIK
		}
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// Count returns how many warnings carry the given code
func (wc *WarningCollector) Count(code models.WarningCode) int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	n := 0
	for _, w := range wc.warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}
