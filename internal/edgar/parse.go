package edgar

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/epeers/bankmetrics/internal/models"
	log "github.com/sirupsen/logrus"
)

// PadCIK normalizes a CIK to the 10-digit zero-padded form used in SEC URLs and archive file names
func PadCIK(cik string) (string, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(cik)), "CIK")
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid CIK %q", cik)
	}
	return fmt.Sprintf("%010d", n), nil
}

// ParseCompanyFacts decodes a company facts document and indexes it by namespace/concept/unit.
// Every series is sorted newest period first; facts with unparseable dates or a start after
// the end are dropped.
func ParseCompanyFacts(r io.Reader) (*models.CompanyFacts, error) {
	var resp companyFactsResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Facts == nil {
		return nil, fmt.Errorf("%w: no facts object", ErrMalformed)
	}

	out := &models.CompanyFacts{
		CIK:        fmt.Sprintf("%010d", resp.CIK),
		EntityName: resp.EntityName,
		Series:     make(map[models.ConceptKey]*models.ConceptSeries),
	}

	dropped := 0
	for namespace, concepts := range resp.Facts {
		for concept, data := range concepts {
			for unit, entries := range data.Units {
				series := &models.ConceptSeries{
					Namespace: namespace,
					Concept:   concept,
					Unit:      unit,
					Facts:     make([]models.RawFact, 0, len(entries)),
				}
				for _, e := range entries {
					fact, ok := toRawFact(namespace, concept, unit, e)
					if !ok {
						dropped++
						continue
					}
					series.Facts = append(series.Facts, fact)
				}
				SortFacts(series.Facts)
				out.Series[models.ConceptKey{Namespace: namespace, Concept: concept, Unit: unit}] = series
			}
		}
	}

	if dropped > 0 {
		log.Debugf("ParseCompanyFacts: CIK %s dropped %d facts with unparseable dates", out.CIK, dropped)
	}
	return out, nil
}

// SortFacts orders facts by period end descending, then filed descending, then accession
func SortFacts(facts []models.RawFact) {
	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if !a.End.Equal(b.End.Time) {
			return a.End.After(b.End.Time)
		}
		if !a.Filed.Equal(b.Filed.Time) {
			return a.Filed.After(b.Filed.Time)
		}
		return a.Accession < b.Accession
	})
}

func toRawFact(namespace, concept, unit string, e factEntry) (models.RawFact, bool) {
	end, err := models.ParseDate(e.End)
	if err != nil {
		return models.RawFact{}, false
	}

	fact := models.RawFact{
		Namespace: namespace,
		Concept:   concept,
		Unit:      unit,
		Value:     e.Val,
		End:       end,
		Form:      models.Form(e.Form),
		Accession: e.Accn,
	}
	if e.Start != "" {
		start, err := models.ParseDate(e.Start)
		if err != nil || start.After(end.Time) {
			return models.RawFact{}, false
		}
		fact.Start = &start
	}
	if e.Filed != "" {
		if filed, err := models.ParseDate(e.Filed); err == nil {
			fact.Filed = filed
		}
	}
	if e.FY != nil {
		fact.FiscalYear = *e.FY
	}
	if e.FP != nil {
		fact.FiscalPeriod = *e.FP
	}
	return fact, true
}
