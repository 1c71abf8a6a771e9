package models

// Form is the SEC filing type a fact was reported in
type Form string

const (
	FormAnnual    Form = "10-K"
	FormQuarterly Form = "10-Q"
)

// Accepted reports whether facts from this filing type take part in resolution.
// Amendments, registration statements and 8-Ks are ignored.
func (f Form) Accepted() bool {
	return f == FormAnnual || f == FormQuarterly
}

// PeriodLength is the temporal shape of a fact, in quarters.
// Zero means point-in-time; PeriodInvalid marks a start date after the end date.
type PeriodLength int

const (
	PeriodInvalid    PeriodLength = -1
	PeriodInstant    PeriodLength = 0
	PeriodQuarter    PeriodLength = 1
	PeriodHalfYear   PeriodLength = 2
	PeriodNineMonths PeriodLength = 3
	PeriodAnnual     PeriodLength = 4
)

// RawFact is a single reported XBRL value, as parsed from a company facts document
type RawFact struct {
	Namespace    string  `json:"namespace"`
	Concept      string  `json:"concept"`
	Unit         string  `json:"unit"`
	Value        float64 `json:"value"`
	End          Date    `json:"end"`
	Start        *Date   `json:"start,omitempty"`
	Form         Form    `json:"form"`
	FiscalYear   int     `json:"fiscal_year"`
	FiscalPeriod string  `json:"fiscal_period"`
	Filed        Date    `json:"filed"`
	Accession    string  `json:"accession"`
}

// ConceptSeries holds every fact for one namespace/concept/unit, newest period first
type ConceptSeries struct {
	Namespace string    `json:"namespace"`
	Concept   string    `json:"concept"`
	Unit      string    `json:"unit"`
	Facts     []RawFact `json:"facts"`
}

// ConceptKey identifies a series inside a facts document
type ConceptKey struct {
	Namespace string
	Concept   string
	Unit      string
}

// CompanyFacts is the per-entity facts document after parsing, indexed by concept and unit
type CompanyFacts struct {
	CIK        string
	EntityName string
	Series     map[ConceptKey]*ConceptSeries
}

// Lookup returns the series for a concept/unit pair, or nil when the filer never reported it
func (c *CompanyFacts) Lookup(key ConceptKey) *ConceptSeries {
	if c == nil || c.Series == nil {
		return nil
	}
	return c.Series[key]
}
