package edgar

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the remote API or the archive has no facts document for the CIK
	ErrNotFound = errors.New("company facts not found")
	// ErrMalformed means a facts document could not be decoded
	ErrMalformed = errors.New("malformed company facts document")
)

// APIError is returned for non-success responses other than 404
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SEC API returned status %d for %s: %s", e.StatusCode, e.URL, e.Message)
}

// companyFactsResponse mirrors https://data.sec.gov/api/xbrl/companyfacts/CIK##########.json
// Shape: facts -> namespace -> concept -> units -> unit -> []factEntry
type companyFactsResponse struct {
	CIK        int64                             `json:"cik"`
	EntityName string                            `json:"entityName"`
	Facts      map[string]map[string]conceptData `json:"facts"`
}

type conceptData struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]factEntry `json:"units"`
}

type factEntry struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    *int    `json:"fy"`
	FP    *string `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame"`
}
