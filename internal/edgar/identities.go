package edgar

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/epeers/bankmetrics/internal/models"
	log "github.com/sirupsen/logrus"
)

// LoadIdentityList reads the identity list produced by entity discovery.
// Files ending in .csv are parsed as CSV, everything else as a JSON array.
func LoadIdentityList(path string) ([]models.IdentityListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity list: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseIdentityCSV(f)
	}
	return ParseIdentityJSON(f)
}

// ParseIdentityJSON parses a JSON array of identity listings
func ParseIdentityJSON(r io.Reader) ([]models.IdentityListing, error) {
	var listings []models.IdentityListing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, fmt.Errorf("failed to parse identity list: %w", err)
	}
	return cleanListings(listings), nil
}

// ParseIdentityCSV parses an identity list CSV.
// Required columns: cik, ticker. Optional: name, sic, sic_description, exchange, tier.
func ParseIdentityCSV(r io.Reader) ([]models.IdentityListing, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{"cik", "ticker"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	optionalCol := func(record []string, col string) string {
		idx, ok := colIdx[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var listings []models.IdentityListing
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read CSV record: %w", rowNum+1, err)
		}
		rowNum++

		listings = append(listings, models.IdentityListing{
			CIK:            optionalCol(record, "cik"),
			Ticker:         optionalCol(record, "ticker"),
			Name:           optionalCol(record, "name"),
			SIC:            optionalCol(record, "sic"),
			SICDescription: optionalCol(record, "sic_description"),
			Exchange:       optionalCol(record, "exchange"),
			Tier:           optionalCol(record, "tier"),
		})
	}

	return cleanListings(listings), nil
}

// cleanListings normalizes CIKs and tickers and drops rows that cannot be keyed
func cleanListings(in []models.IdentityListing) []models.IdentityListing {
	out := make([]models.IdentityListing, 0, len(in))
	for _, l := range in {
		cik, err := PadCIK(l.CIK)
		ticker := strings.ToUpper(strings.TrimSpace(l.Ticker))
		if err != nil || ticker == "" {
			log.Warnf("Skipping identity row %q/%q: unusable CIK or ticker", l.CIK, l.Ticker)
			continue
		}
		l.CIK = cik
		l.Ticker = ticker
		out = append(out, l)
	}
	return out
}
