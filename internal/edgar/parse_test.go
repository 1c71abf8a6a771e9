package edgar_test

import (
	"strings"
	"testing"

	"github.com/epeers/bankmetrics/internal/edgar"
	"github.com/epeers/bankmetrics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompanyFacts_DropsInvertedPeriods(t *testing.T) {
	doc := `{
  "cik": 70858,
  "entityName": "Sample Bancorp",
  "facts": {"us-gaap": {"NetIncomeLoss": {"units": {"USD": [
    {"start": "2024-07-01", "end": "2024-09-30", "val": 7000000, "accn": "a", "fy": 2024, "fp": "Q3", "form": "10-Q", "filed": "2024-11-05"},
    {"start": "2024-10-01", "end": "2024-09-30", "val": 9000000, "accn": "b", "fy": 2024, "fp": "Q3", "form": "10-Q", "filed": "2024-11-05"},
    {"start": "2024-09-30", "end": "2024-09-30", "val": 1000000, "accn": "c", "fy": 2024, "fp": "Q3", "form": "10-Q", "filed": "2024-11-05"}
  ]}}}}
}`

	facts, err := edgar.ParseCompanyFacts(strings.NewReader(doc))
	require.NoError(t, err)

	ni := facts.Lookup(models.ConceptKey{Namespace: "us-gaap", Concept: "NetIncomeLoss", Unit: "USD"})
	require.NotNil(t, ni)
	require.Len(t, ni.Facts, 2, "fact starting after its end date is dropped")
	for _, f := range ni.Facts {
		assert.NotEqual(t, "b", f.Accession)
		assert.False(t, f.Start.After(f.End.Time))
	}
}
