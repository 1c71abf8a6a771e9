package services

import (
	"regexp"
	"sort"

	"github.com/epeers/bankmetrics/internal/models"
)

// preferredClassPattern matches preferred-share symbols such as "BAC-PB" or "C-P"
var preferredClassPattern = regexp.MustCompile(`^.+-P[A-Z]?$`)

// IsPreferredClass reports whether a ticker denotes a preferred share class
func IsPreferredClass(symbol string) bool {
	return preferredClassPattern.MatchString(symbol)
}

// SelectDisplaySymbol picks the shortest common-class symbol, or the shortest symbol when every
// listing is a preferred class. Equal lengths are broken alphabetically, so input order never matters.
func SelectDisplaySymbol(symbols []string) string {
	var common []string
	for _, s := range symbols {
		if !IsPreferredClass(s) {
			common = append(common, s)
		}
	}
	candidates := common
	if len(candidates) == 0 {
		candidates = symbols
	}
	if len(candidates) == 0 {
		return ""
	}

	best := candidates[0]
	for _, s := range candidates[1:] {
		if len(s) < len(best) || (len(s) == len(best) && s < best) {
			best = s
		}
	}
	return best
}

// ResolveIdentities collapses listings that share a CIK into one Identity, sorted by CIK.
// Descriptive fields come from the listing that carries the display symbol.
func ResolveIdentities(listings []models.IdentityListing) []models.Identity {
	byCIK := make(map[string][]models.IdentityListing)
	for _, l := range listings {
		byCIK[l.CIK] = append(byCIK[l.CIK], l)
	}

	ciks := make([]string, 0, len(byCIK))
	for cik := range byCIK {
		ciks = append(ciks, cik)
	}
	sort.Strings(ciks)

	identities := make([]models.Identity, 0, len(ciks))
	for _, cik := range ciks {
		group := byCIK[cik]
		seen := make(map[string]bool)
		var symbols []string
		for _, l := range group {
			if !seen[l.Ticker] {
				seen[l.Ticker] = true
				symbols = append(symbols, l.Ticker)
			}
		}
		display := SelectDisplaySymbol(symbols)

		var chosen models.IdentityListing
		for _, l := range group {
			if l.Ticker == display {
				chosen = l
				break
			}
		}

		var others []string
		for _, s := range symbols {
			if s != display {
				others = append(others, s)
			}
		}
		sort.Strings(others)

		identities = append(identities, models.Identity{
			CIK:            cik,
			Symbol:         display,
			Name:           chosen.Name,
			Exchange:       chosen.Exchange,
			Tier:           chosen.Tier,
			SIC:            chosen.SIC,
			SICDescription: chosen.SICDescription,
			OtherSymbols:   others,
		})
	}
	return identities
}
