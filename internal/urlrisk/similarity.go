package urlrisk

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/publicsuffix"
)

const (
	// reportSimilarityThreshold is the similarity above which the value
	// is recorded in metadata
	reportSimilarityThreshold = 0.7
	// highSimilarityThreshold is the similarity above which a look-alike
	// finding escalates to high risk
	highSimilarityThreshold = 0.8
)

// defaultBrandDomains are legitimate domains commonly impersonated via
// look-alike registrations
var defaultBrandDomains = []string{
	"paypal.com",
	"amazon.com",
	"microsoft.com",
	"apple.com",
	"google.com",
	"facebook.com",
	"netflix.com",
	"ebay.com",
	"bancosantander.es",
	"bbva.es",
	"caixabank.es",
	"bancochile.cl",
	"santander.com",
	"scotiabank.com",
}

// brandSimilarity compares the registrable domain against the brand
// list using a normalized edit-distance ratio. The best similarity is
// returned when it exceeds the reporting threshold; an exact match is
// the legitimate domain itself, not a look-alike, and is skipped.
func (a *Analyzer) brandSimilarity(domain string) (float64, bool) {
	candidate := registrableDomain(domain)
	if candidate == "" {
		return 0, false
	}

	best := 0.0

	for _, brand := range a.brands {
		legit := registrableDomain(brand)
		if legit == "" || legit == candidate {
			continue
		}

		longest := max(len(candidate), len(legit))
		if longest == 0 {
			continue
		}

		distance := fuzzy.LevenshteinDistance(candidate, legit)

		similarity := 1.0 - float64(distance)/float64(longest)
		if similarity > best {
			best = similarity
		}
	}

	if best > reportSimilarityThreshold {
		return best, true
	}

	return 0, false
}

// registrableDomain reduces a hostname to its effective TLD plus one,
// falling back to the input when the public suffix list cannot parse it
func registrableDomain(host string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return etld1
}
