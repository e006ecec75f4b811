package businessflow

import (
	"strings"

	"github.com/apexhq/outreach-engine/app/services"
	"github.com/apexhq/outreach-engine/models"
)

// placeholderTokens are targeting values treated as meaningless. A token is
// dropped when it contains any of these, case-insensitive.
var placeholderTokens = []string{
	"open",
	"any",
	"global",
	"anywhere",
	"remote ok",
	"n/a",
	"none",
	"skip",
	"not specified",
	"unspecified",
}

// IsPlaceholderToken reports whether a targeting token carries no real
// targeting signal
func IsPlaceholderToken(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return true
	}
	for _, p := range placeholderTokens {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// FilterMeaningfulTokens drops placeholder tokens and trims the rest,
// preserving order
func FilterMeaningfulTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if IsPlaceholderToken(t) {
			continue
		}
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

// BuildSearchFilters assembles the provider search payload from a campaign's
// targeting sets. Job titles are OR-joined first, then keywords and
// industries are appended to the keyword string; locations travel as a
// structured list. Returns ok=false when nothing meaningful remains, in
// which case discovery is skipped for the cycle.
func BuildSearchFilters(campaign *models.Campaign) (services.SearchFilters, bool) {
	var parts []string

	titles := FilterMeaningfulTokens(campaign.JobTitles)
	if len(titles) > 0 {
		parts = append(parts, strings.Join(titles, " OR "))
	}

	keywords := FilterMeaningfulTokens(campaign.Keywords)
	parts = append(parts, keywords...)

	industries := FilterMeaningfulTokens(campaign.Industries)
	parts = append(parts, industries...)

	locations := FilterMeaningfulTokens(campaign.Locations)

	filters := services.SearchFilters{
		Keywords:   strings.Join(parts, " "),
		Locations:  locations,
		Industries: industries,
	}

	if filters.Keywords == "" && len(locations) == 0 {
		return services.SearchFilters{}, false
	}

	return filters, true
}
