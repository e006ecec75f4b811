package businessflow

import (
	"testing"

	"github.com/apexhq/outreach-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlaceholderToken(t *testing.T) {
	placeholders := []string{
		"",
		"   ",
		"Open",
		"open to anything",
		"Anywhere",
		"ANY",
		"Global",
		"Remote OK",
		"N/A",
		"none",
		"skip",
		"Not specified",
		"unspecified",
	}
	for _, token := range placeholders {
		assert.True(t, IsPlaceholderToken(token), "expected %q to be a placeholder", token)
	}

	meaningful := []string{
		"VP Engineering",
		"Berlin",
		"fintech",
		"Founder",
		"São Paulo",
	}
	for _, token := range meaningful {
		assert.False(t, IsPlaceholderToken(token), "expected %q to be meaningful", token)
	}
}

func TestFilterMeaningfulTokens(t *testing.T) {
	got := FilterMeaningfulTokens([]string{" Berlin ", "Anywhere", "", "fintech", "N/A"})
	assert.Equal(t, []string{"Berlin", "fintech"}, got)

	assert.Empty(t, FilterMeaningfulTokens(nil))
	assert.Empty(t, FilterMeaningfulTokens([]string{"open", "any"}))
}

func TestBuildSearchFilters(t *testing.T) {
	t.Run("joins titles with OR and appends keywords and industries", func(t *testing.T) {
		campaign := &models.Campaign{
			JobTitles:  []string{"Founder", "CTO"},
			Keywords:   []string{"saas"},
			Industries: []string{"fintech"},
			Locations:  []string{"Berlin", "Anywhere"},
		}

		filters, ok := BuildSearchFilters(campaign)
		require.True(t, ok)
		assert.Equal(t, "Founder OR CTO saas fintech", filters.Keywords)
		assert.Equal(t, []string{"Berlin"}, filters.Locations)
		assert.Equal(t, []string{"fintech"}, filters.Industries)
	})

	t.Run("drops placeholder tokens from every set", func(t *testing.T) {
		campaign := &models.Campaign{
			JobTitles: []string{"Open to anything", "Founder"},
			Keywords:  []string{"N/A"},
			Locations: []string{"Global"},
		}

		filters, ok := BuildSearchFilters(campaign)
		require.True(t, ok)
		assert.Equal(t, "Founder", filters.Keywords)
		assert.Empty(t, filters.Locations)
	})

	t.Run("locations alone are enough to search", func(t *testing.T) {
		campaign := &models.Campaign{
			Locations: []string{"Berlin"},
		}

		filters, ok := BuildSearchFilters(campaign)
		require.True(t, ok)
		assert.Empty(t, filters.Keywords)
		assert.Equal(t, []string{"Berlin"}, filters.Locations)
	})

	t.Run("reports not ok when nothing meaningful remains", func(t *testing.T) {
		campaign := &models.Campaign{
			JobTitles: []string{"Open to anything"},
			Locations: []string{"Anywhere", "Remote OK"},
			Keywords:  []string{"n/a"},
		}

		_, ok := BuildSearchFilters(campaign)
		assert.False(t, ok)
	})

	t.Run("reports not ok for an untargeted campaign", func(t *testing.T) {
		_, ok := BuildSearchFilters(&models.Campaign{})
		assert.False(t, ok)
	})
}
