package reformulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterNearDuplicatesDropsHighOverlap(t *testing.T) {
	queries := []string{
		"what is the capital of France",
		"What Is The Capital Of France",
		"population of France",
	}
	kept := FilterNearDuplicates(queries, DefaultNearDuplicateThreshold)
	assert.Equal(t, []string{"what is the capital of France", "population of France"}, kept)
}

func TestFilterNearDuplicatesKeepsDistinctQueries(t *testing.T) {
	queries := []string{"capital of France", "largest city in Japan", "GDP of Germany"}
	kept := FilterNearDuplicates(queries, DefaultNearDuplicateThreshold)
	assert.Len(t, kept, 3)
}

func TestCleanVariantsDropsBlankEntries(t *testing.T) {
	kept := CleanVariants("capital of France", []string{"largest city in Japan", "   ", ""})
	assert.Equal(t, []string{"largest city in Japan"}, kept)
}

func TestCleanVariantsDropsOriginalQueryAfterNormalization(t *testing.T) {
	kept := CleanVariants("  What Is The Capital Of France  ", []string{
		"what is the capital of france",
		"largest city in Japan",
	})
	assert.Equal(t, []string{"largest city in Japan"}, kept)
}

func TestCleanVariantsDropsNearDuplicatesAmongVariants(t *testing.T) {
	kept := CleanVariants("unrelated query", []string{
		"what is the capital of France",
		"What Is The Capital Of France",
		"population of France",
	})
	assert.Equal(t, []string{"what is the capital of France", "population of France"}, kept)
}

func TestCleanVariantsKeepsCleanVariants(t *testing.T) {
	kept := CleanVariants("unrelated query", []string{"capital of France", "largest city in Japan"})
	assert.Equal(t, []string{"capital of France", "largest city in Japan"}, kept)
}
