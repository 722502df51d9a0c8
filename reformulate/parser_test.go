package reformulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryListPlainJSON(t *testing.T) {
	queries, err := parseQueryList(`{"queries": ["a", "b"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, queries)
}

func TestParseQueryListStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"queries\": [\"alpha\", \"beta\"]}\n```"
	queries, err := parseQueryList(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, queries)
}

func TestParseQueryListInvalidJSONReturnsError(t *testing.T) {
	_, err := parseQueryList("not json at all")
	assert.Error(t, err)
}
