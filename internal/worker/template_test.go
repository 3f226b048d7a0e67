package worker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotflare/slotflare/backend/internal/worker"
)

func basePolicy() worker.Policy {
	return worker.Policy{
		ScriptName:      "casino-filter",
		Keywords:        []string{"Casino", "bet"},
		WhitelistPaths:  []string{"/health", "/api/status"},
		EnableAlert:     true,
		CallbackBaseURL: "https://dash.example.com",
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first, err := worker.Generate(basePolicy())
	require.NoError(t, err)
	second, err := worker.Generate(basePolicy())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateIncludesPolicyData(t *testing.T) {
	source, err := worker.Generate(basePolicy())
	require.NoError(t, err)

	assert.Contains(t, source, "'/health', '/api/status'")
	assert.Contains(t, source, "'Casino', 'bet'")
	assert.Contains(t, source, "scriptName: 'casino-filter'")
	assert.Contains(t, source, "fetch('https://dash.example.com/api/trigger'")
	assert.Contains(t, source, "403 Forbidden")
}

func TestGenerateEmptyLists(t *testing.T) {
	p := basePolicy()
	p.Keywords = nil
	p.WhitelistPaths = nil

	source, err := worker.Generate(p)
	require.NoError(t, err)

	assert.Contains(t, source, "const whitelistPaths = [];")
	assert.Contains(t, source, "const forbiddenKeywords = [];")
}

func TestGenerateAlertDisabled(t *testing.T) {
	p := basePolicy()
	p.EnableAlert = false

	source, err := worker.Generate(p)
	require.NoError(t, err)

	assert.NotContains(t, source, "waitUntil")
	assert.NotContains(t, source, "/api/trigger")
	assert.Contains(t, source, "status: 403")
}

func TestGenerateEscapesKeywords(t *testing.T) {
	p := basePolicy()
	p.Keywords = []string{"it's", `back\slash`, "multi\nline"}

	source, err := worker.Generate(p)
	require.NoError(t, err)

	assert.Contains(t, source, `'it\'s'`)
	assert.Contains(t, source, `'back\\slash'`)
	assert.Contains(t, source, `'multi\nline'`)
	// No raw newline may survive inside the keywords array literal.
	for _, line := range strings.Split(source, "\n") {
		if strings.Contains(line, "forbiddenKeywords") {
			assert.Contains(t, line, "];")
		}
	}
}

func TestGenerateCallbackURLTrailingSlash(t *testing.T) {
	p := basePolicy()
	p.CallbackBaseURL = "https://dash.example.com/"

	source, err := worker.Generate(p)
	require.NoError(t, err)
	assert.Contains(t, source, "'https://dash.example.com/api/trigger'")
	assert.NotContains(t, source, "com//api/trigger")
}

func TestGenerateMatchingIsCaseInsensitive(t *testing.T) {
	source, err := worker.Generate(basePolicy())
	require.NoError(t, err)

	// Both the haystack and the keyword are lowercased at match time.
	assert.Contains(t, source, ".toLowerCase()")
	assert.Contains(t, source, "keyword.toLowerCase()")
}
