package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraw/restfile/packages/core/selector"
)

func TestParseBlock_NativeSyntax(t *testing.T) {
	doc := selector.Split("### login\n# @no-redirect\nPOST https://x/auth\n")
	require.Len(t, doc.Blocks, 1)

	d, warnings, err := parseBlock(doc.Blocks[0])
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "login", d.Name)
	assert.True(t, d.Options.NoRedirect)
}

func TestParseBlock_CurlWarningsSurfaced(t *testing.T) {
	doc := selector.Split("### fetch\ncurl --retry 3 https://x/a\n")
	require.Len(t, doc.Blocks, 1)

	d, warnings, err := parseBlock(doc.Blocks[0])
	require.NoError(t, err)
	assert.Equal(t, "https://x/a", d.URL)
	require.Len(t, warnings, 1)
	assert.Equal(t, "--retry", warnings[0].Flag)
}
