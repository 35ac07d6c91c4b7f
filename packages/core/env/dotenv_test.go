package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# comment line
API_KEY=plain-value
QUOTED="has spaces"
SINGLE='single quoted'
EMPTY=

NOT_A_PAIR
  SPACED = trimmed
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vars, err := LoadDotEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "plain-value", vars["API_KEY"])
	assert.Equal(t, "has spaces", vars["QUOTED"])
	assert.Equal(t, "single quoted", vars["SINGLE"])
	assert.Equal(t, "", vars["EMPTY"])
	assert.Equal(t, "trimmed", vars["SPACED"])
	assert.NotContains(t, vars, "NOT_A_PAIR")
}

func TestParseDotEnv(t *testing.T) {
	vars, err := parseDotEnv(strings.NewReader("A=1\nB='x'\n=nokey\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "x"}, vars)
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	_, err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
