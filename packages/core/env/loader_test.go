package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironment_SharedMergedUnderProfile(t *testing.T) {
	environments := map[string]map[string]any{
		"$shared": {"version": "v2", "host": "shared-host"},
		"dev":     {"host": "localhost:3000"},
		"prod":    {"host": "api.example.com", "secure": true},
	}

	dev := LoadEnvironment(environments, "dev")
	assert.Equal(t, "dev", dev.Name)
	assert.Equal(t, "localhost:3000", dev.Variables["host"])
	assert.Equal(t, "v2", dev.Variables["version"])

	prod := LoadEnvironment(environments, "prod")
	assert.Equal(t, "api.example.com", prod.Variables["host"])
	assert.Equal(t, true, prod.Variables["secure"])
	assert.Equal(t, "v2", prod.Variables["version"])
}

func TestLoadEnvironment_NoProfileGivesShared(t *testing.T) {
	environments := map[string]map[string]any{
		"$shared": {"version": "v2"},
		"dev":     {"host": "localhost"},
	}

	env := LoadEnvironment(environments, "")
	require.NotNil(t, env)
	assert.Equal(t, "v2", env.Variables["version"])
	assert.NotContains(t, env.Variables, "host")
}

func TestLoadEnvironment_UnknownProfile(t *testing.T) {
	environments := map[string]map[string]any{
		"$shared": {"version": "v2"},
	}

	env := LoadEnvironment(environments, "staging")
	assert.Equal(t, "staging", env.Name)
	assert.Equal(t, "v2", env.Variables["version"])
	assert.Len(t, env.Variables, 1)
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(
		map[string]any{"a": 1, "b": 1},
		map[string]any{"b": 2, "c": 2},
	)
	assert.Equal(t, 1, merged["a"])
	assert.Equal(t, 2, merged["b"])
	assert.Equal(t, 2, merged["c"])
}
