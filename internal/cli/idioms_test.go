package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdioms_Text(t *testing.T) {
	out, err := execute(t, NewIdiomsCommand(&RootOptions{Format: FormatText}))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out, "println!")
	assert.Contains(t, out, "String::from")
}

func TestIdioms_JSONWithOverlay(t *testing.T) {
	overlay := filepath.Join("..", "harness", "testdata", "idioms", "stderr.yaml")

	decode := func(opts *RootOptions) IdiomsResult {
		out, err := execute(t, NewIdiomsCommand(opts))
		require.NoError(t, err)
		var resp struct {
			Data IdiomsResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data
	}

	base := decode(&RootOptions{Format: FormatJSON})
	extended := decode(&RootOptions{Format: FormatJSON, Idioms: []string{overlay}})

	assert.NotEqual(t, base.Hash, extended.Hash)
	assert.Greater(t, len(extended.Idioms), len(base.Idioms))
	for _, e := range extended.Idioms {
		if e.Name == "print" {
			assert.Equal(t, "eprintln!", e.Target)
		}
	}
}

func TestIdioms_MissingOverlay(t *testing.T) {
	_, err := execute(t, NewIdiomsCommand(&RootOptions{Format: FormatText, Idioms: []string{"/nonexistent.yaml"}}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E008")
}
