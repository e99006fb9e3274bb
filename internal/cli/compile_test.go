package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Golden(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "compile", queryPath("social.yaml"))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "compile_social", []byte(out))
}

func TestCompile_JSON(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "--format", "json", "compile", queryPath("social.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"?person", "?name"}, resp.Data.Variables)
	assert.Contains(t, resp.Data.Query, "(ego-group-member !<http://example.com/people/alice> 2 id1 ?person)")
}

func TestCompile_OutputFile(t *testing.T) {
	isolate(t)
	output := filepath.Join(t.TempDir(), "query.pl")

	out, _, err := execute(t, "compile", queryPath("social.json"), "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestCompile_ConfigNamespaces(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "agq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("namespaces:\n  rel: http://example.com/rel/\n"), 0o644))
	queryFile := filepath.Join(dir, "q.yaml")
	require.NoError(t, os.WriteFile(queryFile, []byte(`where:
  - pattern: ["?a", "rel:knows", "?b"]
`), 0o644))

	out, _, err := execute(t, "--config", cfgPath, "compile", queryFile)
	require.NoError(t, err)
	assert.Equal(t, "(select (?a ?b)\n  (q- ?a !<http://example.com/rel/knows> ?b))\n", out)

	out, _, err = execute(t, "--config", cfgPath, "compile", "--compact", queryFile)
	require.NoError(t, err)
	assert.Equal(t, "(select (?a ?b)\n  (q- ?a !rel:knows ?b))\n", out)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		code string
		exit int
	}{
		{"not_found", "absent.yaml", ErrCodeNotFound, ExitCommandError},
		{"ambiguous_entry", "ambiguous.yaml", ErrCodeInvalidEntry, ExitCommandError},
		{"optional_pattern", "optional.yaml", ErrCodeUnsupportedPattern, ExitFailure},
		{"empty_query", "empty.yaml", ErrCodeEmptyQuery, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			out, errOut, err := execute(t, "compile", queryPath(tt.file))
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))
			assert.Empty(t, out)
			assert.Contains(t, errOut, "Error ["+tt.code+"]")
		})
	}
}

func TestCompile_ErrorJSON(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "--format", "json", "compile", queryPath("optional.yaml"))
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnsupportedPattern, resp.Error.Code)
}

func TestCompile_DoesNotCreateStateFile(t *testing.T) {
	state := isolate(t)

	_, _, err := execute(t, "compile", queryPath("social.yaml"))
	require.NoError(t, err)

	_, err = os.Stat(state)
	assert.True(t, os.IsNotExist(err))
}
