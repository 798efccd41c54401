package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const specsDir = "../../testdata/specs"

const joinSpec = `package specs

fn: join_strings: {
	optarg_fn: {builder: "JoinStringBuilder", terminal: "exec"}
	vis: "pub"
	params: [
		{pattern: "mut a", type: "String"},
		{pattern: "b", type: "String", optarg_default: true},
		{pattern: "c", type: "String", optarg: "\"ccc\".to_owned()"},
	]
	returns: "String"
	body: "{ a.push_str(&b); a.push_str(&c); a }"
}
`

// writeSpecs creates a specs directory holding the given files.
func writeSpecs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// decodeResponse parses a JSON CLIResponse, decoding Data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "stdout must be a single JSON document: %s", out)
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp.CLIResponse
}

func readGolden(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
