package transport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePathsJSON(t *testing.T) {
	paths := []Path{
		{{0, 0, 0}, {1, 2, 3}},
		{{0, 0, 0}},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePathsJSON(&buf, paths))
	assert.Equal(t, "[[[0,0,0],[1,2,3]],[[0,0,0]]]", strings.TrimSpace(buf.String()))

	back, err := ReadPathsJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, paths, back)
}

func TestWritePathsJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePathsJSON(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestRunWritesOutputs(t *testing.T) {
	cfg := testConfig()
	cfg.PhotonCount = 50
	pathsFile := filepath.Join(t.TempDir(), "paths.json")
	var report bytes.Buffer

	res, err := Run(t.Context(), cfg, Outputs{Report: &report, PathsFile: pathsFile})
	require.NoError(t, err)
	assert.Contains(t, report.String(), "passed through r = 5 cm")

	f, err := os.Open(pathsFile)
	require.NoError(t, err)
	defer f.Close()
	paths, err := ReadPathsJSON(f)
	require.NoError(t, err)
	assert.Equal(t, res.Paths, paths)
}
