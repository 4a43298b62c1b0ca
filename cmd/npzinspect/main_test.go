package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-npy/internal/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(context.Background(), append([]string{"npzinspect"}, args...))
	return stdout.String(), stderr.String(), err
}

func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func fixtureArchive(t *testing.T) string {
	t.Helper()
	fx := testutil.Archive(t,
		testutil.ArchiveEntry{Name: "weights", Method: testutil.MethodDeflate,
			Data: testutil.NPY(t, testutil.NPYSpec{Descr: "<f4", Shape: []int{2, 3}, Data: make([]byte, 24)})},
		testutil.ArchiveEntry{Name: "labels", Method: testutil.MethodStore,
			Data: testutil.NPY(t, testutil.NPYSpec{Descr: "<i8", Shape: []int{4}, Fortran: true, Data: make([]byte, 32)})},
	)
	return testutil.WriteFile(t, "model.npz", fx.Bytes)
}

func TestInfoText(t *testing.T) {
	isolateConfig(t)
	path := fixtureArchive(t)

	out, _, err := run(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 members")
	assert.Contains(t, out, "weights")
	assert.Contains(t, out, "float32")
	assert.Contains(t, out, "[2 3]")
	assert.Contains(t, out, "labels")
	assert.Contains(t, out, "int64")
}

func TestInfoJSON(t *testing.T) {
	isolateConfig(t)
	path := fixtureArchive(t)

	out, _, err := run(t, "info", "--format", "json", path)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "npz", rep.Kind)
	assert.Equal(t, 2, rep.Members)
	require.Len(t, rep.Arrays, 2)

	// Sorted by name.
	assert.Equal(t, "labels", rep.Arrays[0].Name)
	assert.Equal(t, "F", rep.Arrays[0].Order)
	assert.Equal(t, 32, rep.Arrays[0].Bytes)
	assert.Equal(t, "weights", rep.Arrays[1].Name)
	assert.Equal(t, []int{2, 3}, rep.Arrays[1].Shape)
	assert.Equal(t, "float32", rep.Arrays[1].GoType)
}

func TestInfoEntryYAML(t *testing.T) {
	isolateConfig(t)
	path := fixtureArchive(t)

	out, stderr, err := run(t, "info", "--format", "yaml", "--entry", "weights", "--log-level", "debug", path)
	require.NoError(t, err)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Arrays, 1)
	assert.Equal(t, "weights", rep.Arrays[0].Name)
	assert.Equal(t, "float32", rep.Arrays[0].Dtype)
	assert.Contains(t, stderr, "expanded entry")
}

func TestInfoStandalone(t *testing.T) {
	isolateConfig(t)
	raw := testutil.NPY(t, testutil.NPYSpec{Descr: "<f8", Shape: []int{}, Data: make([]byte, 8)})
	path := testutil.WriteFile(t, "scalar.npy", raw)

	out, _, err := run(t, "info", "-f", "json", path)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "npy", rep.Kind)
	require.Len(t, rep.Arrays, 1)
	assert.Equal(t, "float64", rep.Arrays[0].Dtype)
	assert.Empty(t, rep.Arrays[0].Shape)

	_, _, err = run(t, "info", "--entry", "x", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an archive")
}

func TestInfoErrors(t *testing.T) {
	isolateConfig(t)
	path := fixtureArchive(t)

	_, _, err := run(t, "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")

	_, _, err = run(t, "info", "--format", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")

	_, _, err = run(t, "info", "--log-level", "loud", path)
	require.Error(t, err)

	_, _, err = run(t, "info", "--entry", "missing", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	_, _, err = run(t, "info", "--max-array-bytes", "8", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
}

func TestInfoUsesConfigFile(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "npzinspect"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "npzinspect", "config.yaml"),
		[]byte("format: json\nmax_array_bytes: 1024\n"), 0o600))
	path := fixtureArchive(t)

	out, _, err := run(t, "info", path)
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Arrays, 2)

	// Explicit flags win over the file.
	out, _, err = run(t, "info", "--format", "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
}
