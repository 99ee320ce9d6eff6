package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/memlab/api"
)

var smallFlags = []string{
	"memlab",
	"--iterations", "5000",
	"--pool-size", "16",
	"--locality-n", "2000",
	"--heap-n", "2000",
	"--frag-blocks", "300",
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(context.Background(), &out, &errOut)
	err := app.Run(append(append([]string{}, smallFlags...), args...))
	return out.String(), errOut.String(), err
}

func TestApp_List(t *testing.T) {
	out, _, err := runApp(t, "list")
	require.NoError(t, err)
	for _, name := range []string{"pooling", "ownership", "locality", "fragmentation", "leak", "stackheap"} {
		assert.Contains(t, out, name)
	}
}

func TestApp_SingleScenario(t *testing.T) {
	out, _, err := runApp(t, "pooling")
	require.NoError(t, err)
	assert.Contains(t, out, "== pooling ==")
	assert.Contains(t, out, "fixed_pool")
	assert.NotContains(t, out, "== leak ==")
}

func TestApp_LeakFlagsAndMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.prom")
	var out, errOut bytes.Buffer
	app := newApp(context.Background(), &out, &errOut)
	args := append(append([]string{}, smallFlags...),
		"--metrics-out", path, "leak", "--mode", "raw", "--rounds", "4", "--per-round", "3", "--progress-every", "2")
	require.NoError(t, app.Run(args))
	assert.Contains(t, out.String(), "== leak ==")
	assert.Contains(t, out.String(), "cleanup")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `memlab_elapsed_seconds{label="leak",scenario="leak"}`)
}

func TestApp_All(t *testing.T) {
	out, _, err := runApp(t, "all", "--rounds", "3", "--per-round", "2")
	require.NoError(t, err)
	for _, name := range []string{"pooling", "ownership", "locality", "fragmentation", "leak", "stackheap"} {
		assert.Contains(t, out, "== "+name+" ==")
	}
}

func TestApp_Debug(t *testing.T) {
	_, errOut, err := runApp(t, "--debug", "stackheap")
	require.NoError(t, err)
	assert.Contains(t, errOut, "platform.cpus: ")
	assert.Contains(t, errOut, "metrics: ")
}

func TestApp_PinCPU(t *testing.T) {
	out, _, err := runApp(t, "--pin-cpu", "0", "stackheap")
	require.NoError(t, err, "pin failures are warnings, not errors")
	assert.Contains(t, out, "== stackheap ==")
}

func TestApp_InvalidConfig(t *testing.T) {
	_, _, err := runApp(t, "--pool-size", "0", "pooling")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidConfiguration)
}
