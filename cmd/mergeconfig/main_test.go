package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yml", "workflow:\n  graph:\n    nodes:\n      - data:\n          model:\n            provider_id: old\n")
	temp := writeFile(t, dir, "temp.yml", "kind: app\nmeta:\n  provider_id: new/provider\n")
	out := filepath.Join(dir, "Travel Agent.yml")

	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--base", base, "--source", temp, "--out", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider_id: new/provider")
	assert.NotContains(t, string(data), "old")
	assert.Contains(t, stdout.String(), "new/provider")
}

func TestMerge_Failures(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yml", "a: 1\n")
	noID := writeFile(t, dir, "temp.yml", "b: 2\n")
	bad := writeFile(t, dir, "bad.yml", "a: [\n")
	out := filepath.Join(dir, "out.yml")

	_, err := merge(options{base: filepath.Join(dir, "missing.yml"), source: noID, out: out, key: "provider_id"})
	assert.ErrorContains(t, err, "not found")

	_, err = merge(options{base: base, source: noID, out: out, key: "provider_id"})
	assert.ErrorContains(t, err, "could not find provider_id")

	_, err = merge(options{base: bad, source: noID, out: out, key: "provider_id"})
	assert.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
