package yamltree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return &doc
}

func encode(t *testing.T, n *yaml.Node) map[string]interface{} {
	t.Helper()
	out, err := yaml.Marshal(n)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &m))
	return m
}

const tempDoc = `
app:
  name: temp
  nodes:
    - id: 1
      data:
        model:
          provider_id: ""
    - id: 2
      data:
        model:
          provider_id: langgenius/openai/openai
          name: gpt-4o
`

const baseDoc = `
app:
  name: Travel Agent
  mode: workflow
  # model wiring
  nodes:
    - id: start
      data:
        title: Start
    - id: llm
      data:
        model:
          provider_id: old/provider
          completion_params:
            temperature: 0.7
    - id: answer
      data:
        provider_id: old/provider
`

func TestFindKey(t *testing.T) {
	v, ok := FindKey(parse(t, tempDoc), "provider_id")
	require.True(t, ok)
	assert.Equal(t, "langgenius/openai/openai", v.Value)

	_, ok = FindKey(parse(t, "a: 1\nb: [x, y]\n"), "provider_id")
	assert.False(t, ok)

	// Own keys win over deeper ones.
	v, ok = FindKey(parse(t, "nested:\n  provider_id: deep\nprovider_id: top\n"), "provider_id")
	require.True(t, ok)
	assert.Equal(t, "top", v.Value)
}

func TestReplaceKey(t *testing.T) {
	base := parse(t, baseDoc)
	value, ok := FindKey(parse(t, tempDoc), "provider_id")
	require.True(t, ok)

	assert.Equal(t, 2, ReplaceKey(base, "provider_id", value))

	m := encode(t, base)
	app := m["app"].(map[string]interface{})
	assert.Equal(t, "Travel Agent", app["name"])
	nodes := app["nodes"].([]interface{})
	llm := nodes[1].(map[string]interface{})["data"].(map[string]interface{})["model"].(map[string]interface{})
	assert.Equal(t, "langgenius/openai/openai", llm["provider_id"])
	assert.Equal(t, 0.7, llm["completion_params"].(map[string]interface{})["temperature"])
	answer := nodes[2].(map[string]interface{})["data"].(map[string]interface{})
	assert.Equal(t, "langgenius/openai/openai", answer["provider_id"])

	// Replacements are independent copies.
	value.Value = "changed"
	assert.Equal(t, "langgenius/openai/openai", encode(t, base)["app"].(map[string]interface{})["nodes"].([]interface{})[2].(map[string]interface{})["data"].(map[string]interface{})["provider_id"])
}

func TestReplaceKey_BaseWithoutKey(t *testing.T) {
	base := parse(t, "app:\n  name: x\n")
	assert.Zero(t, ReplaceKey(base, "provider_id", &yaml.Node{Kind: yaml.ScalarNode, Value: "p"}))
	assert.Equal(t, map[string]interface{}{"app": map[string]interface{}{"name": "x"}}, encode(t, base))
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "base.yml")
	require.NoError(t, os.WriteFile(in, []byte(baseDoc), 0o644))

	doc, err := Load(in)
	require.NoError(t, err)
	out := filepath.Join(dir, "Travel Agent.yml")
	require.NoError(t, Save(out, doc))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# model wiring")
	assert.Contains(t, string(data), "name: Travel Agent")

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("a: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
