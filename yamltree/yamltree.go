// Package yamltree finds and rewrites keys anywhere in a YAML document
// while keeping its order and comments.
package yamltree

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses the YAML file at path.
func Load(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

// Save writes node to path with two-space indentation.
func Save(path string, node *yaml.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FindKey returns the value of the first mapping entry named key. A
// mapping's own entries are checked before its children, and children are
// visited in document order. Empty or null values do not count as found.
func FindKey(node *yaml.Node, key string) (*yaml.Node, bool) {
	if node == nil {
		return nil, false
	}
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if v, ok := FindKey(child, key); ok {
				return v, true
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key && !isEmpty(node.Content[i+1]) {
				return node.Content[i+1], true
			}
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			if v, ok := FindKey(node.Content[i+1], key); ok {
				return v, true
			}
		}
	case yaml.AliasNode:
		return FindKey(node.Alias, key)
	}
	return nil, false
}

func isEmpty(n *yaml.Node) bool {
	if n.Kind == yaml.ScalarNode {
		return n.Value == "" || n.Tag == "!!null"
	}
	return len(n.Content) == 0
}

// ReplaceKey sets every entry named key to a copy of value and reports how
// many entries changed. Replaced values are not searched further.
func ReplaceKey(node *yaml.Node, key string, value *yaml.Node) int {
	if node == nil {
		return 0
	}
	n := 0
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			n += ReplaceKey(child, key, value)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				node.Content[i+1] = clone(value)
				n++
				continue
			}
			n += ReplaceKey(node.Content[i+1], key, value)
		}
	}
	return n
}

func clone(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = clone(child)
	}
	// Drop source comments; the destination keeps its own.
	c.HeadComment, c.LineComment, c.FootComment = "", "", ""
	return &c
}
