// Package yamlfile wraps YAML loading and storing the way collection tooling
// expects it: safe parsing, block style output, and an optional "nice" mode
// with indented sequence entries.
package yamlfile

import (
	"bytes"
	"os"
	"sort"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔧 StoreOptions tunes StoreFile output.
type StoreOptions struct {
	// Nice indents sequence entries relative to their key.
	Nice bool
	// SortKeys emits mapping keys in sorted order. Only applies to
	// map[string]any values.
	SortKeys bool
}

// 📖 LoadBytes parses YAML from data.
func LoadBytes(data []byte) (any, error) {
	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return content, nil
}

// 📖 LoadFile parses the YAML file at path.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %q: %w", path, err)
	}
	content, err := LoadBytes(data)
	if err != nil {
		return nil, errors.Errorf("parsing %q: %w", path, err)
	}
	return content, nil
}

// 📝 StoreFile writes content as YAML to path.
func StoreFile(path string, content any, opts StoreOptions) error {
	data, err := Marshal(content, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("writing %q: %w", path, err)
	}
	return nil
}

// 📝 Marshal renders content as YAML.
func Marshal(content any, opts StoreOptions) ([]byte, error) {
	if opts.SortKeys {
		content = sortKeys(content)
	}

	var buf bytes.Buffer
	if opts.Nice {
		buf.WriteString("---\n")
	}
	enc := yaml.NewEncoder(&buf)
	// yaml.v3 defaults to 4 spaces; collection files conventionally use 2.
	enc.SetIndent(2)
	if err := enc.Encode(content); err != nil {
		return nil, errors.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// sortKeys rewrites map[string]any values into yaml.v3 nodes with sorted
// keys, recursively. Other values pass through unchanged and keep their
// natural encoding.
func sortKeys(content any) any {
	switch v := content.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
			valNode := &yaml.Node{}
			if err := valNode.Encode(sortKeys(v[k])); err != nil {
				// Fall back to the unsorted value; Marshal will surface
				// encoding problems.
				return content
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sortKeys(item)
		}
		return out
	default:
		return content
	}
}
