package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// toStrictJSON returns the config bytes in JSON form. Files with a .yaml/.yml
// extension are converted; everything else is assumed to already be JSON and
// passed through untouched. Funneling both formats into one representation
// lets Parse apply DisallowUnknownFields to YAML configs too, so a typo'd
// jobs or fallback key fails loudly instead of silently using a default.
func toStrictJSON(path string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return raw, nil
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	out, err := json.Marshal(stringifyKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("config %s: not representable as json: %w", path, err)
	}
	return out, nil
}

// stringifyKeys rebuilds the decoded YAML document with string map keys
// throughout. The YAML decoder may produce map[any]any nodes, which
// encoding/json refuses to marshal.
func stringifyKeys(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = stringifyKeys(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = stringifyKeys(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = stringifyKeys(child)
		}
		return node
	}
	return v
}
