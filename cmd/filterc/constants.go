package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadConstants reads constant bindings from a YAML mapping file and from
// name=value assignments, which override the file.
func loadConstants(path string, assignments []string) (map[string]any, error) {
	constants := make(map[string]any)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read constants file: %w", err)
		}
		if err := yaml.Unmarshal(data, &constants); err != nil {
			return nil, fmt.Errorf("failed to parse constants file %s: %w", path, err)
		}
	}

	for _, assignment := range assignments {
		name, raw, ok := strings.Cut(assignment, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid constant %q, expected name=value", assignment)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid value for constant %s: %w", name, err)
		}
		constants[name] = value
	}

	return constants, nil
}
