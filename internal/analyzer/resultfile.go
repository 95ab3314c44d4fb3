// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// WriteResultFile saves an analysis to path. A .json extension writes
// indented JSON; anything else writes YAML.
func WriteResultFile(path string, result *types.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to write")
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = yaml.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads an analysis previously written by WriteResultFile.
func ReadResultFile(path string) (*types.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}

	var result types.AnalysisResult
	if isJSON(path) {
		err = json.Unmarshal(data, &result)
	} else {
		err = yaml.Unmarshal(data, &result)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &result, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
