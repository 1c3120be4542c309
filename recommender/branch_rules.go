package recommender

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureBranchRuleFile writes the default branch rule table to the given path
// when the file does not exist yet. This gives users an editable starting
// point for tuning keywords without rebuilding.
func EnsureBranchRuleFile(path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	clean = filepath.Clean(clean)
	if _, err := os.Stat(clean); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check branch rule file: %w", err)
	}

	dir := filepath.Dir(clean)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create branch rule dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(defaultBranchRules, "", "  ")
	if err != nil {
		return fmt.Errorf("encode branch rules: %w", err)
	}
	if err := os.WriteFile(clean, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write branch rule file: %w", err)
	}
	return nil
}

// LoadBranchRules reads a rule table from the given path. When the path is
// empty or the file cannot be read, the built-in defaults are returned; the
// boolean reports whether a custom file was loaded. A file that parses but
// contains no usable rules falls back to the defaults as well.
func LoadBranchRules(path string) ([]BranchRule, bool, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return defaultBranchRules, false, nil
	}

	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return defaultBranchRules, false, err
	}

	var rules []BranchRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return defaultBranchRules, false, fmt.Errorf("parse branch rule file: %w", err)
	}
	usable := rules[:0]
	for _, r := range rules {
		if r.Branch == "" || len(r.Keywords) == 0 {
			continue
		}
		usable = append(usable, r)
	}
	if len(usable) == 0 {
		return defaultBranchRules, false, nil
	}
	return usable, true, nil
}
