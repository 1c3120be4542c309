package recommender

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const modelVersion = 1

// ModelMetadata describes how a stored model was built.
type ModelMetadata struct {
	RecordCount  int      `json:"recordCount"`
	CollegeCount int      `json:"collegeCount"`
	VFMMatched   int      `json:"vfmMatched"`
	Sources      []string `json:"sources,omitempty"`
}

// modelEnvelope is the on-disk model format: a versioned, human-inspectable
// JSON document holding the merged table plus build metadata.
type modelEnvelope struct {
	Version    int                `json:"version"`
	CreatedAt  time.Time          `json:"createdAt"`
	Metadata   ModelMetadata      `json:"metadata"`
	Identities []*CollegeIdentity `json:"identities"`
	Records    []CutoffRecord     `json:"records"`
	BranchVFM  map[string]float64 `json:"branchVfm,omitempty"`
}

// SaveModel writes the merged table to disk atomically.
func SaveModel(path string, table *MergedTable, meta ModelMetadata) error {
	if table == nil || len(table.Records) == 0 {
		return ErrEmptyDataset
	}
	env := modelEnvelope{
		Version:    modelVersion,
		CreatedAt:  time.Now().UTC(),
		Metadata:   meta,
		Identities: table.Identities,
		Records:    table.Records,
		BranchVFM:  table.BranchVFM,
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename model: %w", err)
	}
	return nil
}

// LoadModel reads a stored model back into a queryable table. No matching is
// rerun: the identities and records come back exactly as they were saved.
func LoadModel(path string) (*MergedTable, ModelMetadata, error) {
	var meta ModelMetadata
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, meta, fmt.Errorf("read model: %w", err)
	}
	var env modelEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, meta, fmt.Errorf("decode model: %w", err)
	}
	if env.Version != modelVersion {
		return nil, meta, fmt.Errorf("unsupported model version %d", env.Version)
	}
	if len(env.Records) == 0 {
		return nil, meta, ErrEmptyDataset
	}
	table := &MergedTable{
		Identities: env.Identities,
		Records:    env.Records,
		BranchVFM:  env.BranchVFM,
	}
	if table.BranchVFM == nil {
		table.BranchVFM = make(map[string]float64)
	}
	table.reindex()
	return table, env.Metadata, nil
}
