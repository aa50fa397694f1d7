// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is a run with the changes it made.
type ExportEntry struct {
	RunRecord `yaml:",inline"`
	Changes   []ChangeRecord `json:"changes" yaml:"changes"`
}

// Export writes runs matching opts, with their changes, to w as "yaml"
// or "json".
func (j *Journal) Export(ctx context.Context, w io.Writer, format string, opts QueryOptions) error {
	entries, err := j.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q: use yaml or json", format)
	}
}

func (j *Journal) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	runs, err := j.Runs(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, r := range runs {
		changes, err := j.Changes(ctx, QueryOptions{RunID: r.ID})
		if err != nil {
			return nil, fmt.Errorf("querying for export: %w", err)
		}
		entries[i] = ExportEntry{RunRecord: r, Changes: changes}
	}
	return entries, nil
}
