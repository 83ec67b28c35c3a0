package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one converted image in the output manifest.
type ManifestEntry struct {
	Source        string `json:"source"`
	Model         string `json:"model,omitempty"`
	Snapshot      string `json:"snapshot,omitempty"`
	DepthMap      string `json:"depth_map,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	AuthoredDepth bool   `json:"authored_depth"`
	Error         string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json to the output directory.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Source:   r.Source,
			Model:    r.Model,
			Snapshot: r.Snapshot,
			DepthMap: r.DepthMap,
			Width:    r.Width,
			Height:   r.Height,
			Error:    r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
