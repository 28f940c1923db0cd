package sink

import (
	"os"
	"time"

	"github.com/goccy/go-json"
)

// Manifest describes a finished run so the outputs can be verified or
// consumed later without the command line that produced them.
type Manifest struct {
	PubKey     string           `json:"pubkey"`
	Range      string           `json:"range"`
	RangeValue string           `json:"range_value"`
	Chunks     uint64           `json:"chunks"`
	Stride     string           `json:"stride"`
	BlockSize  uint64           `json:"block_size"`
	Workers    int              `json:"workers"`
	Points     uint64           `json:"points"`
	Outputs    []ManifestOutput `json:"outputs"`
	Started    time.Time        `json:"started"`
	Finished   time.Time        `json:"finished"`
}

// ManifestOutput is one file written by the run.
type ManifestOutput struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Bytes uint64 `json:"bytes"`
}

// WriteManifest stores m as indented JSON at path.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
