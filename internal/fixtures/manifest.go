package fixtures

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// ManifestName is the file written at the root of the galleries directory.
const ManifestName = "fixtures.manifest.json"

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// Manifest lists every generated image file.
type Manifest struct {
	Version     int             `json:"version"`
	GeneratedAt string          `json:"generated_at"`
	Database    string          `json:"database"`
	Legacy      string          `json:"legacy,omitempty"`
	Images      []ManifestEntry `json:"images"`
	TotalBytes  int64           `json:"total_bytes"`
}

// ManifestEntry describes one generated file.
type ManifestEntry struct {
	UUID   string   `json:"uuid"`
	Path   string   `json:"path"` // relative to the galleries directory
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Size   int64    `json:"size"`
	Hash   string   `json:"hash"` // xxhash64, hex
	Models []string `json:"models,omitempty"`
}

// HashFile returns the hex xxhash64 of the file at path and its size.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return hex.EncodeToString(sum[:]), n, nil
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return m, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return m, nil
}
