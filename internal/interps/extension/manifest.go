package extension

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes one installed UI plugin. Manifests live in
// <plugins-dir>/plugins.json; each enabled one registers an interpreter kind
// "ext:<name>".
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	return nil
}

func (m Manifest) checksumMatches() error {
	payload, err := os.ReadFile(m.Binary)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != m.SHA256 {
		return fmt.Errorf("plugin checksum mismatch: %s", filepath.Base(m.Binary))
	}
	return nil
}

// FileManifestStore loads plugin manifests from plugins.json under the
// plugins directory. A missing file means no plugins installed.
type FileManifestStore struct {
	path string
}

func NewFileManifestStore(pluginsDir string) *FileManifestStore {
	return &FileManifestStore{path: filepath.Join(pluginsDir, "plugins.json")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]Manifest, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plugin manifests: %w", err)
	}
	manifests := []Manifest{}
	if err := json.Unmarshal(payload, &manifests); err != nil {
		return nil, fmt.Errorf("decode plugin manifests: %w", err)
	}
	seen := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seen[manifest.Name] = struct{}{}
	}
	return manifests, nil
}
