package vfs

import (
	"encoding/base64"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML shape a host passes as Config.PrewarmedVFSLayer
// (§6.1): a flat list of paths to materialize before a script runs.
// Content is base64 because YAML strings aren't a safe carrier for
// arbitrary binary file bytes.
type Manifest struct {
	Files []ManifestFile `yaml:"files"`
	Dirs  []string        `yaml:"dirs"`
}

type ManifestFile struct {
	Path       string `yaml:"path"`
	ContentB64 string `yaml:"content_b64"`
	Mode       string `yaml:"mode"` // octal string, e.g. "0755"; "" means DefaultFilePerm
}

// LoadManifest parses raw YAML into a Manifest.
func LoadManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("vfs: parsing prewarmed layer manifest: %w", err)
	}
	return &m, nil
}

// Apply materializes a Manifest's directories then files into fs,
// directories first so every file's parent chain exists. Files are
// applied in path order for determinism (spec.md §8: "execute(S) is
// deterministic given the same initial VFS and Config").
func (m *Manifest) Apply(fs *FS) error {
	dirs := append([]string{}, m.Dirs...)
	sort.Strings(dirs)
	for _, d := range dirs {
		if err := fs.MkdirAll(d); err != nil {
			return fmt.Errorf("vfs: manifest dir %q: %w", d, err)
		}
	}
	files := append([]ManifestFile{}, m.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	for _, f := range files {
		data, err := base64.StdEncoding.DecodeString(f.ContentB64)
		if err != nil {
			return fmt.Errorf("vfs: manifest file %q: invalid base64: %w", f.Path, err)
		}
		perm := Perm(DefaultFilePerm)
		if f.Mode != "" {
			var v uint32
			if _, err := fmt.Sscanf(f.Mode, "%o", &v); err != nil {
				return fmt.Errorf("vfs: manifest file %q: invalid mode %q: %w", f.Path, f.Mode, err)
			}
			perm = Perm(v)
		}
		if err := fs.Write(f.Path, data, "w"); err != nil {
			return fmt.Errorf("vfs: manifest file %q: %w", f.Path, err)
		}
		if err := fs.Chmod(f.Path, perm); err != nil {
			return fmt.Errorf("vfs: manifest file %q: chmod: %w", f.Path, err)
		}
	}
	return nil
}
