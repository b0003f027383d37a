package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile names the optional per-directory project manifest.
const ManifestFile = "project.yaml"

// Manifest picks the files that make up a project directory.
type Manifest struct {
	Name string `yaml:"name"`
	HTML string `yaml:"html"`
	CSS  string `yaml:"css"`
	JS   string `yaml:"js"`
}

// LoadManifest reads dir's manifest. A missing file is not an error.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// LoadDir reads a project directory into an artifact set and returns the
// project name. Without a manifest the first *.html, *.css and *.js files
// in name order are used, skipping any path listed in exclude.
func LoadDir(dir string, exclude ...string) (ArtifactSet, string, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return ArtifactSet{}, "", err
	}
	if m == nil {
		m, err = guessManifest(dir, exclude)
		if err != nil {
			return ArtifactSet{}, "", err
		}
	}

	name := m.Name
	if name == "" {
		abs, _ := filepath.Abs(dir)
		name = filepath.Base(abs)
	}

	var set ArtifactSet
	for _, f := range []struct {
		file string
		dst  **Artifact
	}{
		{m.HTML, &set.HTML},
		{m.CSS, &set.CSS},
		{m.JS, &set.JS},
	} {
		if f.file == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.file))
		if err != nil {
			return ArtifactSet{}, "", fmt.Errorf("reading artifact: %w", err)
		}
		*f.dst = &Artifact{
			Name:    strings.TrimSuffix(filepath.Base(f.file), filepath.Ext(f.file)),
			Content: string(data),
		}
	}
	return set, name, nil
}

func guessManifest(dir string, exclude []string) (*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading project dir: %w", err)
	}

	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if abs, err := filepath.Abs(filepath.Join(dir, e.Name())); err == nil && skip[abs] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	m := &Manifest{}
	for _, n := range names {
		switch strings.ToLower(filepath.Ext(n)) {
		case ".html", ".htm":
			if m.HTML == "" {
				m.HTML = n
			}
		case ".css":
			if m.CSS == "" {
				m.CSS = n
			}
		case ".js":
			if m.JS == "" {
				m.JS = n
			}
		}
	}
	return m, nil
}
