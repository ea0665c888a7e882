package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/util"
)

// MappingDir is the default platform mapping directory
var MappingDir = "/etc/lanemap/platforms"

var extensions = []string{".json", ".yaml", ".yml"}

// Loader finds and loads platform mapping files from a directory
type Loader struct {
	dir string
}

// NewLoader creates a loader for dir, or MappingDir when dir is empty
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = MappingDir
	}
	return &Loader{dir: dir}
}

// Dir returns the directory the loader reads from
func (l *Loader) Dir() string { return l.dir }

// List returns the platform names found in the directory, sorted
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading mapping dir %s: %w", l.dir, err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, known := range extensions {
			if ext == known {
				name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Path returns the file backing a platform name
func (l *Loader) Path(name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(l.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("platform '%s' not found in %s: %w", name, l.dir, util.ErrNotFound)
}

// Source decodes the named platform file without building it
func (l *Loader) Source(name string) (*Source, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// Load decodes and builds one platform
func (l *Loader) Load(name string) (*mapping.Mapping, error) {
	return l.LoadMerged(name)
}

// LoadMerged decodes several platform files into one builder. Ports and
// chips must not repeat across files; identical profiles may.
func (l *Loader) LoadMerged(names ...string) (*mapping.Mapping, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no platform named")
	}
	b := mapping.NewBuilder()
	for _, name := range names {
		src, err := l.Source(name)
		if err != nil {
			return nil, fmt.Errorf("loading platform %s: %w", name, err)
		}
		apply := src.MergeInto
		if len(names) == 1 {
			apply = src.ApplyTo
		}
		if err := apply(b); err != nil {
			return nil, fmt.Errorf("loading platform %s: %w", name, err)
		}
		util.WithPlatform(name).Debugf("applied %d ports, %d chips", len(src.Ports), len(src.Chips))
	}
	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("validating platform %s: %w", strings.Join(names, "+"), err)
	}
	util.WithPlatform(strings.Join(names, "+")).Debug("platform mapping ready")
	return m, nil
}

// ReadFile decodes a platform file, picking the format from its extension
func ReadFile(path string) (*Source, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()
	src, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// LoadFile decodes and builds a single platform file
func LoadFile(path string) (*mapping.Mapping, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := src.Build()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}
