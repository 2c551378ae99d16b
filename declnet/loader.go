package declnet

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Loader loads a NetworkDef definition by name.
type Loader interface {
	Load(name string) (*NetworkDef, error)
}

// FileLoader loads NetworkDef definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a Loader that searches the given directories for
// NetworkDef YAML files.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches for {name}.yaml and {name}.yml in each configured directory.
func (l *FileLoader) Load(name string) (*NetworkDef, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if def, err := loadFile(path); err == nil {
				return def, nil
			}
		}
	}
	return nil, fmt.Errorf("declnet: network %q not found in %v", name, l.dirs)
}

func loadFile(path string) (*NetworkDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def NetworkDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("declnet: parsing %s: %w", path, err)
	}
	return &def, nil
}

// LoadFile loads a NetworkDef from an explicit file path.
func LoadFile(path string) (*NetworkDef, error) {
	return loadFile(path)
}
