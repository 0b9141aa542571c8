package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileNames are the document names Find looks for, in order
var FileNames = []string{
	".e2erc",
	".e2erc.json",
	".e2erc.yaml",
	".e2erc.yml",
	".e2erc.toml",
	"e2e.config.json",
}

// ErrNotFound is returned by Find when no document exists up to the filesystem root
var ErrNotFound = errors.New("no configuration document found")

// Load reads and decodes the document at path. The format follows the file
// extension; files without one are read as YAML, which also accepts JSON.
func Load(path string) (*GlobalConfig, error) {
	tree, err := ReadTree(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return newDecoder(abs).decode(tree)
}

// ReadTree parses the document at path into a generic tree
func ReadTree(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var tree map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if tree == nil {
		return map[string]any{}, nil
	}
	normalize(tree)
	return tree, nil
}

// Find looks for a document in dir and each of its parents
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// normalize converts YAML's map[any]any nodes into map[string]any
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalize(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	}
	return v
}
