package tour

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/compozy/foodtour/engine/remote"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const DefaultDefinitionFile = "foodie_tour.yaml"

// ErrDefinition marks a task definition that could not be read or parsed.
var ErrDefinition = errors.New("invalid task definition")

// LoadDefinition reads a YAML task document. The document is forwarded to
// the service as-is; only its top-level shape is checked here.
func LoadDefinition(fsys afero.Fs, path string) (remote.TaskDefinition, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file not found: %s", ErrDefinition, path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrDefinition, path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrDefinition, path, err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDefinition, path)
	}
	return remote.TaskDefinition(doc), nil
}
