package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"surfgen/internal/core"
	"surfgen/internal/library"
)

// TaskRequest is one root-task entry in a manifest.
type TaskRequest struct {
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

// Manifest is the YAML run description: a list of root tasks to resolve.
// Dependencies are derived, not listed.
type Manifest struct {
	Tasks []TaskRequest `yaml:"tasks"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Tasks) == 0 {
		return Manifest{}, fmt.Errorf("manifest %s lists no tasks", path)
	}
	for i, req := range m.Tasks {
		if req.Kind == "" {
			return Manifest{}, fmt.Errorf("manifest %s: task %d has no kind", path, i)
		}
	}
	return m, nil
}

// Instantiate constructs the manifest's root tasks through the registry.
func (m Manifest) Instantiate(reg *library.Registry) ([]core.Task, error) {
	tasks := make([]core.Task, 0, len(m.Tasks))
	for i, req := range m.Tasks {
		t, err := reg.New(req.Kind, core.Params(req.Params))
		if err != nil {
			return nil, fmt.Errorf("manifest task %d (%s): %w", i, req.Kind, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
