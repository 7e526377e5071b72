// Package engconfig provides the shared YAML-config-loading convention used
// by every voxelcore component's Config type.
//
// Grounded on pthm-soup/config/config.go: a defaults value merged with an
// optional override file on disk, decoded with gopkg.in/yaml.v3.
package engconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads path, unmarshals it onto a copy of defaults, and returns
// the merged result. A missing file is not an error — defaults are
// returned unchanged, since every component must also work with zero
// on-disk configuration (spec.md §6: "accept a plain struct at initialize").
func LoadYAML[T any](path string, defaults T) (T, error) {
	out := defaults
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, fmt.Errorf("engconfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("engconfig: parse %s: %w", path, err)
	}
	return out, nil
}
