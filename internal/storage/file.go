package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a single asset file and returns its validated spec. It is
// used for assets that exist exactly once (world settings) or whose
// declaration order matters and so cannot be split across files (the event
// handler list).
func LoadFile[T ValidatingSpec](path string) (T, error) {
	var zero T

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset[T]{}
	err = json.Unmarshal(jsonData, asset)
	if err != nil {
		return zero, fmt.Errorf("unmarshalling asset: %w", err)
	}

	err = asset.Validate()
	if err != nil {
		return zero, fmt.Errorf("validating %s: %w", path, err)
	}

	return asset.Spec, nil
}
