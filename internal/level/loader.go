package level

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a custom level file.
type File struct {
	Levels []Level `yaml:"levels"`
}

// LoadFile reads custom levels from a YAML file.
//
// Node geometry is not checked here; the simulation refuses a level whose
// positions and types differ in length when it is started.
func LoadFile(path string) ([]Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	levels, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level: %s: %w", path, err)
	}
	return levels, nil
}

// Parse decodes a level file. Missing names and tiers are filled in from the id.
func Parse(data []byte) ([]Level, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Levels) == 0 {
		return nil, errors.New("no levels defined")
	}

	var errs []error
	seen := make(map[int]bool, len(f.Levels))
	for i := range f.Levels {
		lvl := &f.Levels[i]
		if seen[lvl.ID] {
			errs = append(errs, fmt.Errorf("level %d: duplicate id", lvl.ID))
		}
		seen[lvl.ID] = true

		if lvl.Name == "" {
			lvl.Name = fmt.Sprintf("Level %d", lvl.ID)
		}
		if lvl.Difficulty == "" {
			if d, ok := DifficultyOf(lvl.ID); ok {
				lvl.Difficulty = d
			} else {
				lvl.Difficulty = Hard
			}
		}
		if lvl.DescentSpeed <= 0 {
			errs = append(errs, fmt.Errorf("level %d: descent_speed must be positive", lvl.ID))
		}
		for j, t := range lvl.NodeTypes {
			if !t.Valid() {
				errs = append(errs, fmt.Errorf("level %d: node %d: unknown type %q", lvl.ID, j, t))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f.Levels, nil
}
