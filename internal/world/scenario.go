package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region scenario

// Scenario is the on-disk form of a starting world.
type Scenario struct {
	Description string          `json:"description" yaml:"description"`
	Snapshot    Snapshot        `json:"world" yaml:"world"`
	Mods        map[string]Mods `json:"mods,omitempty" yaml:"mods,omitempty"`
}

// LoadScenario reads a YAML or JSON scenario file and returns a snapshot with a
// populated mods store.
func LoadScenario(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var sc Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &sc)
	default:
		err = yaml.Unmarshal(data, &sc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	snap := sc.Snapshot
	snap.Mods = NewModsStore()
	snap.Mods.Load(sc.Mods)
	return &snap, nil
}

// #endregion scenario
