package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/huddle/atlas"
	"github.com/milk9111/huddle/common"
)

const (
	CharacterFile = "character.yaml"
	SceneFile     = "scene.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type CharacterSpec struct {
	Name      string        `yaml:"name"`
	Sheet     SheetSpec     `yaml:"sheet"`
	Animation AnimationSpec `yaml:"animation"`
}

type SheetSpec struct {
	Image  string       `yaml:"image"`
	Scale  float64      `yaml:"scale"`
	Layout atlas.Layout `yaml:"layout"`
}

type AnimationSpec struct {
	Speed float64          `yaml:"speed"`
	Clips map[string][]int `yaml:"clips"`
}

// ClipTable validates the clip section against the eight animation states.
func (s CharacterSpec) ClipTable() (atlas.ClipTable, error) {
	if len(s.Animation.Clips) == 0 {
		return atlas.DefaultClipTable(), nil
	}
	table, err := atlas.ClipTableFromNames(s.Animation.Clips)
	if err != nil {
		return atlas.ClipTable{}, fmt.Errorf("prefabs: %s clips: %w", s.Name, err)
	}
	return table, nil
}

func LoadCharacterSpec() (*CharacterSpec, error) {
	spec, err := LoadSpec[CharacterSpec](CharacterFile)
	if err != nil {
		return nil, err
	}
	if spec.Sheet.Layout == (atlas.Layout{}) {
		spec.Sheet.Layout = atlas.DefaultLayout()
	}
	if err := spec.Sheet.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", CharacterFile, err)
	}
	if _, err := spec.ClipTable(); err != nil {
		return nil, err
	}
	if spec.Animation.Speed != 0 {
		if err := atlas.ValidatePlaybackSpeed(spec.Animation.Speed); err != nil {
			return nil, fmt.Errorf("prefabs: %s: %w", CharacterFile, err)
		}
	}
	return &spec, nil
}

type SceneSpec struct {
	Name      string          `yaml:"name"`
	Spawn     common.Position `yaml:"spawn"`
	MoveSpeed float64         `yaml:"move_speed"`
	FeedLimit int             `yaml:"feed_limit"`
	Bots      BotsSpec        `yaml:"bots"`
}

type BotsSpec struct {
	Script     string `yaml:"script"`
	IntervalMS int    `yaml:"interval_ms"`
}

func LoadSceneSpec() (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](SceneFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
