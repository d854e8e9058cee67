package defense

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/funnel/model"
)

//go:embed plans/*.yaml
var embedded embed.FS

// Point is a coordinate written as a two-element YAML sequence: [x, y].
type Point model.Coord

func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	var xy []int
	if err := value.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: point needs 2 values, got %d", value.Line, len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func coords(ps []Point) []model.Coord {
	out := make([]model.Coord, len(ps))
	for i, p := range ps {
		out[i] = model.Coord(p)
	}
	return out
}

// Choice strategies.
const (
	ByPredictedSide = "predicted-side"
	ByNotUpgraded   = "not-upgraded"
)

// Choose picks one candidate to upgrade. The first candidate is the right-hand default.
type Choose struct {
	Key        string  `yaml:"key"`
	Candidates []Point `yaml:"candidates"`
	By         string  `yaml:"by"`
}

// Milestone is a cumulative addition to the plan, applied on every turn >= Turn.
type Milestone struct {
	Turn     int     `yaml:"turn"`
	Walls    []Point `yaml:"walls"`
	Turrets  []Point `yaml:"turrets"`
	Supports []Point `yaml:"supports"`
	Upgrades []Point `yaml:"upgrades"`
	// Mirror adds the reflection of every listed point after the listed ones.
	Mirror bool    `yaml:"mirror"`
	Choose *Choose `yaml:"choose"`
}

// Build is a named milestone table with its optional extras.
type Build struct {
	Name       string      `yaml:"name"`
	Milestones []Milestone `yaml:"milestones"`
	// Optional walls are placed and removed each turn unless an attack needs them open.
	Optional []Point `yaml:"optional"`
	// Reinforce holds extra milestones keyed by side ("left" or "right").
	Reinforce map[string][]Milestone `yaml:"reinforce"`
	// EndgameSupports faces right; it is mirrored when the left side is preferred.
	EndgameSupports []Point `yaml:"endgameSupports"`
}

// Validate checks the table is usable.
func (b *Build) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("build has no name")
	}
	if len(b.Milestones) == 0 {
		return fmt.Errorf("build %q has no milestones", b.Name)
	}
	check := func(ms []Milestone) error {
		for i, m := range ms {
			if m.Turn < 0 {
				return fmt.Errorf("build %q milestone %d: negative turn", b.Name, i)
			}
			if c := m.Choose; c != nil {
				if c.Key == "" || len(c.Candidates) == 0 {
					return fmt.Errorf("build %q milestone %d: choose needs a key and candidates", b.Name, i)
				}
				if c.By != ByPredictedSide && c.By != ByNotUpgraded {
					return fmt.Errorf("build %q milestone %d: unknown choose strategy %q", b.Name, i, c.By)
				}
			}
		}
		return nil
	}
	if err := check(b.Milestones); err != nil {
		return err
	}
	for side, ms := range b.Reinforce {
		if side != "left" && side != "right" {
			return fmt.Errorf("build %q: reinforce side %q", b.Name, side)
		}
		if err := check(ms); err != nil {
			return err
		}
	}
	return nil
}

func parseBuild(data []byte, source string) (*Build, error) {
	var b Build
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	sort.SliceStable(b.Milestones, func(i, j int) bool { return b.Milestones[i].Turn < b.Milestones[j].Turn })
	return &b, nil
}

// LoadBuilds returns the embedded builds plus any *.yaml in dir, keyed by name.
// Tables in dir override embedded ones of the same name.
func LoadBuilds(dir string) (map[string]*Build, error) {
	builds := make(map[string]*Build)

	entries, err := embedded.ReadDir("plans")
	if err != nil {
		return nil, fmt.Errorf("read embedded plans: %w", err)
	}
	for _, e := range entries {
		data, err := embedded.ReadFile("plans/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded plan %s: %w", e.Name(), err)
		}
		b, err := parseBuild(data, e.Name())
		if err != nil {
			return nil, err
		}
		builds[b.Name] = b
	}

	if dir == "" {
		return builds, nil
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read plans dir: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read plan %s: %w", path, err)
		}
		b, err := parseBuild(data, path)
		if err != nil {
			return nil, err
		}
		builds[b.Name] = b
	}
	return builds, nil
}
