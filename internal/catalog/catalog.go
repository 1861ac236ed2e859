// Package catalog provides the read-only emotion reference table.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/decodeur/internal/model"
)

// Sentinel errors for catalog loading.
var (
	ErrEmptyCatalog   = errors.New("catalog: no emotions defined")
	ErrInvalidEmotion = errors.New("catalog: invalid emotion entry")
)

// Levels accepted in catalog files.
const (
	MinLevel = 1
	MaxLevel = 3
)

//go:embed emotions.yaml
var defaultTable []byte

type file struct {
	Levels   []model.LevelInfo `yaml:"levels"`
	Emotions []model.Emotion   `yaml:"emotions"`
}

// Catalog is an immutable emotion table. Slices returned by lookups follow
// declaration order and may be modified by callers.
type Catalog struct {
	emotions []model.Emotion
	byID     map[string]int
	levels   map[int]model.LevelInfo
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file with the same schema as the embedded table.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(f.Emotions, f.Levels)
}

// New builds a catalog from emotions in declaration order.
func New(emotions []model.Emotion, levels []model.LevelInfo) (*Catalog, error) {
	if len(emotions) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		emotions: make([]model.Emotion, 0, len(emotions)),
		byID:     make(map[string]int, len(emotions)),
		levels:   make(map[int]model.LevelInfo, len(levels)),
	}
	for i, e := range emotions {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidEmotion, i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidEmotion, e.ID)
		}
		if e.Level < MinLevel || e.Level > MaxLevel {
			return nil, fmt.Errorf("%w: %q has level %d", ErrInvalidEmotion, e.ID, e.Level)
		}
		if !e.Category.Valid() {
			return nil, fmt.Errorf("%w: %q has category %q", ErrInvalidEmotion, e.ID, e.Category)
		}
		if e.Name == "" {
			e.Name = e.ID
		}
		c.byID[e.ID] = len(c.emotions)
		c.emotions = append(c.emotions, e)
	}
	for _, l := range levels {
		c.levels[l.Level] = l
	}
	return c, nil
}

// ByID returns the emotion with the given id.
func (c *Catalog) ByID(id string) (model.Emotion, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.Emotion{}, false
	}
	return c.emotions[idx], true
}

// ByLevel returns the emotions of a difficulty level.
func (c *Catalog) ByLevel(level int) []model.Emotion {
	return lo.Filter(c.emotions, func(e model.Emotion, _ int) bool {
		return e.Level == level
	})
}

// ByCategory returns the emotions of a category.
func (c *Catalog) ByCategory(category model.Category) []model.Emotion {
	return lo.Filter(c.emotions, func(e model.Emotion, _ int) bool {
		return e.Category == category
	})
}

// All returns every emotion.
func (c *Catalog) All() []model.Emotion {
	out := make([]model.Emotion, len(c.emotions))
	copy(out, c.emotions)
	return out
}

// Levels returns the levels that have at least one emotion, ascending.
func (c *Catalog) Levels() []int {
	levels := lo.Uniq(lo.Map(c.emotions, func(e model.Emotion, _ int) int {
		return e.Level
	}))
	sort.Ints(levels)
	return levels
}

// Level returns the descriptor of a level. Levels without a descriptor in
// the table get a generic name.
func (c *Catalog) Level(level int) (model.LevelInfo, bool) {
	if len(c.ByLevel(level)) == 0 {
		return model.LevelInfo{}, false
	}
	if info, ok := c.levels[level]; ok {
		return info, true
	}
	return model.LevelInfo{Level: level, Name: fmt.Sprintf("Level %d", level)}, true
}

// FilterCategory keeps emotions of the given category. An empty category
// keeps everything.
func FilterCategory(emotions []model.Emotion, category model.Category) []model.Emotion {
	if category == "" {
		return emotions
	}
	return lo.Filter(emotions, func(e model.Emotion, _ int) bool {
		return e.Category == category
	})
}

// Search keeps emotions whose name or description contains term,
// ignoring case.
func Search(emotions []model.Emotion, term string) []model.Emotion {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return emotions
	}
	return lo.Filter(emotions, func(e model.Emotion, _ int) bool {
		return strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.Description), term)
	})
}
