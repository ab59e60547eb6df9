package model

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CategorySet is the immutable set of valid categories, constructed once at
// startup and passed into the pipeline. Nothing reads category definitions
// from ambient state.
type CategorySet struct {
	labels map[CategoryID]string
}

// NewCategorySet builds a set from an id → display label mapping.
func NewCategorySet(labels map[CategoryID]string) CategorySet {
	copied := make(map[CategoryID]string, len(labels))
	for id, label := range labels {
		copied[id] = label
	}
	return CategorySet{labels: copied}
}

// LoadCategories reads a category definition file. The YAML has a top-level
// "categories" key mapping ids to display labels.
func LoadCategories(path string) (CategorySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CategorySet{}, eris.Wrapf(err, "model: read categories %s", path)
	}

	var wrapper struct {
		Categories map[CategoryID]string `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return CategorySet{}, eris.Wrap(err, "model: parse categories")
	}
	if len(wrapper.Categories) == 0 {
		return CategorySet{}, eris.Errorf("model: no categories defined in %s", path)
	}

	return NewCategorySet(wrapper.Categories), nil
}

// Has reports whether id is a known category.
func (s CategorySet) Has(id CategoryID) bool {
	_, ok := s.labels[id]
	return ok
}

// Label returns the display label for id, or the id itself when unknown.
func (s CategorySet) Label(id CategoryID) string {
	if label, ok := s.labels[id]; ok {
		return label
	}
	return string(id)
}

// IDs returns the category ids in sorted order.
func (s CategorySet) IDs() []CategoryID {
	ids := make([]CategoryID, 0, len(s.labels))
	for id := range s.labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of categories.
func (s CategorySet) Len() int {
	return len(s.labels)
}
