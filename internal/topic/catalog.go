package topic

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoDescription is returned by Describe for names that are not in the catalog
const NoDescription = "No description is available for this topic."

// Topic is a single practice situation
type Topic struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog is an ordered, read-only set of topics
type Catalog struct {
	topics []Topic
	index  map[string]int
}

// New builds a catalog from topics in the given order
// Names and descriptions are stored with surrounding whitespace trimmed
// Empty or duplicate names are rejected
func New(topics []Topic) (*Catalog, error) {
	c := &Catalog{
		topics: make([]Topic, 0, len(topics)),
		index:  make(map[string]int, len(topics)),
	}

	for i, t := range topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("topic %d has an empty name", i+1)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("duplicate topic %q", name)
		}

		c.index[name] = len(c.topics)
		c.topics = append(c.topics, Topic{Name: name, Description: strings.TrimSpace(t.Description)})
	}

	return c, nil
}

// LoadFile reads a YAML list of {name, description} entries
// Entries are normalised as in New, so a block scalar description loses its trailing newline
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file %s: %w", path, err)
	}

	var topics []Topic
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("failed to parse topics file %s: %w", path, err)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics file %s defines no topics", path)
	}

	c, err := New(topics)
	if err != nil {
		return nil, fmt.Errorf("invalid topics file %s: %w", path, err)
	}
	return c, nil
}

// List returns topic names in definition order
func (c *Catalog) List() []string {
	names := make([]string, len(c.topics))
	for i, t := range c.topics {
		names[i] = t.Name
	}
	return names
}

// Describe returns the description for name, or NoDescription when unknown
func (c *Catalog) Describe(name string) string {
	if t, ok := c.Lookup(name); ok {
		return t.Description
	}
	return NoDescription
}

// Lookup returns the topic registered under name, ignoring surrounding whitespace
func (c *Catalog) Lookup(name string) (Topic, bool) {
	i, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return Topic{}, false
	}
	return c.topics[i], true
}

// Len returns the number of topics
func (c *Catalog) Len() int {
	return len(c.topics)
}
