package table

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/profiles.yaml
var profilesYAML []byte

// Profile is a named table format, optionally with the stored words from a
// known image.
type Profile struct {
	// Name identifies the profile on the command line (e.g., "loader")
	Name string `yaml:"name"`

	// Description is a one-line summary
	Description string `yaml:"description"`

	// Layout describes how the words split into a table
	Layout Layout `yaml:"layout"`

	// Words is the stored table, if one is known
	Words []uint32 `yaml:"words,omitempty"`
}

// Catalog holds all known table profiles.
type Catalog struct {
	Profiles []*Profile
	index    map[string]*Profile
}

type catalogContainer struct {
	Profiles []*Profile `yaml:"profiles"`
}

var (
	globalCatalog     *Catalog
	globalCatalogOnce sync.Once
	globalCatalogErr  error
)

// LoadProfiles loads the embedded profile catalog. The catalog is parsed
// once; later calls return the same instance.
func LoadProfiles() (*Catalog, error) {
	globalCatalogOnce.Do(func() {
		globalCatalog, globalCatalogErr = ParseCatalog(profilesYAML)
	})
	return globalCatalog, globalCatalogErr
}

// ParseCatalog parses a profile catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var container catalogContainer
	if err := yaml.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	c := &Catalog{
		Profiles: container.Profiles,
		index:    make(map[string]*Profile, len(container.Profiles)),
	}
	for _, p := range c.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile with empty name")
		}
		if _, dup := c.index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		c.index[p.Name] = p
	}
	return c, nil
}

// Get returns the profile with the given name.
func (c *Catalog) Get(name string) (*Profile, bool) {
	p, ok := c.index[name]
	return p, ok
}

// Names returns the profile names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.index))
	for name := range c.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownProfileError is returned when a profile name is not in the catalog.
type UnknownProfileError struct {
	Name      string
	Available []string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unknown table profile %q (known: %v)", e.Name, e.Available)
}

// Lookup returns the named profile or an *UnknownProfileError.
func (c *Catalog) Lookup(name string) (*Profile, error) {
	if p, ok := c.Get(name); ok {
		return p, nil
	}
	return nil, &UnknownProfileError{Name: name, Available: c.Names()}
}

// String returns a one-line summary of the profile.
func (p *Profile) String() string {
	return fmt.Sprintf("%s - %s (%d words)", p.Name, p.Description, len(p.Words))
}
