package core

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/JonMunkholm/formlog/internal/export"
	"gopkg.in/yaml.v3"
)

// DefaultProfileName is the profile used when a request names none.
const DefaultProfileName = "default"

// ErrProfileNotFound is returned when an export names an unknown profile.
var ErrProfileNotFound = errors.New("export profile not found")

// Profile is a named export configuration together with its output format.
type Profile struct {
	Name                 string `yaml:"-" json:"name"`
	Format               string `yaml:"format" json:"format"`
	export.Configuration `yaml:",inline"`
}

// Validate checks that the profile can produce output.
func (p Profile) Validate() error {
	if _, err := export.LookupFormat(p.Format); err != nil {
		return err
	}
	if _, err := export.NewColumnResolver(nil).Resolve(p.Configuration); err != nil {
		return err
	}
	return nil
}

// DefaultProfile lists every entry with its metadata and raw data.
func DefaultProfile() Profile {
	return Profile{
		Name:   DefaultProfileName,
		Format: "csv",
		Configuration: export.Configuration{
			FileBasename: "formlog",
			Columns: export.Columns{
				{SortKey: 10, Property: "createdAt", Label: "formlog.entry.createdAt"},
				{SortKey: 20, Property: "identifier", Label: "formlog.entry.identifier"},
				{SortKey: 30, Property: "pageId", Label: "formlog.entry.pageId"},
				{SortKey: 40, Property: "language", Label: "formlog.entry.language"},
				{SortKey: 50, Property: "data", Label: "formlog.entry.data"},
			},
		},
	}
}

// Profiles is a concurrency-safe set of export profiles keyed by name.
type Profiles struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewProfiles returns a set holding the given profiles. Later duplicates
// replace earlier ones.
func NewProfiles(profiles ...Profile) *Profiles {
	p := &Profiles{profiles: make(map[string]Profile, len(profiles))}
	for _, profile := range profiles {
		p.profiles[profile.Name] = profile
	}
	return p
}

// Register adds a profile. Returns an error if the name is taken.
func (p *Profiles) Register(profile Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.profiles[profile.Name]; exists {
		return fmt.Errorf("export profile already registered: %s", profile.Name)
	}
	p.profiles[profile.Name] = profile
	return nil
}

// Get returns the profile registered under name. An empty name selects the
// default profile.
func (p *Profiles) Get(name string) (Profile, bool) {
	if name == "" {
		name = DefaultProfileName
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.profiles[name]
	return profile, ok
}

// Names returns all profile names, sorted.
func (p *Profiles) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.profiles))
	for name := range p.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all profiles sorted by name.
func (p *Profiles) All() []Profile {
	names := p.Names()

	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]Profile, 0, len(names))
	for _, name := range names {
		result = append(result, p.profiles[name])
	}
	return result
}

// ParseProfiles decodes a YAML document mapping profile names to profiles:
//
//	default:
//	  format: csv
//	  fileBasename: contact-requests
//	  dateTimeFormat: d.m.Y H:i
//	  columns:
//	    10: {property: createdAt, label: formlog.entry.createdAt}
//	    20: {property: data.name, label: Name}
//
// Every profile is validated. The built-in default profile is added when the
// document does not define one.
func ParseProfiles(data []byte) (*Profiles, error) {
	var doc map[string]Profile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse export profiles: %w", err)
	}

	set := NewProfiles()
	for name, profile := range doc {
		profile.Name = name
		if err := profile.Validate(); err != nil {
			return nil, fmt.Errorf("export profile %q: %w", name, err)
		}
		set.profiles[name] = profile
	}
	if _, ok := set.profiles[DefaultProfileName]; !ok {
		set.profiles[DefaultProfileName] = DefaultProfile()
	}
	return set, nil
}

// LoadProfiles reads export profiles from a YAML file. An empty path yields
// only the default profile.
func LoadProfiles(path string) (*Profiles, error) {
	if path == "" {
		return NewProfiles(DefaultProfile()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export profiles: %w", err)
	}
	return ParseProfiles(data)
}
