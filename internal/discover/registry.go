package discover

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all call-for-speakers sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig tunes HTTP fetching for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"`
	MaxRetries     int     `yaml:"max_retries,omitempty"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`
}

// SelectorConfig locates listing items within a page.
type SelectorConfig struct {
	Container string `yaml:"container,omitempty"`
	Link      string `yaml:"link,omitempty"`
	LinkAttr  string `yaml:"link_attr,omitempty"` // default: href
	Title     string `yaml:"title,omitempty"`
	Organizer string `yaml:"organizer,omitempty"`
	Location  string `yaml:"location,omitempty"`
	Deadline  string `yaml:"deadline,omitempty"`
	EventDate string `yaml:"event_date,omitempty"`
	Fee       string `yaml:"fee,omitempty"`
	Content   string `yaml:"content,omitempty"`
	Topics    string `yaml:"topics,omitempty"`
}

type PaginationConfig struct {
	Next string `yaml:"next,omitempty"` // CSS selector for the next page link
}

// SourceConfig defines a single call-for-speakers listing source.
type SourceConfig struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Seeds       []string         `yaml:"seed_urls"`
	Fetch       FetchConfig      `yaml:"fetch,omitempty"`
	Selectors   SelectorConfig   `yaml:"selectors"`
	Pagination  PaginationConfig `yaml:"pagination,omitempty"`
	MaxPages    int              `yaml:"max_pages,omitempty"`
}

// LoadRegistry reads the embedded sources.yaml, falling back to the given
// path for local development overrides.
func LoadRegistry(path string) (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Find returns the source with the given id.
func (r *Registry) Find(id string) (*SourceConfig, error) {
	for i := range r.Sources {
		if r.Sources[i].ID == id {
			return &r.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", id)
}
