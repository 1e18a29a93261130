// Package configschema loads config option descriptors for the session's inert test.
package configschema

import (
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Schema is an immutable key → descriptor table.
type Schema struct {
	options map[string]domain.ConfigOption
}

type document struct {
	Options []domain.ConfigOption `mapstructure:"options"`
}

// Load reads a descriptor document from a YAML or JSON file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config schema: %w", err)
	}
	schema, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config schema %s: %w", path, err)
	}
	return schema, nil
}

// Parse decodes a descriptor document. JSON input is accepted as YAML.
func Parse(data []byte) (*Schema, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	var doc document
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}

	return New(doc.Options...)
}

// New builds a schema from descriptors. Keys must be unique and non-empty,
// and list options must declare at least one entry.
func New(options ...domain.ConfigOption) (*Schema, error) {
	s := &Schema{options: make(map[string]domain.ConfigOption, len(options))}
	for i, opt := range options {
		if opt.Key == "" {
			return nil, fmt.Errorf("option %d: missing var", i)
		}
		if _, dup := s.options[opt.Key]; dup {
			return nil, fmt.Errorf("option %q: duplicate var", opt.Key)
		}
		if opt.Kind == domain.KindList && len(opt.List) == 0 {
			return nil, fmt.Errorf("option %q: list option has no entries", opt.Key)
		}
		s.options[opt.Key] = opt
	}
	return s, nil
}

// Lookup returns the descriptor for key.
func (s *Schema) Lookup(key string) (domain.ConfigOption, bool) {
	if s == nil {
		return domain.ConfigOption{}, false
	}
	opt, ok := s.options[key]
	return opt, ok
}

// Keys returns the known keys, sorted.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.options))
	for k := range s.options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Static is a map-backed schema for tests and embedding.
type Static map[string]domain.ConfigOption

// Lookup returns the descriptor for key, filling in Key when the entry omits it.
func (s Static) Lookup(key string) (domain.ConfigOption, bool) {
	opt, ok := s[key]
	if ok && opt.Key == "" {
		opt.Key = key
	}
	return opt, ok
}
