package export

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileBasename is used when a configuration sets no file basename.
const DefaultFileBasename = "output"

// DateTimeW3C is the default date/time pattern: 2006-01-02T15:04:05+07:00.
const DateTimeW3C = `Y-m-d\TH:i:sP`

// Column is one output column: a property path into each record plus the
// label shown in the header row. Columns are ordered by SortKey.
type Column struct {
	SortKey  int    `yaml:"sortKey" json:"sortKey"`
	Property string `yaml:"property" json:"property"`
	Label    string `yaml:"label" json:"label"`
}

// Columns is the configured column set.
//
// In YAML it is written either as a mapping keyed by sort key
//
//	columns:
//	  10: {property: identifier, label: Form}
//	  20: {property: data.name, label: Name}
//
// or as a sequence, in which case a missing sortKey defaults to the position.
type Columns []Column

// UnmarshalYAML decodes both the mapping and the sequence form.
// A sort key used twice in the mapping form is a configuration error.
func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		seen := make(map[int]bool, len(node.Content)/2)
		cols := make(Columns, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]

			key, err := strconv.Atoi(strings.TrimSpace(keyNode.Value))
			if err != nil {
				return &ConfigurationError{
					Kind:   KindInvalidColumnsDoc,
					Detail: fmt.Sprintf("sort key %q on line %d is not an integer", keyNode.Value, keyNode.Line),
				}
			}
			if seen[key] {
				return &ConfigurationError{
					Kind:   KindDuplicateSortKey,
					Detail: fmt.Sprintf("sort key %d on line %d", key, keyNode.Line),
				}
			}
			seen[key] = true

			var def struct {
				Property string `yaml:"property"`
				Label    string `yaml:"label"`
			}
			if err := valNode.Decode(&def); err != nil {
				return &ConfigurationError{Kind: KindInvalidColumnsDoc, Detail: err.Error()}
			}
			cols = append(cols, Column{SortKey: key, Property: def.Property, Label: def.Label})
		}

		*c = cols
		return nil

	case yaml.SequenceNode:
		var defs []struct {
			SortKey  *int   `yaml:"sortKey"`
			Property string `yaml:"property"`
			Label    string `yaml:"label"`
		}
		if err := node.Decode(&defs); err != nil {
			return &ConfigurationError{Kind: KindInvalidColumnsDoc, Detail: err.Error()}
		}

		cols := make(Columns, len(defs))
		for i, def := range defs {
			key := i
			if def.SortKey != nil {
				key = *def.SortKey
			}
			cols[i] = Column{SortKey: key, Property: def.Property, Label: def.Label}
		}

		*c = cols
		return nil

	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*c = nil
			return nil
		}
	}

	return &ConfigurationError{
		Kind:   KindInvalidColumnsDoc,
		Detail: fmt.Sprintf("columns on line %d must be a mapping or a sequence", node.Line),
	}
}

// Configuration describes one export run. It is set on an [Exporter] before
// Dump or WriteTo and must not change while a run is in flight.
type Configuration struct {
	Columns        Columns `yaml:"columns" json:"columns"`
	FileBasename   string  `yaml:"fileBasename" json:"fileBasename"`
	DateTimeFormat string  `yaml:"dateTimeFormat" json:"dateTimeFormat"`
}

// Basename returns the configured file basename or DefaultFileBasename.
func (c Configuration) Basename() string {
	if strings.TrimSpace(c.FileBasename) == "" {
		return DefaultFileBasename
	}
	return c.FileBasename
}

// DateFormat returns the configured date/time pattern or DateTimeW3C.
func (c Configuration) DateFormat() string {
	if strings.TrimSpace(c.DateTimeFormat) == "" {
		return DateTimeW3C
	}
	return c.DateTimeFormat
}

// OutputFilename returns "{basename}.{extension}".
func (c Configuration) OutputFilename(extension string) string {
	return fmt.Sprintf("%s.%s", c.Basename(), strings.TrimPrefix(extension, "."))
}

// ParseConfiguration decodes a YAML export configuration.
func ParseConfiguration(data []byte) (Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, fmt.Errorf("parse export configuration: %w", err)
	}
	return cfg, nil
}
