/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config is the schedule configuration of a whole meet. It is usually kept
// as a YAML or JSON file:
//
//	Dates:
//	  Samstag: "2025-06-14"
//	DisciplineTypes:
//	  "100m": Track
//	  Weitsprung: Default
//	Groups:
//	  "Gruppe 1":
//	    "100m": {time: "09:00, Samstag", location: "Bahn"}
//
// Dates are written "2025-06-14" or day first "14.06.2025"; spelled out
// forms such as "June 14, 2025" work too. Slash dates like "06/07/2025" are
// rejected as ambiguous. DisciplineTypes values are "Track", "Default" or
// "None".
type Config struct {
	Dates           map[string]string                      `json:"Dates" yaml:"Dates"`
	DisciplineTypes map[string]string                      `json:"DisciplineTypes" yaml:"DisciplineTypes"`
	Groups          map[string]map[string]DisciplineConfig `json:"Groups" yaml:"Groups"`
}

// LoadConfig decodes a configuration document. JSON documents are accepted
// as well since they are valid YAML.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Err: errors.New("empty configuration")}
		}
		return nil, &ConfigError{Err: fmt.Errorf("decoding configuration: %w",
			err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the top level shape of the configuration.
func (c *Config) Validate() error {
	if len(c.Dates) == 0 {
		return &ConfigError{Field: "Dates", Err: errors.New("missing or empty")}
	}
	if len(c.DisciplineTypes) == 0 {
		return &ConfigError{Field: "DisciplineTypes",
			Err: errors.New("missing or empty")}
	}
	if len(c.Groups) == 0 {
		return &ConfigError{Field: "Groups", Err: errors.New("missing or empty")}
	}
	return nil
}

// GroupNames returns the configured groups sorted by name.
func (c *Config) GroupNames() []string {
	names := make([]string, 0, len(c.Groups))
	for name := range c.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build builds the time group of one configured group.
func (c *Config) Build(group string, roster []RosterEntry,
	opts ...BuildOption) (*TimeGroup, error) {

	disciplines, ok := c.Groups[group]
	if !ok {
		return nil, &ConfigError{Group: group,
			Err: errors.New("group not found in Groups")}
	}
	return Build(group, disciplines, c.Dates, c.DisciplineTypes, roster,
		opts...)
}

// Encode writes the configuration as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}
