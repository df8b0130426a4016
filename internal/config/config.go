// Package config loads the gateway's YAML configuration document, per
// spec.md §6: port, optional apiKey, optional corsOrigins, and a map of
// configured index handles.
package config

import (
	"github.com/platformbuilds/search-gateway/internal/engine"
)

// Config is the top-level gateway configuration, unmarshaled directly
// from the YAML document — no nested multi-service tree, unlike the
// teacher's viper-driven Config (see DESIGN.md).
type Config struct {
	Port        int                            `yaml:"port"`
	APIKey      string                         `yaml:"apiKey"`
	CORSOrigins CORSOrigins                    `yaml:"corsOrigins"`
	Indexes     map[string]engine.IndexConfig  `yaml:"indexes"`
	LogLevel    string                         `yaml:"logLevel"`
}

// CORSOrigins accepts either a single string or a list in YAML (spec.md
// §6: "optional corsOrigins (string or list)").
type CORSOrigins []string

func (c *CORSOrigins) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		if single != "" {
			*c = []string{single}
		}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return err
	}
	*c = list
	return nil
}
