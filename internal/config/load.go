package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// GenerateFromConfigDir reads every .hcl, .yaml and .yml file below
// configDir and merges them into cfg.
func (cfg *Config) GenerateFromConfigDir(configDir string) error {
	configDir = strings.TrimRight(configDir, "/")

	matches, err := findFilesInPath(configDir)
	if err != nil {
		return err
	}

	for _, m := range matches {
		log.Infof("found config file: %s", m)

		contents, err := os.ReadFile(m)
		if err != nil {
			return errors.Wrapf(err, "failed to read configuration file %s", m)
		}

		fileCfg, err := Parse(m, contents)
		if err != nil {
			return err
		}

		if err := cfg.Merge(fileCfg); err != nil {
			return errors.Wrapf(err, "failed to merge configuration file %s", m)
		}
	}

	return cfg.Validate()
}

// Parse decodes a single configuration file. The format is taken from the
// file extension.
func Parse(filename string, contents []byte) (*Config, error) {
	cfg := &Config{}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("could not parse configuration file %s: %s", filename, err.Error())
		}
	default:
		if err := hcl.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("could not parse configuration file %s: %s", filename, err.Error())
		}
	}

	return cfg, nil
}

// Merge appends the dependencies and suites of other. A defaults block may
// only be declared once.
func (cfg *Config) Merge(other *Config) error {
	if other.Defaults != nil {
		if cfg.Defaults != nil {
			return errors.New("defaults declared more than once")
		}
		cfg.Defaults = other.Defaults
	}

	cfg.Dependencies = append(cfg.Dependencies, other.Dependencies...)
	cfg.Suites = append(cfg.Suites, other.Suites...)
	return nil
}

func (cfg *Config) Validate() error {
	suites := make(map[string]struct{}, len(cfg.Suites))
	for i := range cfg.Suites {
		s := &cfg.Suites[i]
		if s.Name == "" {
			return errors.New("suite without name")
		}
		if _, ok := suites[s.Name]; ok {
			return fmt.Errorf("suite %q declared more than once", s.Name)
		}
		suites[s.Name] = struct{}{}

		if len(s.Targets) == 0 {
			return fmt.Errorf("suite %q has no targets", s.Name)
		}

		for j := range s.Targets {
			if s.Targets[j].URL == "" {
				return fmt.Errorf("target %q of suite %q has no url", s.Targets[j].Name, s.Name)
			}
		}
	}

	deps := make(map[string]struct{}, len(cfg.Dependencies))
	for i := range cfg.Dependencies {
		name := cfg.Dependencies[i].Name
		if _, ok := deps[name]; ok {
			return fmt.Errorf("dependency %q declared more than once", name)
		}
		deps[name] = struct{}{}
	}

	return nil
}

// Suite looks up a suite by name.
func (cfg *Config) Suite(name string) (*Suite, bool) {
	for i := range cfg.Suites {
		if cfg.Suites[i].Name == name {
			return &cfg.Suites[i], true
		}
	}
	return nil, false
}

func (cfg *Config) SuiteNames() []string {
	names := make([]string, 0, len(cfg.Suites))
	for i := range cfg.Suites {
		names = append(names, cfg.Suites[i].Name)
	}
	return names
}

// DefaultsOrEmpty never returns nil.
func (cfg *Config) DefaultsOrEmpty() Defaults {
	if cfg.Defaults == nil {
		return Defaults{}
	}
	return *cfg.Defaults
}
