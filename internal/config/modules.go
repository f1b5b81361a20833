package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// modulesFile is the on-disk shape of the modules config.
type modulesFile struct {
	Modules map[string]moduleSection `yaml:"modules"`
}

type moduleSection struct {
	Enabled     bool           `yaml:"enabled"`
	Permissions *engine.Policy `yaml:"permissions"`
	Settings    map[string]any `yaml:"settings"`
}

// Modules holds per-root module configuration sections and implements
// engine.ConfigProvider. Lookups are case-insensitive.
type Modules struct {
	sections map[string]*engine.ModuleConfig
}

// LoadModules parses the YAML modules file at path.
func LoadModules(path string) (*Modules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modules file: %w", err)
	}
	return ParseModules(data)
}

// ParseModules parses modules config from raw YAML.
func ParseModules(data []byte) (*Modules, error) {
	var file modulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid modules YAML: %w", err)
	}

	m := &Modules{sections: make(map[string]*engine.ModuleConfig, len(file.Modules))}
	for name, sec := range file.Modules {
		m.sections[strings.ToLower(name)] = &engine.ModuleConfig{
			Enabled:     sec.Enabled,
			Permissions: sec.Permissions,
			Settings:    sec.Settings,
		}
	}
	return m, nil
}

// Module returns the configuration section for a root command, if present.
func (m *Modules) Module(name string) (*engine.ModuleConfig, bool) {
	cfg, ok := m.sections[strings.ToLower(name)]
	return cfg, ok
}
