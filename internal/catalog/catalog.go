// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog loads the recommended service interval for each
// maintenance category. The file maps category names to a description and
// an interval in days. Both JSON and YAML are accepted.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"maintportal/internal/models"
)

// Catalog is a read-only lookup of category configuration.
type Catalog struct {
	entries map[string]models.CategoryConfig
}

// New builds a catalog from an in-memory mapping. Entries with a
// non-positive interval are dropped.
func New(entries map[string]models.CategoryConfig) *Catalog {
	c := &Catalog{entries: make(map[string]models.CategoryConfig, len(entries))}
	for name, cfg := range entries {
		if cfg.IntervalDays <= 0 {
			slog.Warn("category config skipped: interval must be positive",
				"category", name, "interval_days", cfg.IntervalDays)
			continue
		}
		cfg.Name = name
		c.entries[name] = cfg
	}
	return c
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse category config %s: %w", path, err)
	}
	slog.Info("category config loaded", "path", path, "categories", c.Len())
	return c, nil
}

// Parse decodes a configuration document. YAML is a superset of JSON, so
// one decoder handles both formats.
func Parse(data []byte) (*Catalog, error) {
	raw := map[string]models.CategoryConfig{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return New(raw), nil
}

// Lookup returns the configuration for a category.
func (c *Catalog) Lookup(name string) (models.CategoryConfig, bool) {
	cfg, ok := c.entries[name]
	return cfg, ok
}

// Names returns the configured category names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configured categories.
func (c *Catalog) Len() int {
	return len(c.entries)
}
