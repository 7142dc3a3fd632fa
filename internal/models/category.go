// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// CategoryConfig is the recommended service interval for a category,
// loaded once from the category configuration file.
type CategoryConfig struct {
	Name         string `json:"name" yaml:"-"`
	Description  string `json:"description" yaml:"description"`
	IntervalDays int    `json:"intervalDays" yaml:"intervalDays"`
}

// Category is a category as shown in listings: the name known to the
// record store plus its configuration, if any.
type Category struct {
	Name        string          `json:"name"`
	Config      *CategoryConfig `json:"config,omitempty"`
	RecordCount int             `json:"record_count"`
}

// Configured returns true if the category has a recommended interval.
func (c *Category) Configured() bool {
	return c.Config != nil
}
