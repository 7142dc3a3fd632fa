// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug sanitizes user-supplied names that end up in URLs and on
// disk: uploaded file names and category names.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxCategoryLen is the longest accepted category name, in runes.
const MaxCategoryLen = 64

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of spaces, tabs and newlines.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// categoryName lists what a category may contain. Categories double as
	// directory names in the filesystem store, so separators and dots are
	// not allowed.
	categoryName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _&-]*$`)
)

// Generate lowercases s and reduces it to letters, digits and single
// hyphens. Example: "Water Heater (2024)!" → "water-heater-2024"
func Generate(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = nonAlphanumeric.ReplaceAllString(out, "")
	out = whitespace.ReplaceAllString(out, "-")
	out = multipleHyphens.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// Filename turns an uploaded file name into a safe base name that keeps
// its extension. Directory components are discarded.
// Example: "../Invoice #12.PDF" → "invoice-12.pdf"
func Filename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := Generate(strings.TrimSuffix(base, filepath.Ext(base)))
	ext = "." + Generate(strings.TrimPrefix(ext, "."))
	if ext == "." {
		ext = ""
	}
	if stem == "" {
		stem = "file"
	}
	return stem + ext
}

// ValidCategory reports whether name is an acceptable category name.
func ValidCategory(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > MaxCategoryLen {
		return false
	}
	if strings.TrimSpace(name) != name {
		return false
	}
	return categoryName.MatchString(name)
}
