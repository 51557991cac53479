package models

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugRegex     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugScrubber  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapser = regexp.MustCompile(`-{2,}`)
)

// ValidSlug reports whether s is a well-formed kebab-case slug.
func ValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// Slugify lowercases a name and reduces it to kebab-case.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugScrubber.ReplaceAllString(s, "-")
	s = slugCollapser.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug returns base unchanged if free, otherwise the first base-N
// numeric-suffix variant that is not already taken.
func UniqueSlug(taken func(string) bool, base string) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
