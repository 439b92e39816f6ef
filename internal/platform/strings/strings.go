// Package strings checks the names and paths modules are wired with
package strings

import std "strings"

// MustString returns s, panicking with "<name> is required" when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a route prefix to one leading slash and no trailing slash
// a prefix that collapses to the root panics
func MustPrefix(s string) string {
	p := "/" + std.Trim(s, " /")
	if p == "/" {
		panic("root path is required")
	}
	return p
}

// IfEmpty returns def when in has no elements
func IfEmpty[T any](in, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}
