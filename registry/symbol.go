package registry

import (
	"fmt"
	"strings"
	"unicode"
)

// Symbol is a validated library identifier.
// Symbols compare by value, so independently declared names are equal.
type Symbol string

// ParseSymbol validates s as a library name.
func ParseSymbol(s string) (Symbol, error) {
	if s == "" {
		return "", fmt.Errorf("empty name")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("name %q contains whitespace or control characters", s)
		}
	}
	return Symbol(s), nil
}

// String returns the symbol text
func (s Symbol) String() string {
	return string(s)
}

// Namespace is a script namespace path like "vfx.FileResolver".
type Namespace string

// ParseNamespace validates s as a dot-separated namespace path.
func ParseNamespace(s string) (Namespace, error) {
	if _, err := ParseSymbol(s); err != nil {
		return "", fmt.Errorf("namespace: %w", err)
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return "", fmt.Errorf("namespace %q has an empty segment", s)
		}
	}
	return Namespace(s), nil
}

// String returns the namespace path
func (ns Namespace) String() string {
	return string(ns)
}

// Segments splits the namespace into its dot-separated parts
func (ns Namespace) Segments() []string {
	if ns == "" {
		return nil
	}
	return strings.Split(string(ns), ".")
}

// parseSymbols validates names and drops repeats, keeping the first occurrence.
func parseSymbols(names []string) ([]Symbol, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]Symbol, 0, len(names))
	seen := make(map[Symbol]bool, len(names))
	for _, n := range names {
		sym, err := ParseSymbol(n)
		if err != nil {
			return nil, fmt.Errorf("dependency: %w", err)
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out, nil
}
