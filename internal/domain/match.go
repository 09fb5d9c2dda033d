package domain

import (
	"fmt"
	"strings"
)

type MatchMode string

const (
	// MatchBoundary accepts the identity itself and its dotted submodules.
	MatchBoundary MatchMode = "boundary"
	// MatchPrefix is a plain string prefix: "foo" also matches "foobar".
	MatchPrefix MatchMode = "prefix"
)

func ParseMatchMode(raw string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MatchBoundary:
		return MatchBoundary, nil
	case MatchPrefix:
		return MatchPrefix, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", raw)
	}
}

func (m MatchMode) Matches(identity ModuleIdentity, name string) bool {
	id := string(identity)
	if id == "" {
		return false
	}
	if m == MatchPrefix {
		return strings.HasPrefix(name, id)
	}

	return name == id || strings.HasPrefix(name, id+".")
}
