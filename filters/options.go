package filters

import (
	"fmt"
	"strings"
)

// DefaultSection is the pipeline section holding filter plugins.
const DefaultSection = "filter"

const labelKey = "id"

// Scope selects where FindSection looks for filter content.
type Scope int

const (
	// ScopeAuto behaves as ScopeSection when the document has at least one
	// section block, and as ScopeRoot otherwise.
	ScopeAuto Scope = iota
	// ScopeRoot treats the whole document as filter content.
	ScopeRoot
	// ScopeSection gathers the bodies of the section blocks, keeping the
	// top-level conditionals around them.
	ScopeSection
)

var scopeNames = map[Scope]string{
	ScopeAuto:    "auto",
	ScopeRoot:    "root",
	ScopeSection: "section",
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// ParseScope parses "auto", "root" or "section".
func ParseScope(s string) (Scope, error) {
	for scope, name := range scopeNames {
		if strings.EqualFold(s, name) {
			return scope, nil
		}
	}
	return ScopeAuto, fmt.Errorf("unknown scope %q", s)
}

// DuplicatePolicy decides what happens when a plugin block sets the same
// attribute twice.
type DuplicatePolicy int

const (
	// DuplicateLastWins keeps the first position and the last value.
	DuplicateLastWins DuplicatePolicy = iota
	// DuplicateReject fails extraction.
	DuplicateReject
	// DuplicateMerge concatenates arrays, merges hashes key by key and
	// collects other values into an array.
	DuplicateMerge
)

var duplicateNames = map[DuplicatePolicy]string{
	DuplicateLastWins: "last-wins",
	DuplicateReject:   "reject",
	DuplicateMerge:    "merge",
}

func (p DuplicatePolicy) String() string {
	if name, ok := duplicateNames[p]; ok {
		return name
	}
	return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
}

// ParseDuplicatePolicy parses "last-wins", "reject" or "merge".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	for policy, name := range duplicateNames {
		if strings.EqualFold(s, name) {
			return policy, nil
		}
	}
	return DuplicateLastWins, fmt.Errorf("unknown duplicate attribute policy %q", s)
}

// Options configures filter discovery and extraction. The zero value looks
// in `filter` sections when there are any, and lets the last duplicate win.
type Options struct {
	Section    string
	Scope      Scope
	Duplicates DuplicatePolicy
}

func (o Options) section() string {
	if o.Section == "" {
		return DefaultSection
	}
	return o.Section
}
