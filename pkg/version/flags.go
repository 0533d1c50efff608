package version

import "strings"

// Flags is a bitset of release characteristics attached to a version.
type Flags uint32

const (
	FlagStable Flags = 1 << iota
	FlagBeta
	FlagAlpha
	FlagDevelopment
	FlagHotfix
	FlagBreaking
	FlagDeprecated
	FlagSecurity
	FlagExperimental
	FlagLTS
	FlagPrerelease
	FlagSnapshot
)

// knownFlags is the mask of all defined bits. Anything outside it is
// treated as unknown and fails compatibility checks closed.
const knownFlags = FlagStable | FlagBeta | FlagAlpha | FlagDevelopment |
	FlagHotfix | FlagBreaking | FlagDeprecated | FlagSecurity |
	FlagExperimental | FlagLTS | FlagPrerelease | FlagSnapshot

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagStable, "stable"},
	{FlagBeta, "beta"},
	{FlagAlpha, "alpha"},
	{FlagDevelopment, "development"},
	{FlagHotfix, "hotfix"},
	{FlagBreaking, "breaking"},
	{FlagDeprecated, "deprecated"},
	{FlagSecurity, "security"},
	{FlagExperimental, "experimental"},
	{FlagLTS, "lts"},
	{FlagPrerelease, "prerelease"},
	{FlagSnapshot, "snapshot"},
}

// Has reports whether every bit in f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// With returns a copy with the given bits set.
func (fl Flags) With(f Flags) Flags {
	return fl | f
}

// Without returns a copy with the given bits cleared.
func (fl Flags) Without(f Flags) Flags {
	return fl &^ f
}

// HasUnknown reports whether any bit outside the defined set is present.
func (fl Flags) HasUnknown() bool {
	return fl&^knownFlags != 0
}

// IsPrerelease reports whether the flags mark a pre-release line.
func (fl Flags) IsPrerelease() bool {
	return fl&(FlagAlpha|FlagBeta|FlagPrerelease|FlagSnapshot) != 0
}

func (fl Flags) String() string {
	if fl == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if fl.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if fl.HasUnknown() {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
