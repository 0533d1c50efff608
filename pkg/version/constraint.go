package version

import (
	"fmt"
	"strings"
)

// Constraint describes an acceptable version range for dependency
// resolution. Zero Min/Max fields mean unbounded on that side.
type Constraint struct {
	Min           Version
	MinInclusive  bool
	Max           Version
	MaxInclusive  bool
	RequiredFlags Flags
	ExcludedFlags Flags

	// AllowPrerelease admits alpha/beta/prerelease/snapshot versions, which
	// are otherwise rejected regardless of range.
	AllowPrerelease bool

	hasMin bool
	hasMax bool
}

// Satisfies reports whether v falls inside the constraint.
func (c Constraint) Satisfies(v Version) bool {
	if c.hasMin {
		if cmp := v.Compare(c.Min); cmp < 0 || (cmp == 0 && !c.MinInclusive) {
			return false
		}
	}
	if c.hasMax {
		if cmp := v.Compare(c.Max); cmp > 0 || (cmp == 0 && !c.MaxInclusive) {
			return false
		}
	}
	if c.RequiredFlags != 0 && !v.Flags.Has(c.RequiredFlags) {
		return false
	}
	if c.ExcludedFlags != 0 && v.Flags&c.ExcludedFlags != 0 {
		return false
	}
	if !c.AllowPrerelease && v.Flags.IsPrerelease() {
		return false
	}
	return true
}

func (c Constraint) String() string {
	var parts []string
	if c.hasMin {
		op := ">"
		if c.MinInclusive {
			op = ">="
		}
		parts = append(parts, op+c.Min.String())
	}
	if c.hasMax {
		op := "<"
		if c.MaxInclusive {
			op = "<="
		}
		parts = append(parts, op+c.Max.String())
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// ParseConstraint parses a space-separated list of range operators, e.g.
// ">=1.2.0 <2.0.0". "*" or the empty string match everything.
func ParseConstraint(s string) (Constraint, error) {
	var c Constraint
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return c, nil
	}

	for _, tok := range strings.Fields(s) {
		op, rest := splitOperator(tok)
		v, err := Parse(rest)
		if err != nil {
			return Constraint{}, fmt.Errorf("constraint %q: %w", tok, err)
		}
		switch op {
		case ">=":
			c.Min, c.MinInclusive, c.hasMin = v, true, true
		case ">":
			c.Min, c.MinInclusive, c.hasMin = v, false, true
		case "<=":
			c.Max, c.MaxInclusive, c.hasMax = v, true, true
		case "<":
			c.Max, c.MaxInclusive, c.hasMax = v, false, true
		case "=", "":
			c.Min, c.MinInclusive, c.hasMin = v, true, true
			c.Max, c.MaxInclusive, c.hasMax = v, true, true
		default:
			return Constraint{}, fmt.Errorf("%w: unknown constraint operator %q", ErrInvalidArgument, op)
		}
	}
	return c, nil
}

func splitOperator(tok string) (op, rest string) {
	for i := 0; i < len(tok); i++ {
		if tok[i] != '<' && tok[i] != '>' && tok[i] != '=' {
			return tok[:i], tok[i:]
		}
	}
	return tok, ""
}
