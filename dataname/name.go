package dataname

import "fmt"

// Kind identifies which modifier, if any, decorates a Name.
type Kind int

const (
	// Plain is an ordinary data name: required, carries a value.
	Plain Kind = iota
	// Optional marks a need the operation can run without.
	Optional
	// Sideffect marks a pseudo-name carrying ordering only, never a value.
	Sideffect
	// Implicit marks a dependency known to exist in the solution but not
	// passed into the operation body.
	Implicit
	// Aliased marks a provide whose value is additionally exposed under a
	// second name after execution.
	Aliased
	// Keyword marks a need passed into the body under a different key than
	// its name in the solution.
	Keyword
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Optional:
		return "optional"
	case Sideffect:
		return "sideffect"
	case Implicit:
		return "implicit"
	case Aliased:
		return "aliased"
	case Keyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// Name is an immutable, comparable data name optionally decorated with a
// single modifier. Equality for dependency-resolution purposes is always on
// Base(); the modifier only changes planning/execution behavior.
type Name struct {
	base    string
	kind    Kind
	aliasTo string // Aliased only: the destination name
	keyword string // Keyword only: the rename target
}

// NewPlain constructs an ordinary, required data name.
func NewPlain(base string) Name {
	return Name{base: base, kind: Plain}
}

// NewOptional constructs a need the operation can run without.
func NewOptional(base string) Name {
	return Name{base: base, kind: Optional}
}

// NewSideffect constructs a pseudo-name carrying ordering but never a value.
func NewSideffect(token string) Name {
	return Name{base: token, kind: Sideffect}
}

// NewImplicit constructs a dependency known to exist in the solution but
// not forwarded to the operation body's argument mapping.
func NewImplicit(base string) Name {
	return Name{base: base, kind: Implicit}
}

// NewAliased constructs a provide that, after execution, is also exposed
// under dst.
func NewAliased(src, dst string) Name {
	return Name{base: src, kind: Aliased, aliasTo: dst}
}

// NewKeyword constructs a need passed into the operation body under kw
// rather than under base.
func NewKeyword(base, kw string) Name {
	return Name{base: base, kind: Keyword, keyword: kw}
}

// Base returns the underlying data name used for dependency matching.
func (n Name) Base() string { return n.base }

// Kind returns the modifier kind.
func (n Name) Kind() Kind { return n.kind }

// IsOptional reports whether the operation can run without this need.
func (n Name) IsOptional() bool { return n.kind == Optional }

// IsSideffect reports whether this name is an ordering-only pseudo-name.
func (n Name) IsSideffect() bool { return n.kind == Sideffect }

// IsImplicit reports whether this dependency is withheld from the body.
func (n Name) IsImplicit() bool { return n.kind == Implicit }

// Alias returns the destination name and true if this is an Aliased provide.
func (n Name) Alias() (string, bool) {
	if n.kind == Aliased {
		return n.aliasTo, true
	}
	return "", false
}

// Keyword returns the rename target and true if this is a Keyword need.
func (n Name) Keyword() (string, bool) {
	if n.kind == Keyword {
		return n.keyword, true
	}
	return "", false
}

// String renders the name for diagnostics (plan comments, error messages,
// introspection output).
func (n Name) String() string {
	switch n.kind {
	case Optional:
		return fmt.Sprintf("optional(%s)", n.base)
	case Sideffect:
		return fmt.Sprintf("sfx(%s)", n.base)
	case Implicit:
		return fmt.Sprintf("implicit(%s)", n.base)
	case Aliased:
		return fmt.Sprintf("%s->%s", n.base, n.aliasTo)
	case Keyword:
		return fmt.Sprintf("%s AS %s", n.base, n.keyword)
	default:
		return n.base
	}
}

// Bases returns the base names of each Name in names, in order, possibly
// with duplicates if the input contains them.
func Bases(names []Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.Base()
	}
	return out
}
