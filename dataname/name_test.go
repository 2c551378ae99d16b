package dataname

import "testing"

func TestConstructorsAndKind(t *testing.T) {
	cases := []struct {
		name string
		n    Name
		kind Kind
		base string
	}{
		{"plain", NewPlain("x"), Plain, "x"},
		{"optional", NewOptional("x"), Optional, "x"},
		{"sideffect", NewSideffect("lock"), Sideffect, "lock"},
		{"implicit", NewImplicit("ctx"), Implicit, "ctx"},
		{"aliased", NewAliased("a", "b"), Aliased, "a"},
		{"keyword", NewKeyword("a", "kw"), Keyword, "a"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.n.Kind() != c.kind {
				t.Errorf("Kind() = %v, want %v", c.n.Kind(), c.kind)
			}
			if c.n.Base() != c.base {
				t.Errorf("Base() = %q, want %q", c.n.Base(), c.base)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !NewOptional("x").IsOptional() {
		t.Error("optional name should report IsOptional")
	}
	if NewPlain("x").IsOptional() {
		t.Error("plain name should not report IsOptional")
	}
	if !NewSideffect("x").IsSideffect() {
		t.Error("sideffect name should report IsSideffect")
	}
	if !NewImplicit("x").IsImplicit() {
		t.Error("implicit name should report IsImplicit")
	}
}

func TestAliasAndKeyword(t *testing.T) {
	if dst, ok := NewAliased("a", "b").Alias(); !ok || dst != "b" {
		t.Errorf("Alias() = (%q, %v), want (\"b\", true)", dst, ok)
	}
	if _, ok := NewPlain("a").Alias(); ok {
		t.Error("plain name should not report an alias")
	}
	if kw, ok := NewKeyword("a", "k").Keyword(); !ok || kw != "k" {
		t.Errorf("Keyword() = (%q, %v), want (\"k\", true)", kw, ok)
	}
	if _, ok := NewPlain("a").Keyword(); ok {
		t.Error("plain name should not report a keyword")
	}
}

func TestString(t *testing.T) {
	cases := map[string]Name{
		"x":             NewPlain("x"),
		"optional(x)":   NewOptional("x"),
		"sfx(x)":        NewSideffect("x"),
		"implicit(x)":   NewImplicit("x"),
		"a->b":          NewAliased("a", "b"),
		"a AS k":        NewKeyword("a", "k"),
	}
	for want, n := range cases {
		if got := n.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestBases(t *testing.T) {
	names := []Name{NewPlain("a"), NewOptional("b"), NewSideffect("c")}
	got := Bases(names)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Bases() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bases()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
