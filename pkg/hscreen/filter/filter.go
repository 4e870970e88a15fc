package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/komsit37/hscreen/pkg/hscreen/ratio"
	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// Predicate matches a record.
type Predicate interface {
	Match(r types.Record) bool
}

// Func adapts a function to Predicate.
type Func func(r types.Record) bool

func (f Func) Match(r types.Record) bool { return f(r) }

// Always matches every record, or none.
type Always bool

func (a Always) Match(types.Record) bool { return bool(a) }

// And is a conjunction; an empty And matches everything.
type And []Predicate

func (a And) Match(r types.Record) bool {
	for _, p := range a {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

// All builds a conjunction, skipping nil predicates.
func All(preds ...Predicate) Predicate {
	out := make(And, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Apply returns a copy of t holding only matching records.
func Apply(t types.Table, p Predicate) types.Table {
	out := types.Table{Name: t.Name, Columns: t.Columns}
	for _, r := range t.Records {
		if p == nil || p.Match(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Keywords requires every term to appear, case-insensitively, in the
// record description. Blank terms are ignored.
type Keywords struct{ terms []string }

func NewKeywords(terms ...string) Keywords {
	k := Keywords{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			k.terms = append(k.terms, t)
		}
	}
	return k
}

func (k Keywords) Match(r types.Record) bool {
	if len(k.terms) == 0 {
		return true
	}
	desc := strings.ToLower(r.Description)
	for _, t := range k.terms {
		if !strings.Contains(desc, t) {
			return false
		}
	}
	return true
}

func (k Keywords) String() string { return fmt.Sprintf("keywords:%s", strings.Join(k.terms, "&")) }

// Sector matches any of the named sectors, case-insensitively.
type Sector struct{ set map[string]struct{} }

func NewSector(names ...string) Sector {
	s := Sector{set: map[string]struct{}{}}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			s.set[n] = struct{}{}
		}
	}
	return s
}

func (s Sector) Match(r types.Record) bool {
	if len(s.set) == 0 {
		return true
	}
	_, ok := s.set[strings.ToLower(strings.TrimSpace(r.Sector))]
	return ok
}

// Compliant keeps records whose stored ratios classify as Compliant, and
// LikelyCompliant ones when includeLikely is set.
type Compliant struct{ IncludeLikely bool }

func (c Compliant) Match(r types.Record) bool {
	switch ratio.ClassifyStored(r.NCIncome, r.IntDep, r.Debt) {
	case types.Compliant:
		return true
	case types.LikelyCompliant:
		return c.IncludeLikely
	default:
		return false
	}
}

// Parse builds a symbol/name predicate from an expression:
// - Comma-separated exact symbols: "AAPL,MSFT"
// - Glob over the symbol: "7*.T"
// - Regex over symbol or name: "/^Toyo/"
// - Otherwise a case-insensitive substring of symbol or name.
func Parse(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, err
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.ToUpper(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return SymbolSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?[") {
		if _, err := filepath.Match(expr, ""); err != nil {
			return nil, err
		}
		return Glob{pattern: strings.ToUpper(expr)}, nil
	}
	return SubstrCI{needle: strings.ToLower(expr)}, nil
}

// SymbolSet matches exact symbols, ignoring case.
type SymbolSet struct{ set map[string]struct{} }

func (e SymbolSet) Match(r types.Record) bool {
	_, ok := e.set[strings.ToUpper(r.Symbol)]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(r types.Record) bool {
	ok, _ := filepath.Match(g.pattern, strings.ToUpper(r.Symbol))
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (x Regex) Match(r types.Record) bool {
	return x.re.MatchString(r.Symbol) || x.re.MatchString(r.Name)
}

// SubstrCI matches if symbol or name contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(r types.Record) bool {
	if s.needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Symbol), s.needle) ||
		strings.Contains(strings.ToLower(r.Name), s.needle)
}

// String provides a human-readable representation useful for logs/errors.
func (g Glob) String() string     { return fmt.Sprintf("glob:%s", g.pattern) }
func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
func (x Regex) String() string    { return fmt.Sprintf("regex:%s", x.re) }
