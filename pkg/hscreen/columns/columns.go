package columns

import (
	"sort"
	"strconv"
	"strings"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// Def describes one renderable column.
type Def struct {
	Key string
	// Numeric columns are right aligned.
	Numeric bool
	// Value renders the cell as text; empty means absent.
	Value func(r types.Record) string
	// Raw is the JSON value; nil means absent.
	Raw func(r types.Record) any
}

// Registry maps column keys to definitions.
var Registry = map[string]Def{}

// aliases accepted on the command line and in YAML column lists.
var aliases = map[string]string{
	"symbol":    "sym",
	"ticker":    "sym",
	"ipo year":  "ipo_year",
	"ipoyear":   "ipo_year",
	"ncincome":  "nc_income",
	"income":    "nc_income",
	"intdep":    "int_dep",
	"cash":      "int_dep",
	"change":    "chg%",
	"chg":       "chg%",
	"compliant": "status",
}

func register(d Def) { Registry[d.Key] = d }

func text(key string, get func(types.Record) string) {
	register(Def{
		Key:   key,
		Value: get,
		Raw: func(r types.Record) any {
			if v := get(r); v != "" {
				return v
			}
			return nil
		},
	})
}

func pct(key string, get func(types.Record) *float64) {
	register(Def{
		Key:     key,
		Numeric: true,
		Value: func(r types.Record) string {
			if v := get(r); v != nil {
				return FormatFloat(*v, 2)
			}
			return ""
		},
		Raw: func(r types.Record) any {
			if v := get(r); v != nil {
				return *v
			}
			return nil
		},
	})
}

func init() {
	text("sym", func(r types.Record) string { return r.Symbol })
	// name: prefer the table name; fall back to the quote name
	text("name", func(r types.Record) string {
		if r.Name != "" {
			return r.Name
		}
		if r.Quote != nil {
			return r.Quote.Name
		}
		return ""
	})
	text("country", func(r types.Record) string { return r.Country })
	text("sector", func(r types.Record) string { return r.Sector })
	text("industry", func(r types.Record) string { return r.Industry })
	text("description", func(r types.Record) string { return r.Description })
	register(Def{
		Key:     "ipo_year",
		Numeric: true,
		Value: func(r types.Record) string {
			if r.IPOYear == nil {
				return ""
			}
			return strconv.Itoa(*r.IPOYear)
		},
		Raw: func(r types.Record) any {
			if r.IPOYear == nil {
				return nil
			}
			return *r.IPOYear
		},
	})
	pct("nc_income", func(r types.Record) *float64 { return r.NCIncome })
	pct("int_dep", func(r types.Record) *float64 { return r.IntDep })
	pct("debt", func(r types.Record) *float64 { return r.Debt })
	register(Def{
		Key:   "status",
		Value: func(r types.Record) string { return r.Status.String() },
		Raw:   func(r types.Record) any { return r.Status.String() },
	})
	text("error", func(r types.Record) string {
		if r.Err == nil {
			return ""
		}
		return r.Err.Error()
	})
	text("price", func(r types.Record) string {
		if r.Quote == nil {
			return ""
		}
		return r.Quote.Price
	})
	text("chg%", func(r types.Record) string {
		if r.Quote == nil {
			return ""
		}
		return r.Quote.ChgFmt
	})
	Registry["price"] = numeric(Registry["price"])
	Registry["chg%"] = numeric(Registry["chg%"])
}

func numeric(d Def) Def {
	d.Numeric = true
	return d
}

// Canonical resolves a column name or alias to its registry key.
func Canonical(name string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[k]; ok {
		k = a
	}
	_, ok := Registry[k]
	return k, ok
}

// GetDef returns the definition for a canonical key.
func GetDef(key string) (Def, bool) {
	d, ok := Registry[key]
	return d, ok
}

// Known lists registry keys in sorted order.
func Known() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compute determines the final column order. Explicit columns are honoured
// exactly after alias resolution and de-duplication; otherwise fallback is
// used. Unknown names yield an *UnknownColumnError.
func Compute(explicit, fallback []string) ([]string, error) {
	src := explicit
	if len(src) == 0 {
		src = fallback
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(src))
	for _, name := range src {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, ok := Canonical(name)
		if !ok {
			return nil, &UnknownColumnError{Name: name, Available: Known()}
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

// NeedsQuotes reports whether any column requires a live quote.
func NeedsQuotes(cols []string) bool {
	for _, c := range cols {
		if c == "price" || c == "chg%" {
			return true
		}
	}
	return false
}

// UnknownColumnError reports an unknown column name.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

// FormatFloat formats v with a fixed number of decimals and comma separators.
func FormatFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	if n <= 3 {
		return sign + intPart + fracPart
	}
	out := make([]byte, 0, n+n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	out = append(out, intPart[:rem]...)
	for i := rem; i < n; i += 3 {
		out = append(out, ',')
		out = append(out, intPart[i:i+3]...)
	}
	return sign + string(out) + fracPart
}
