package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/hscreen/pkg/hscreen/types"
)

// YAMLSource loads ticker lists from a YAML file or a directory of YAML files.
//
// Accepted shapes:
//
//	tickers: [AAPL, MSFT]
//
//	columns: [sym, name, status]
//	tickers:
//	  - sym: 7203.T
//	    name: Toyota
//	  - name: Banks
//	    tickers:
//	      - JPM
type YAMLSource struct{}

// Load expects spec to be a string filepath.
func (YAMLSource) Load(ctx context.Context, spec any) ([]types.Table, error) { //nolint:revive // ctx reserved for future use
	path, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("yaml source expects filepath string spec")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return parseTickerYAML(data, base)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []types.Table
	for _, full := range files {
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		// Prefix from relative path without extension, using forward slashes.
		rel, err := filepath.Rel(path, full)
		if err != nil {
			rel = filepath.Base(full)
		}
		prefix := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		tables, err := parseTickerYAML(data, prefix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		all = append(all, tables...)
	}
	return all, nil
}

// tickerNode is one entry: a bare symbol, a symbol map, or a named group.
type tickerNode struct {
	Sym     string       `yaml:"sym"`
	Name    string       `yaml:"name"`
	Tickers []tickerNode `yaml:"tickers"`
	group   bool
}

func (n *tickerNode) UnmarshalYAML(v *yaml.Node) error {
	if v.Kind == yaml.ScalarNode {
		n.Sym = strings.TrimSpace(v.Value)
		return nil
	}
	type plain tickerNode
	var p plain
	if err := v.Decode(&p); err != nil {
		return err
	}
	*n = tickerNode(p)
	for i := 0; i+1 < len(v.Content); i += 2 {
		if v.Content[i].Value == "tickers" {
			n.group = true
		}
	}
	return nil
}

type tickerFile struct {
	Columns []string     `yaml:"columns"`
	Tickers []tickerNode `yaml:"tickers"`
}

// parseTickerYAML turns a ticker file into tables. Leaf tickers at one level
// form a table named by the group path under prefix.
func parseTickerYAML(data []byte, prefix string) ([]types.Table, error) {
	var f tickerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Tickers == nil {
		return nil, fmt.Errorf("invalid yaml: missing 'tickers'")
	}

	var tables []types.Table
	var walk func(nodes []tickerNode, path []string)
	walk = func(nodes []tickerNode, path []string) {
		var recs []types.Record
		for _, n := range nodes {
			if !n.group && n.Sym != "" {
				recs = append(recs, types.Record{Symbol: n.Sym, Name: n.Name})
			}
		}
		if len(recs) > 0 {
			tables = append(tables, types.Table{
				Name:    deriveName(prefix, path),
				Columns: append([]string(nil), f.Columns...),
				Records: recs,
			})
		}
		for _, n := range nodes {
			if !n.group {
				continue
			}
			next := append([]string(nil), path...)
			if n.Name != "" {
				next = append(next, n.Name)
			}
			walk(n.Tickers, next)
		}
	}
	walk(f.Tickers, nil)
	return tables, nil
}

func deriveName(prefix string, path []string) string {
	parts := make([]string, 0, len(path)+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, path...)
	return strings.Join(parts, "/")
}

// Symbols flattens tables into their symbols, in order, without duplicates.
func Symbols(tables []types.Table) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range tables {
		for _, r := range t.Records {
			if _, ok := seen[r.Symbol]; ok || r.Symbol == "" {
				continue
			}
			seen[r.Symbol] = struct{}{}
			out = append(out, r.Symbol)
		}
	}
	return out
}
