package mib

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var tableFS embed.FS

// Separator divides the module name from the symbol in textual names.
const Separator = "::"

// Entry is one resolved symbol.
type Entry struct {
	Module string
	Symbol string
	OID    OID
}

// Name returns the textual MODULE::symbol form.
func (e Entry) Name() string {
	return e.Module + Separator + e.Symbol
}

// tableFile is the on-disk YAML layout of a symbol table.
type tableFile struct {
	Module  string            `yaml:"module"`
	Symbols map[string]string `yaml:"symbols"`
}

// Table maps symbols to OIDs and back.
type Table struct {
	byName map[string]Entry
	byOID  map[string]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]Entry),
		byOID:  make(map[string]Entry),
	}
}

// Add registers an entry. The first symbol registered for an OID is the one
// Translate reports; a second symbol with the same name replaces nothing and
// returns an error if its OID differs.
func (t *Table) Add(e Entry) error {
	key := e.Name()
	if prev, ok := t.byName[key]; ok {
		if !prev.OID.Equal(e.OID) {
			return fmt.Errorf("symbol %s redefined: %s vs %s", key, prev.OID, e.OID)
		}
		return nil
	}
	t.byName[key] = e
	if _, ok := t.byOID[e.OID.String()]; !ok {
		t.byOID[e.OID.String()] = e
	}
	return nil
}

// Merge adds every entry of other to t.
func (t *Table) Merge(other *Table) error {
	for _, e := range other.Entries() {
		if err := t.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// Lookup finds a symbol by module and name.
func (t *Table) Lookup(module, symbol string) (Entry, bool) {
	e, ok := t.byName[module+Separator+symbol]
	return e, ok
}

// Translate renders a numeric OID as MODULE::symbol, followed by the
// remaining arcs as an instance suffix (MODULE::symbol.3). The longest
// registered prefix wins. ok is false when no registered symbol is an
// ancestor of oid.
func (t *Table) Translate(oid OID) (string, bool) {
	for n := len(oid); n > 0; n-- {
		e, found := t.byOID[oid[:n].String()]
		if !found {
			continue
		}
		if n == len(oid) {
			return e.Name(), true
		}
		return e.Name() + "." + oid[n:].String(), true
	}
	return "", false
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.byName)
}

// Entries returns all entries sorted by OID.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.byName))
	for _, e := range t.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := compareOID(out[i].OID, out[j].OID); c != 0 {
			return c < 0
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Modules returns the sorted names of all modules present in the table.
func (t *Table) Modules() []string {
	seen := make(map[string]bool)
	for _, e := range t.byName {
		seen[e.Module] = true
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func compareOID(a, b OID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// Parse decodes a YAML table file.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing symbol table: %w", err)
	}
	if f.Module == "" {
		return nil, fmt.Errorf("parsing symbol table: module name is required")
	}

	names := make([]string, 0, len(f.Symbols))
	for name := range f.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	t := NewTable()
	for _, name := range names {
		oid, err := ParseOID(f.Symbols[name])
		if err != nil {
			return nil, fmt.Errorf("%s%s%s: %w", f.Module, Separator, name, err)
		}
		if err := t.Add(Entry{Module: f.Module, Symbol: name, OID: oid}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadFile reads a single YAML table file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadDir merges every .yaml or .yml file found directly in dir.
func LoadDir(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	t := NewTable()
	for _, e := range entries {
		if e.IsDir() || !isTableFile(e.Name()) {
			continue
		}
		sub, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := t.Merge(sub); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func isTableFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// ---------------------------------------------------------------------------
// Embedded tables
// ---------------------------------------------------------------------------

// builtinOrder fixes the merge order so base SMI names are registered first.
var builtinOrder = []string{"SNMPv2-SMI", "SNMPv2-MIB", "IF-MIB"}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns a fresh copy of the embedded standard table.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = loadBuiltin()
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	t := NewTable()
	if err := t.Merge(defaultTable); err != nil {
		return nil, err
	}
	return t, nil
}

// MustDefault is like Default but panics if the embedded tables are broken.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

func loadBuiltin() (*Table, error) {
	t := NewTable()
	for _, module := range builtinOrder {
		data, err := fs.ReadFile(tableFS, "tables/"+module+".yaml")
		if err != nil {
			return nil, fmt.Errorf("builtin table %q not found: %w", module, err)
		}
		sub, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin table %q: %w", module, err)
		}
		if err := t.Merge(sub); err != nil {
			return nil, err
		}
	}
	return t, nil
}
