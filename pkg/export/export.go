// Package export writes record collections in machine- and human-readable
// formats.
package export

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/snmp-query/snmpq-go/pkg/normalize"
	"github.com/snmp-query/snmpq-go/pkg/value"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

// Format is an output encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatJSONLines
	FormatYAML
	FormatCBOR
	FormatCSV
)

var formatNames = map[Format]string{
	FormatText:      "text",
	FormatJSON:      "json",
	FormatJSONLines: "jsonl",
	FormatYAML:      "yaml",
	FormatCBOR:      "cbor",
	FormatCSV:       "csv",
}

// String returns the format name as accepted by ParseFormat.
func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	if s == "yml" {
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unknown output format %q (use: text, json, jsonl, yaml, cbor, csv)", s)
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Write encodes rows to w.
func Write(w io.Writer, f Format, rows normalize.Collection) error {
	switch f {
	case FormatText:
		return writeText(w, rows)
	case FormatJSON:
		enc := jsonAPI.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatJSONLines:
		enc := jsonAPI.NewEncoder(w)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return wire.NewEncoder(w).Encode(rows)
	case FormatCSV:
		return writeCSV(w, rows)
	default:
		return fmt.Errorf("unsupported output format %d", f)
	}
}

// Columns returns the union of record keys. Keys named in leading come
// first, in that order, followed by the remaining keys sorted.
func Columns(rows normalize.Collection, leading ...string) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			seen[k] = true
		}
	}

	out := make([]string, 0, len(seen))
	for _, k := range leading {
		if seen[k] {
			out = append(out, k)
			delete(seen, k)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// leadingColumns puts identifying fields first.
var leadingColumns = []string{"host", "ifIndex", "ifName", "ifDescr"}

func writeCSV(w io.Writer, rows normalize.Collection) error {
	cols := Columns(rows, leadingColumns...)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	line := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			line[i] = Cell(r[c])
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, rows normalize.Collection) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(no results)")
		return err
	}
	cols := Columns(rows, leadingColumns...)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	cells := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			cells[i] = Cell(r[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// Cell renders one coerced value for tabular output. Missing values are
// empty, raw byte strings are hex.
func Cell(v any) string {
	if v == nil {
		return ""
	}
	switch value.KindOf(v) {
	case value.TierInteger:
		switch n := v.(type) {
		case int64:
			return strconv.FormatInt(n, 10)
		case uint64:
			return strconv.FormatUint(n, 10)
		}
	case value.TierFloat:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	case value.TierText:
		return v.(string)
	}
	if b, ok := v.([]byte); ok {
		return hex.EncodeToString(b)
	}
	return fmt.Sprint(v)
}
