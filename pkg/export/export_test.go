package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/snmp-query/snmpq-go/pkg/export"
	"github.com/snmp-query/snmpq-go/pkg/normalize"
)

func sampleRows() normalize.Collection {
	return normalize.Collection{
		{"ifIndex": int64(1), "ifName": "eth0", "host": "r1", "ifHCInOctets": uint64(1 << 63)},
		{"ifIndex": int64(2), "ifName": "eth1", "host": "r1", "ifSpeed": 1.5},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "json", "jsonl", "yaml", "cbor", "csv"} {
		f, err := export.ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.String())
	}

	f, err := export.ParseFormat(" YML ")
	require.NoError(t, err)
	assert.Equal(t, export.FormatYAML, f)

	_, err = export.ParseFormat("xml")
	assert.Error(t, err)
}

func TestColumns(t *testing.T) {
	got := export.Columns(sampleRows(), "host", "ifIndex", "missing")
	want := []string{"host", "ifIndex", "ifHCInOctets", "ifName", "ifSpeed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatCSV, sampleRows()))

	want := "host,ifIndex,ifName,ifHCInOctets,ifSpeed\n" +
		"r1,1,eth0,9223372036854775808,\n" +
		"r1,2,eth1,,1.5\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSONSortsKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatJSONLines, normalize.Collection{{"b": int64(2), "a": "x"}}))
	assert.Equal(t, "{\"a\":\"x\",\"b\":2}\n", buf.String())

	buf.Reset()
	require.NoError(t, export.Write(&buf, export.FormatJSON, sampleRows()))
	assert.True(t, strings.HasPrefix(buf.String(), "["))
	var back []map[string]any
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 2)
	assert.Equal(t, "eth0", back[0]["ifName"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatYAML, sampleRows()))

	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 2)
	assert.Equal(t, "eth1", back[1]["ifName"])
}

func TestWriteCBOR(t *testing.T) {
	var buf bytes.Buffer
	rows := normalize.Collection{{"ifIndex": int64(1), "ifName": "eth0"}}
	require.NoError(t, export.Write(&buf, export.FormatCBOR, rows))

	var back normalize.Collection
	require.NoError(t, cbor.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 1)
	assert.Equal(t, "eth0", back[0]["ifName"])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatText, sampleRows()))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "host"))

	buf.Reset()
	require.NoError(t, export.Write(&buf, export.FormatText, nil))
	assert.Equal(t, "(no results)\n", buf.String())
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", export.Cell(nil))
	assert.Equal(t, "-3", export.Cell(int64(-3)))
	assert.Equal(t, "0.25", export.Cell(0.25))
	assert.Equal(t, "ff00", export.Cell([]byte{0xff, 0x00}))
	assert.Equal(t, "{1 2}", export.Cell(struct{ A, B int }{1, 2}))
}
