package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindGet, "Get"},
		{KindWalk, "Walk"},
		{KindBulkWalk, "BulkWalk"},
		{Kind(0), "Unknown"},
		{Kind(9), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"get": KindGet, "next": KindWalk, "walk": KindWalk, "bulk": KindBulkWalk} {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseKind("set"); err == nil {
		t.Error("ParseKind(set) should fail")
	}
}

func TestErrorStatusString(t *testing.T) {
	if StatusNoSuchName.String() != "noSuchName" {
		t.Errorf("got %q", StatusNoSuchName.String())
	}
	if StatusInconsistentName.String() != "inconsistentName" {
		t.Errorf("got %q", StatusInconsistentName.String())
	}
	if ErrorStatus(200).String() != "unknown" {
		t.Errorf("got %q", ErrorStatus(200).String())
	}
	if !StatusNoError.IsSuccess() || StatusGenErr.IsSuccess() || !StatusGenErr.IsError() {
		t.Error("IsSuccess/IsError mismatch")
	}
}

func TestNewCredentials(t *testing.T) {
	creds, err := NewCredentials(Version2c, "public")
	if err != nil {
		t.Fatalf("NewCredentials(v2c) failed: %v", err)
	}
	c, ok := creds.(Community)
	if !ok {
		t.Fatalf("expected Community, got %T", creds)
	}
	if c.Secret != "public" || c.Version() != Version2c {
		t.Errorf("unexpected credentials %+v", c)
	}
	if c.String() != "community(v2c)" {
		t.Errorf("String() leaked or changed: %q", c.String())
	}

	_, err = NewCredentials(Version3, "secret")
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("NewCredentials(v3) error = %v, want ErrNotSupported", err)
	}

	_, err = NewCredentials(Version(7), "x")
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("NewCredentials(7) error = %v, want ErrNotSupported", err)
	}

	_, err = NewCommunity(Version3, "x")
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("NewCommunity(v3) error = %v, want ErrNotSupported", err)
	}
}

func TestUSMVersion(t *testing.T) {
	var creds Credentials = USM{User: "admin"}
	if creds.Version() != Version3 {
		t.Errorf("USM.Version() = %s", creds.Version())
	}
}

func TestParseVersion(t *testing.T) {
	for in, want := range map[string]Version{"1": Version1, "v1": Version1, "2c": Version2c, "V2C": Version2c, "v3": Version3} {
		got, err := ParseVersion(in)
		if err != nil {
			t.Fatalf("ParseVersion(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseVersion(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseVersion("v4"); err == nil {
		t.Error("ParseVersion(v4) should fail")
	}
	if !Version2c.SupportsBulk() || Version1.SupportsBulk() {
		t.Error("SupportsBulk mismatch")
	}
}

func TestBindingStreamRoundTrip(t *testing.T) {
	in := []Binding{
		{Name: "IF-MIB::ifIndex.1", Value: int64(1)},
		{Name: "IF-MIB::ifName.1", Value: "eth0"},
		{Name: "IF-MIB::ifAlias.1", Value: NoSuchInstance},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, b := range in {
		if err := enc.Encode(b); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := cbor.NewDecoder(&buf)
	var out []Binding
	for {
		var b Binding
		err := dec.Decode(&b)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		out = append(out, b)
	}

	if len(out) != 3 || out[0].Name != "IF-MIB::ifIndex.1" || out[2].Name != "IF-MIB::ifAlias.1" {
		t.Fatalf("decoded %v", out)
	}
	if out[1].Value != "eth0" {
		t.Errorf("out[1].Value = %#v", out[1].Value)
	}
	if out[0].Value != uint64(1) {
		t.Errorf("out[0].Value = %#v, want uint64(1)", out[0].Value)
	}
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestEncoderIsCanonical(t *testing.T) {
	a := encode(t, map[string]any{"ifIndex": int64(1), "ifName": "eth0", "ifType": int64(6)})
	b := encode(t, map[string]any{"ifType": int64(6), "ifName": "eth0", "ifIndex": int64(1)})
	if !bytes.Equal(a, b) {
		t.Error("maps with equal content should encode identically")
	}
	if bytes.Equal(a, encode(t, map[string]any{"ifIndex": int64(2)})) {
		t.Error("different maps should not encode identically")
	}
}

func TestEncoderNilSliceAsEmpty(t *testing.T) {
	if got := encode(t, []Binding(nil)); !bytes.Equal(got, []byte{0x80}) {
		t.Errorf("encoded nil slice = %x, want 80", got)
	}
}
