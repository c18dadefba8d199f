package wire

// Binding is one (name, value) pair returned for one instance of one
// variable. Name is either numeric ("1.3.6.1.2.1.1.5.0") as reported by an
// engine, or textual ("SNMPv2-MIB::sysName.0") once translated.
type Binding struct {
	Name  string `cbor:"1,keyasint" json:"name"`
	Value any    `cbor:"2,keyasint" json:"value"`
}
