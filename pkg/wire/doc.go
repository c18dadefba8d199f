// Package wire defines the protocol vocabulary shared between the query
// layer and the SNMP engine: query kinds, protocol versions, credential
// variants, agent error-status codes and raw variable bindings.
//
// It also provides the CBOR codec used for binding batches and result
// output. CBOR encoding uses canonical key ordering so that equal values
// encode to identical bytes.
package wire
