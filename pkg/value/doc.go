// Package value casts raw values returned by an SNMP agent to the most
// specific scalar type that represents them.
//
// Coercion tries, in order:
//
//  1. integer (int64, or uint64 when the value does not fit an int64)
//  2. floating point (float64)
//  3. text (string)
//
// The first interpretation that succeeds wins, so the string "42" becomes
// int64(42) and numeric comparisons work without further casting. A value
// that fits none of the tiers is returned unchanged.
//
// Coerce never panics and never returns an error: a failed attempt simply
// moves on to the next tier.
package value
