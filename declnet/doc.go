// Package declnet loads a declarative, YAML-described network into a
// pipegraph.Network at deployment time, as an additive convenience
// alongside programmatic operation.New + pipegraph.Compose construction.
//
// A NetworkDef wires named operations to Go-registered body
// implementations looked up from a BodyRegistry, supports recursive
// includes with diamond-dedup and cycle detection, and is validated
// through the validation package before translation.
package declnet
