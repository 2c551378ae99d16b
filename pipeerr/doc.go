// Package pipeerr defines the typed error kinds raised by the compiler and
// executor. Each kind is a struct whose typed fields hold its structured
// context (operation name, offending inputs, missing outputs, cycle
// members), and whose Error() text begins with a machine-readable Code.
// There is no message or details field and no HTTP-status mapping; only
// UserFnError wraps a cause (through Unwrap).
package pipeerr
