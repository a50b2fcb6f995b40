// Package idgen produces the opaque identifiers returned by the simulated
// work. It lives under `internal` because callers must treat the values as
// opaque strings; tests swap NewFunc to get deterministic ids.
package idgen
