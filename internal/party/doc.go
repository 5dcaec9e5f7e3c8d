// Package party defines the records a client sends with its match request:
// a Party of Pokemon, each with its moves, stats, optional mail and an
// optional fusion partner.
//
// Records are read field by field in a fixed order. Which fields exist
// depends on Features; flags are never sent on the wire, so both ends must
// be configured the same way. Every constraint lives in a Schema built once
// from configuration and shared read-only by all parses.
package party
