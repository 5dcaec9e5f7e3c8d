// Package server runs the cable club: it accepts TCP clients, reads their
// find requests, pairs clients whose identifiers agree and relays lines
// between matched peers.
//
// All connection state is owned by a single loop goroutine. Per-connection
// reader and writer goroutines, and the accept goroutine, only move bytes
// and report what happened through an event queue, so no client is ever
// touched by two goroutines. One loop iteration:
//
//  1. re-check the rules directory when the refresh interval has elapsed
//  2. wait for queued events, bounded by the poll interval
//  3. handle errors, then finished writes, then accepts and reads
//  4. hand every pending outbound buffer to its connection's writer
//
// Any failure while handling one line disconnects that client only. A
// failure of the listener stops the server.
package server
