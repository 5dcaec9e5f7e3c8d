// Package testutil provides fixtures shared by the package tests: PBS and
// rule directories on disk, wire token builders for find requests and
// parties, and a line-oriented TCP client.
package testutil
