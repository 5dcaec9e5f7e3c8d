// Package rules loads the rule presets broadcast to matched players.
//
// Each regular file in the rules directory is one rule: its trimmed lines
// become tokens, except line HeaderLine which is split on commas. A
// Watcher tracks file modification times and swaps in a new immutable
// RuleSet only when the directory actually changed.
package rules
