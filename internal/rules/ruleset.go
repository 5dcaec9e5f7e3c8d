package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/cableclub/internal/wire"
)

// HeaderLine is the zero-based line whose value is a comma-separated list.
const HeaderLine = 3

// Rule is the ordered token list read from one rule file.
type Rule struct {
	File   string
	Tokens []string
}

// RuleSet is an immutable snapshot of the rules directory.
type RuleSet struct {
	rules []Rule
}

// Empty is the snapshot used before any rule file was seen.
var Empty = &RuleSet{}

// NewRuleSet copies rules into a new snapshot.
func NewRuleSet(rules ...Rule) *RuleSet {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{File: r.File, Tokens: append([]string(nil), r.Tokens...)}
	}
	return &RuleSet{rules: out}
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the rules in load order.
func (s *RuleSet) Rules() []Rule {
	return NewRuleSet(s.rules...).rules
}

// AppendTo writes the rule count followed by every rule's tokens.
func (s *RuleSet) AppendTo(w *wire.Writer) *wire.Writer {
	w.AddInt(int64(len(s.rules)))
	for _, r := range s.rules {
		w.AddRaw(r.Tokens)
	}
	return w
}

// Fields returns the serialized form used in found messages.
func (s *RuleSet) Fields() []string {
	return s.AppendTo(wire.NewWriter()).Fields()
}

// Load reads the named files from dir in the given order.
func Load(dir string, names []string) (*RuleSet, error) {
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		tokens, err := ReadRule(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{File: name, Tokens: tokens})
	}
	return &RuleSet{rules: rules}, nil
}

// ReadRule parses one rule file.
func ReadRule(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	tokens := make([]string, 0, len(lines))
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if i == HeaderLine {
			tokens = append(tokens, strings.Split(line, ",")...)
			continue
		}
		tokens = append(tokens, line)
	}
	return tokens, nil
}
