package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/roach88/cableclub/internal/testutil"
)

// writeConfig writes a config file over fixture PBS and rules directories.
// extra lines are appended verbatim.
func writeConfig(t *testing.T, extra ...string) string {
	t.Helper()
	rulesDir := t.TempDir()
	testutil.WriteRule(t, rulesDir, "singles.txt", "Singles", "1", "50", "PIKACHU,VOLTORB")

	lines := append([]string{
		"pbs_dir: " + testutil.WritePBS(t),
		"rules_dir: " + rulesDir,
	}, extra...)
	return testutil.WriteFile(t, t.TempDir(), "cableclub.yaml", strings.Join(lines, "\n")+"\n")
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
