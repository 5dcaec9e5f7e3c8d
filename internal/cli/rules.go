package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/cableclub/internal/rules"
	"github.com/roach88/cableclub/internal/wire"
)

type ruleJSON struct {
	File   string   `json:"file"`
	Tokens []string `json:"tokens"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the rule set sent to matched clients",
		Long: `Load the rules directory once and print every rule file's tokens in
the order the server sends them. With --verbose the encoded rule dump that
ends every found message is printed too.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, cmd)
		},
	}
}

func runRules(opts *RootOptions, cmd *cobra.Command) error {
	p := newPrinter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeConfig, err)
	}

	w, err := rules.NewWatcher(cfg.RulesDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	set := w.Current()

	if p.JSON {
		out := make([]ruleJSON, 0, set.Len())
		for _, r := range set.Rules() {
			out = append(out, ruleJSON{File: r.File, Tokens: r.Tokens})
		}
		return p.Result(out)
	}

	out := cmd.OutOrStdout()
	for _, r := range set.Rules() {
		fmt.Fprintf(out, "%s: %s\n", r.File, wire.Join(r.Tokens))
	}
	fmt.Fprintf(out, "%d rule(s)\n", set.Len())
	p.Notef("Dump: %s", wire.Join(set.Fields()))
	return nil
}
