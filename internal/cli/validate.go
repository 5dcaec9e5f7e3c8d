package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cableclub/internal/config"
	"github.com/roach88/cableclub/internal/party"
	"github.com/roach88/cableclub/internal/server"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Party bool
}

// LineResult is the verdict for one input line.
type LineResult struct {
	Line     int    `json:"line"`
	Valid    bool   `json:"valid"`
	Trainer  string `json:"trainer,omitempty"`
	PublicID int64  `json:"public_id,omitempty"`
	Members  int    `json:"members"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func (r LineResult) String() string {
	if !r.Valid {
		return fmt.Sprintf("line %d: %s %s", r.Line, r.Code, r.Reason)
	}
	if r.Trainer == "" {
		return fmt.Sprintf("line %d: ok (%d pokemon)", r.Line, r.Members)
	}
	return fmt.Sprintf("line %d: ok (%s, public id %#04x, %d pokemon)", r.Line, r.Trainer, r.PublicID, r.Members)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check find requests against the configured schema",
		Long: `Check find requests the way the server would, without a network.

Each non-empty line of the file (or stdin for "-") is one request. Lines
starting with # are skipped. With --party each line is a bare party payload
instead of a full find request. Every failure is reported with the reason
a client would be sent, followed by the full detail.

Example:
  cableclub validate requests.txt
  cableclub validate --party --format json party.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Party, "party", false, "lines hold party payloads only")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	p := newPrinter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeConfig, err)
	}

	sc, data, err := server.LoadSchema(cfg)
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	p.Notef("Loaded %d species from %s", data.Dex.Len(), cfg.PBSDir)

	input, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeNotFound, err)
	}

	results := validateLines(input, sc, cfg, opts.Party)
	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}

	if p.JSON {
		if invalid > 0 {
			_ = p.Report(ErrCodeInvalid, fmt.Sprintf("%d of %d line(s) rejected", invalid, len(results)), results)
		} else {
			_ = p.Result(results)
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintln(w, r)
		}
		if invalid > 0 {
			fmt.Fprintf(w, "✗ %d of %d line(s) rejected\n", invalid, len(results))
		} else {
			fmt.Fprintf(w, "✓ %d line(s) valid\n", len(results))
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d line(s) rejected", ErrCodeInvalid, invalid))
	}
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input not found: %s", path)
	}
	return data, err
}

// validateLines checks every request line in input.
func validateLines(input []byte, sc *party.Schema, cfg *config.Config, partyOnly bool) []LineResult {
	results := []LineResult{}
	for i, line := range bytes.Split(input, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(bytes.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}

		res := LineResult{Line: i + 1, Valid: true}
		var err error
		if partyOnly {
			var p *party.Party
			if p, err = server.ParseParty(line, sc); err == nil {
				res.Members = len(p.Members)
			}
		} else {
			var f *server.Finding
			if f, err = server.ParseFind(line, sc, cfg.MinVersion()); err == nil {
				res.Trainer = f.Name
				res.PublicID = f.PublicID()
				res.Members = len(f.Party.Members)
			}
		}

		if err != nil {
			res.Valid = false
			var se *server.SessionError
			if errors.As(err, &se) {
				res.Code = string(se.Code)
				res.Reason = se.Message(true)
			} else {
				res.Code = string(server.CodeInternal)
				res.Reason = err.Error()
			}
		}
		results = append(results, res)
	}
	return results
}
