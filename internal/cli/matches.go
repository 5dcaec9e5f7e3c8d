package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cableclub/internal/store"
)

// MatchesOptions holds flags for the matches command.
type MatchesOptions struct {
	*RootOptions
	Database string
	Limit    int
}

type matchJSON struct {
	Token            string    `json:"token"`
	MatchedAt        time.Time `json:"matched_at"`
	WaitingSession   string    `json:"waiting_session"`
	ArrivingSession  string    `json:"arriving_session"`
	WaitingTrainer   string    `json:"waiting_trainer"`
	ArrivingTrainer  string    `json:"arriving_trainer"`
	WaitingPublicID  int64     `json:"waiting_public_id"`
	ArrivingPublicID int64     `json:"arriving_public_id"`
}

// NewMatchesCommand creates the matches command.
func NewMatchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List journalled matches, newest first",
		Long: `List the matches recorded by "cableclub serve --db".

Example:
  cableclub matches --db ./cableclub.db
  cableclub matches --db ./cableclub.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatches(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum matches to list (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMatches(opts *MatchesOptions, cmd *cobra.Command) error {
	p := newPrinter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); errors.Is(err, os.ErrNotExist) {
		return p.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	defer st.Close()

	matches, err := st.ListMatches(cmd.Context(), opts.Limit)
	if err != nil {
		return p.Fail(ExitFailure, ErrCodeDatabase, err)
	}

	if p.JSON {
		out := make([]matchJSON, 0, len(matches))
		for _, m := range matches {
			out = append(out, matchJSON{
				Token:            m.Token,
				MatchedAt:        m.At,
				WaitingSession:   m.WaitingSession,
				ArrivingSession:  m.ArrivingSession,
				WaitingTrainer:   m.WaitingTrainer,
				ArrivingTrainer:  m.ArrivingTrainer,
				WaitingPublicID:  m.WaitingPublicID,
				ArrivingPublicID: m.ArrivingPublicID,
			})
		}
		return p.Result(out)
	}

	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matches recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCHED AT\tTOKEN\tWAITING\tARRIVING")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s (%#04x)\t%s (%#04x)\n",
			m.At.Format(time.RFC3339), m.Token,
			m.WaitingTrainer, m.WaitingPublicID,
			m.ArrivingTrainer, m.ArrivingPublicID)
	}
	return tw.Flush()
}
