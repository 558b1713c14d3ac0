package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/logger"
)

// NewLeaderboardCmd prints the top scores from the configured backend.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if limit <= 0 {
				limit = cfg.Leaderboard.TopN
			}
			leaderboard, closeStore := newLeaderboardService(cmd.Context(), cfg, log)
			defer closeStore()

			return printLeaderboard(cmd.OutOrStdout(), leaderboard.TopN(cmd.Context(), limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries (defaults to leaderboard.top_n)")
	return cmd
}

func printLeaderboard(out io.Writer, board domain.Leaderboard) error {
	if board.Offline {
		_, err := fmt.Fprintln(out, "Leaderboard is offline.")
		return err
	}
	if len(board.Entries) == 0 {
		_, err := fmt.Fprintln(out, "No scores yet.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUSERNAME\tSCORE\tPERCENT\tDIFFICULTY\tCATEGORY\tSUBMITTED")
	for i, e := range board.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%.0f%%\t%s\t%s\t%s\n",
			i+1, e.Username, e.Score, e.TotalQuestions, e.Percentage,
			e.Difficulty, e.Category, e.SubmittedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
