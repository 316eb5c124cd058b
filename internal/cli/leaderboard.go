package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/logger"
)

// NewLeaderboardCmd prints the ranking for a window and optional subject.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		window  string
		subject string
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := domain.ParseLeaderboardWindow(window)
			if err != nil {
				return err
			}
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("leaderboard requires postgres url")
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			eng, err := buildEngine(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer eng.Close()

			entries, err := eng.service.Leaderboard(cmd.Context(), w, subject)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd, entries)
		},
	}
	cmd.Flags().StringVar(&window, "window", string(domain.WindowAllTime), "weekly, monthly or allTime")
	cmd.Flags().StringVar(&subject, "subject", "", "restrict to a subject name")
	return cmd
}

func printLeaderboard(cmd *cobra.Command, entries []domain.LeaderboardEntry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tPOINTS\tAVG %\tATTEMPTS\tCORRECT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.1f\t%d\t%d\n", e.Rank, e.DisplayName, e.TotalPoints, e.AveragePercentage, e.TotalAttempts, e.TotalCorrect)
	}
	return tw.Flush()
}
