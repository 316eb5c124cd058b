package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-engine/internal/config"
	"quiz-engine/internal/content"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/logger"
)

// NewNormalizeCmd canonicalizes a quiz JSON file into the bilingual schema.
func NewNormalizeCmd(configPath *string) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "normalize <file|->",
		Short: "Normalize an authored or imported quiz into the bilingual schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var quiz domain.MultilingualQuiz
			if save {
				cfg, err := config.LoadOrDefault(*configPath)
				if err != nil {
					return err
				}
				if cfg.Postgres.URL == "" {
					return fmt.Errorf("--save requires postgres url")
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
				quiz, err = eng.service.ImportQuiz(cmd.Context(), data)
				if err != nil {
					return err
				}
				log.Info("saved quiz", zap.String("quiz_id", quiz.ID))
			} else {
				quiz, err = content.NormalizeJSON(data)
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(quiz)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "persist the normalized quiz")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quiz: %w", err)
	}
	return data, nil
}
