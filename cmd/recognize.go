package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"github.com/lehigh-university-libraries/coverscan/internal/recognition"
	"github.com/spf13/cobra"
)

func newRecognizeCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Recognize metadata on a single cover image",
		Long: `Runs one cover image through normalization, text detection and metadata
extraction and prints the result as JSON.

The command exits non-zero when the result carries an error.`,
		Example: `  coverscan recognize ./cover.jpg
  coverscan recognize --language en ./cover.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			pipeline := recognition.NewFromConfig(cfg)

			result := pipeline.Process(cmd.Context(), models.RecognitionRequest{
				ImagePath: args[0],
				Language:  language,
			})

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}

			if result.Failed() {
				return fmt.Errorf("recognition failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "ru", "Language hint for text detection")

	return cmd
}
