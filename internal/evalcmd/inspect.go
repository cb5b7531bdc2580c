package evalcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/coverscan/internal/eval/dataset"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the samples of a dataset manifest",
		Long: `Prints the samples of a manifest with their expected metadata and
whether an image is available, so a dataset can be checked before a run.`,
		Example: `  # Inspect the first 5 samples
  coverscan eval inspect --dataset ./covers.jsonl --limit 5

  # Inspect all samples
  coverscan eval inspect --dataset ./covers.parquet --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.Context(), cmd.OutOrStdout(), datasetPath, limit)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to dataset manifest (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of samples to inspect (0 for all)")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeInspect(ctx context.Context, out io.Writer, datasetPath string, limit int) error {
	samples, err := dataset.NewLoader(datasetPath).LoadSample(limit)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Fprintf(out, "Loaded %d samples from %s\n", len(samples), datasetPath)
	fmt.Fprintln(out, strings.Repeat("=", 80))

	withImage := 0
	for i, sample := range samples {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		}

		image := "-"
		if sample.HasImage() {
			image = sample.ImagePath
			if _, err := os.Stat(sample.ImagePath); err != nil {
				image += " (missing)"
			} else {
				withImage++
			}
		}

		fmt.Fprintf(out, "SAMPLE %d/%d\n", i+1, len(samples))
		fmt.Fprintln(out, strings.Repeat("-", 80))
		fmt.Fprintf(out, "ID:        %s\n", sample.GetIdentifier())
		fmt.Fprintf(out, "Image:     %s\n", image)
		fmt.Fprintf(out, "ISBN:      %s\n", sample.ISBN)
		fmt.Fprintf(out, "Language:  %s\n", sample.GetLanguage())
		fmt.Fprintf(out, "Title:     %s\n", sample.Title)
		fmt.Fprintf(out, "Author:    %s\n", sample.Author)
		fmt.Fprintf(out, "Year:      %s\n", sample.Year)
		fmt.Fprintf(out, "Publisher: %s\n", sample.Publisher)
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d of %d samples have a local image\n", withImage, len(samples))
	return nil
}
