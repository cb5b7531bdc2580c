package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/cataloging"
	"github.com/lehigh-university-libraries/coverscan/internal/config"
	"github.com/lehigh-university-libraries/coverscan/internal/eval/dataset"
	"github.com/lehigh-university-libraries/coverscan/internal/eval/metrics"
	"github.com/lehigh-university-libraries/coverscan/internal/eval/results"
	"github.com/lehigh-university-libraries/coverscan/internal/images"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"github.com/lehigh-university-libraries/coverscan/internal/ocr"
	"github.com/lehigh-university-libraries/coverscan/internal/recognition"
	"github.com/spf13/cobra"
)

// Recognizer runs one cover through recognition
type Recognizer interface {
	Process(ctx context.Context, req models.RecognitionRequest) models.Result
}

// RunOptions configures an evaluation run
type RunOptions struct {
	DatasetPath  string
	SampleSize   int
	OutputDir    string
	CoversDir    string
	FallbackOnly bool
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate recognition accuracy against a labelled cover dataset",
		Long: `Runs every sample of a manifest through the recognition pipeline and
compares title, author, year and publisher with the expected values.

The manifest may be .jsonl, .yaml or .parquet with the fields
id, image_path, isbn, language, title, author, year, publisher.
Samples with an ISBN but no image get their cover from Open Library.`,
		Example: `  # Evaluate the first 20 samples
  coverscan eval run --dataset ./covers.jsonl --sample 20

  # Measure the heuristic fallback alone
  coverscan eval run --dataset ./covers.yaml --fallback-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.DatasetPath); err != nil {
				return fmt.Errorf("dataset file not found: %s", opts.DatasetPath)
			}

			cfg := config.Load()
			model := cfg.GPT.Model
			var recognizer Recognizer = recognition.NewFromConfig(cfg)
			if opts.FallbackOnly {
				model = ""
				recognizer = recognition.New(images.NewNormalizer(), ocr.NewService(&cfg.Vision), fallbackOnly{})
			}

			_, err := executeRun(cmd.Context(), cmd.OutOrStdout(), opts, recognizer, images.NewFetcher(), model, cfg.GPT.Temperature)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Path to dataset manifest (.jsonl, .yaml, .parquet)")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", 0, "Number of samples to evaluate (0 for all)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "evals", "Directory for the YAML report")
	cmd.Flags().StringVar(&opts.CoversDir, "covers-dir", "./covers", "Directory for downloaded cover images")
	cmd.Flags().BoolVar(&opts.FallbackOnly, "fallback-only", false, "Skip the language model and score the heuristic extractor")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// fallbackOnly defers every text so the pipeline always uses the heuristic
type fallbackOnly struct{}

func (fallbackOnly) ExtractMetadata(ctx context.Context, text string) cataloging.Outcome {
	return cataloging.Deferred{Reason: "language model disabled"}
}

func executeRun(ctx context.Context, out io.Writer, opts RunOptions, recognizer Recognizer, fetcher dataset.CoverFetcher, model string, temperature float64) (string, error) {
	slog.Info("Starting evaluation run", "dataset", opts.DatasetPath, "model", model, "sample", opts.SampleSize)

	samples, err := dataset.NewLoader(opts.DatasetPath).LoadSample(opts.SampleSize)
	if err != nil {
		return "", fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("dataset %s has no samples", opts.DatasetPath)
	}

	if missing := dataset.ResolveCovers(ctx, samples, fetcher, opts.CoversDir); len(missing) > 0 {
		slog.Warn("Samples without an image", "count", len(missing), "ids", missing)
	}

	evalResults := make([]metrics.EvaluationResult, 0, len(samples))
	for i, sample := range samples {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slog.Info("Processing sample", "id", sample.GetIdentifier(), "progress", fmt.Sprintf("%d/%d", i+1, len(samples)))
		evalResults = append(evalResults, evaluateSample(ctx, recognizer, sample))
	}

	agg := metrics.AggregateEvaluationResults(evalResults, model)
	agg.PrintSummary(out)

	path, err := results.SaveToYAML(opts.OutputDir, results.EvalConfig{
		Model:       model,
		Temperature: temperature,
		DatasetPath: opts.DatasetPath,
		SampleSize:  len(samples),
	}, agg)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(out, "\nResults saved to: %s\n", path)
	return path, nil
}

func evaluateSample(ctx context.Context, recognizer Recognizer, sample dataset.CoverSample) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		ID:        sample.GetIdentifier(),
		ImagePath: sample.ImagePath,
	}

	if !sample.HasImage() {
		result.Error = "no image available for sample"
		return result
	}

	start := time.Now()
	recognized := recognizer.Process(ctx, models.RecognitionRequest{
		ImagePath: sample.ImagePath,
		Language:  sample.GetLanguage(),
	})
	result.ProcessingTime = time.Since(start)
	result.Extractor = recognized.Diagnostics.Extractor

	if recognized.Failed() {
		result.Error = recognized.Error
		return result
	}

	result.Metadata = recognized.Metadata
	result.Comparison = metrics.CompareSample(sample, *recognized.Metadata)

	slog.Debug("Sample scored", "id", result.ID, "extractor", result.Extractor, "score", result.Comparison.OverallScore)
	return result
}
