package results

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalSummary mirrors the aggregate numbers
type EvalSummary struct {
	Total           int                `yaml:"total"`
	Succeeded       int                `yaml:"succeeded"`
	Failed          int                `yaml:"failed"`
	LLM             int                `yaml:"llm"`
	Fallback        int                `yaml:"fallback"`
	OverallAccuracy float64            `yaml:"overallaccuracy"`
	FieldAccuracy   map[string]float64 `yaml:"fieldaccuracy"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier       string                             `yaml:"identifier"`
	ImagePath        string                             `yaml:"imagepath"`
	Extractor        string                             `yaml:"extractor,omitempty"`
	Error            string                             `yaml:"error,omitempty"`
	ProcessingTime   string                             `yaml:"processingtime"`
	OverallScore     float64                            `yaml:"overallscore"`
	LevenshteinTotal int                                `yaml:"levenshteintotal"`
	FieldsMatched    int                                `yaml:"fieldsmatched"`
	FieldsMissing    int                                `yaml:"fieldsmissing"`
	FieldsIncorrect  int                                `yaml:"fieldsincorrect"`
	Fields           map[string]metrics.FieldComparison `yaml:"fields,omitempty"`
	RawOCRText       string                             `yaml:"rawocrtext,omitempty"`
}

// EvalSpec represents the complete evaluation report
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// BuildSpec converts aggregated results into the report structure
func BuildSpec(cfg EvalConfig, agg *metrics.AggregateResults) EvalSpec {
	spec := EvalSpec{
		Config: cfg,
		Summary: EvalSummary{
			Total:           agg.TotalRecords,
			Succeeded:       agg.SuccessCount,
			Failed:          agg.FailureCount,
			LLM:             agg.LLMCount,
			Fallback:        agg.FallbackCount,
			OverallAccuracy: agg.OverallAccuracy,
			FieldAccuracy:   make(map[string]float64, len(agg.Fields)),
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}
	for field, stats := range agg.Fields {
		spec.Summary.FieldAccuracy[field] = stats.AverageScore
	}

	for _, r := range agg.Results {
		evalResult := EvalResult{
			Identifier:     r.ID,
			ImagePath:      r.ImagePath,
			Extractor:      r.Extractor,
			Error:          r.Error,
			ProcessingTime: r.ProcessingTime.Round(time.Millisecond).String(),
		}
		if r.Metadata != nil {
			evalResult.RawOCRText = r.Metadata.RawOCRText
		}
		if r.Comparison != nil {
			evalResult.OverallScore = r.Comparison.OverallScore
			evalResult.LevenshteinTotal = r.Comparison.LevenshteinTotal
			evalResult.FieldsMatched = r.Comparison.FieldsMatched
			evalResult.FieldsMissing = r.Comparison.FieldsMissing
			evalResult.FieldsIncorrect = r.Comparison.FieldsIncorrect
			evalResult.Fields = r.Comparison.Fields
		}

		spec.Results = append(spec.Results, evalResult)
	}

	return spec
}

// SaveToYAML writes the report into outputDir and returns the file path
func SaveToYAML(outputDir string, cfg EvalConfig, agg *metrics.AggregateResults) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	data, err := yaml.Marshal(BuildSpec(cfg, agg))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	model := strings.NewReplacer("/", "_", ":", "_").Replace(cfg.Model)
	if model == "" {
		model = "eval"
	}
	filename := filepath.Join(outputDir, fmt.Sprintf("%s-%s.yaml", model, cfg.Timestamp))

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	slog.Info("Evaluation results saved", "path", filename)
	return filename, nil
}
