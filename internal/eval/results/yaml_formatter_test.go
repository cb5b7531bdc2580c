package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/eval/metrics"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"gopkg.in/yaml.v3"
)

func TestSaveToYAML(t *testing.T) {
	agg := metrics.AggregateEvaluationResults([]metrics.EvaluationResult{
		{
			ID:             "1",
			ImagePath:      "covers/1.jpg",
			Extractor:      models.ExtractorLLM,
			Metadata:       &models.MetadataRecord{RawOCRText: "ВОЙНА И МИР"},
			ProcessingTime: 1500 * time.Millisecond,
			Comparison: &metrics.SampleComparison{
				Fields: map[string]metrics.FieldComparison{
					"title": {Expected: "Война и мир", Actual: "ВОЙНА И МИР", Score: 1, Method: metrics.MatchExact},
				},
				OverallScore:  1,
				FieldsMatched: 1,
			},
		},
		{
			ID:    "2",
			Error: "No text found on image",
		},
	}, "yandexgpt/latest")

	dir := t.TempDir()
	path, err := SaveToYAML(dir, EvalConfig{
		Model:       "yandexgpt/latest",
		Temperature: 0.1,
		DatasetPath: "samples.jsonl",
		SampleSize:  2,
		Timestamp:   "2025-01-02_03-04-05",
	}, agg)
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}

	if want := filepath.Join(dir, "yandexgpt_latest-2025-01-02_03-04-05.yaml"); path != want {
		t.Errorf("Expected path %s, got %s", want, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}

	if spec.Config.DatasetPath != "samples.jsonl" || spec.Summary.Total != 2 || spec.Summary.Failed != 1 {
		t.Errorf("Unexpected report header %+v %+v", spec.Config, spec.Summary)
	}
	if len(spec.Results) != 2 {
		t.Fatalf("Expected failed samples kept in report, got %d results", len(spec.Results))
	}
	if spec.Results[0].Fields["title"].Method != metrics.MatchExact {
		t.Errorf("Expected title field comparison, got %+v", spec.Results[0].Fields)
	}
	if spec.Results[0].ProcessingTime != "1.5s" {
		t.Errorf("Expected processing time 1.5s, got %s", spec.Results[0].ProcessingTime)
	}
	if spec.Results[1].Error != "No text found on image" {
		t.Errorf("Expected error recorded, got %q", spec.Results[1].Error)
	}
}
