package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

// EvaluationResult represents the results for a single cover
type EvaluationResult struct {
	ID             string
	ImagePath      string
	Extractor      string
	Metadata       *models.MetadataRecord
	Comparison     *SampleComparison
	ProcessingTime time.Duration
	Error          string // If recognition failed
}

// FieldStats contains statistics for one metadata field
type FieldStats struct {
	ExactMatches  int
	FuzzyMatches  int
	NoMatches     int
	MissingFields int
	AverageScore  float64
	Scores        []float64
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	// Recognition path counts
	LLMCount      int
	FallbackCount int

	Fields          map[string]*FieldStats
	OverallAccuracy float64

	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	Results []EvaluationResult

	EvaluationDate time.Time
	Model          string
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Model:          model,
		Fields:         make(map[string]*FieldStats, len(Fields)),
	}
	for _, field := range Fields {
		agg.Fields[field] = &FieldStats{Scores: []float64{}}
	}

	totalOverallScore := 0.0
	var successDuration time.Duration

	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		switch result.Extractor {
		case models.ExtractorLLM:
			agg.LLMCount++
		case models.ExtractorFallback:
			agg.FallbackCount++
		}

		if result.Comparison == nil {
			continue
		}

		for _, field := range Fields {
			aggregateFieldStats(agg.Fields[field], result.Comparison.Fields[field])
		}
		totalOverallScore += result.Comparison.OverallScore
	}

	if agg.SuccessCount > 0 {
		for _, stats := range agg.Fields {
			stats.AverageScore = calculateAverage(stats.Scores)
		}
		agg.OverallAccuracy = totalOverallScore / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	return agg
}

// aggregateFieldStats updates field statistics; fields without a reference are not scored
func aggregateFieldStats(stats *FieldStats, comp FieldComparison) {
	switch comp.Method {
	case MatchNoReference, MatchBothEmpty, "":
		return
	case MatchExact:
		stats.ExactMatches++
	case MatchFuzzyHigh, MatchFuzzyMedium, MatchFuzzyLow:
		stats.FuzzyMatches++
	case MatchNone:
		stats.NoMatches++
	case MatchMissing:
		stats.MissingFields++
	}
	stats.Scores = append(stats.Scores, comp.Score)
}

func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "COVER RECOGNITION EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Fprintf(w, "Structured by LLM: %d, by fallback: %d\n", a.LLMCount, a.FallbackCount)
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD-LEVEL ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, field := range Fields {
		stats := a.Fields[field]
		fmt.Fprintf(w, "\n%s:\n", field)
		fmt.Fprintf(w, "  Average Score: %.2f%% (%.3f)\n", stats.AverageScore*100, stats.AverageScore)
		fmt.Fprintf(w, "  Exact Matches: %d\n", stats.ExactMatches)
		fmt.Fprintf(w, "  Fuzzy Matches: %d\n", stats.FuzzyMatches)
		fmt.Fprintf(w, "  No Matches: %d\n", stats.NoMatches)
		fmt.Fprintf(w, "  Missing Fields: %d\n", stats.MissingFields)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERALL SCORE")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Overall Accuracy: %.2f%% (%.3f)\n", a.OverallAccuracy*100, a.OverallAccuracy)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
