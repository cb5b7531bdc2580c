package metrics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/coverscan/internal/eval/dataset"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

// Compared fields, in report order
var Fields = []string{"title", "author", "year", "publisher"}

// Match methods
const (
	MatchExact       = "exact"
	MatchFuzzyHigh   = "fuzzy_high"
	MatchFuzzyMedium = "fuzzy_medium"
	MatchFuzzyLow    = "fuzzy_low"
	MatchNone        = "no_match"
	MatchMissing     = "missing"
	MatchNoReference = "no_reference"
	MatchBothEmpty   = "both_empty"
)

var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// FieldComparison is the comparison of a single metadata field
type FieldComparison struct {
	Expected string  `json:"expected" yaml:"expected"`
	Actual   string  `json:"actual" yaml:"actual"`
	Score    float64 `json:"score" yaml:"score"` // 0.0 to 1.0
	Distance int     `json:"distance" yaml:"distance"`
	Method   string  `json:"method" yaml:"method"`
}

// SampleComparison is the field-by-field comparison of one cover
type SampleComparison struct {
	Fields           map[string]FieldComparison
	OverallScore     float64
	FieldsMatched    int
	FieldsMissing    int
	FieldsIncorrect  int
	LevenshteinTotal int
}

// CompareSample scores an extracted record against the expected sample.
// Fields without a reference value are reported but left out of the overall score.
func CompareSample(expected dataset.CoverSample, actual models.MetadataRecord) *SampleComparison {
	actualYear := ""
	if actual.Year != nil {
		actualYear = strconv.Itoa(*actual.Year)
	}

	pairs := map[string][2]string{
		"title":     {expected.Title, models.StringValue(actual.Title)},
		"author":    {expected.Author, models.StringValue(actual.Author)},
		"year":      {expected.Year, actualYear},
		"publisher": {expected.Publisher, models.StringValue(actual.Publisher)},
	}

	comparison := &SampleComparison{
		Fields: make(map[string]FieldComparison, len(Fields)),
	}

	totalScore := 0.0
	scored := 0
	for _, field := range Fields {
		comp := compareField(pairs[field][0], pairs[field][1])
		comparison.Fields[field] = comp
		comparison.LevenshteinTotal += comp.Distance

		switch comp.Method {
		case MatchNoReference, MatchBothEmpty:
			continue
		case MatchMissing:
			comparison.FieldsMissing++
		case MatchExact, MatchFuzzyHigh:
			comparison.FieldsMatched++
		default:
			comparison.FieldsIncorrect++
		}
		totalScore += comp.Score
		scored++
	}

	if scored > 0 {
		comparison.OverallScore = totalScore / float64(scored)
	}

	return comparison
}

// compareField compares a single field using Levenshtein distance
func compareField(expected, actual string) FieldComparison {
	comp := FieldComparison{
		Expected: expected,
		Actual:   actual,
	}

	expNorm := normalizeText(expected)
	actNorm := normalizeText(actual)
	expLen := len([]rune(expNorm))
	actLen := len([]rune(actNorm))

	switch {
	case expNorm == "" && actNorm == "":
		comp.Method = MatchBothEmpty
		return comp
	case expNorm == "":
		comp.Distance = actLen
		comp.Method = MatchNoReference
		return comp
	case actNorm == "":
		comp.Distance = expLen
		comp.Method = MatchMissing
		return comp
	case expNorm == actNorm:
		comp.Score = 1.0
		comp.Method = MatchExact
		return comp
	}

	comp.Distance = levenshteinDistance(expNorm, actNorm)
	comp.Score = 1.0 - float64(comp.Distance)/float64(max(expLen, actLen))

	switch {
	case comp.Score > 0.9:
		comp.Method = MatchFuzzyHigh
	case comp.Score > 0.7:
		comp.Method = MatchFuzzyMedium
	case comp.Score > 0.5:
		comp.Method = MatchFuzzyLow
	default:
		comp.Method = MatchNone
	}

	return comp
}

// normalizeText lowercases, drops punctuation and collapses whitespace
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = punctuationRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// levenshteinDistance calculates the edit distance between two strings in runes
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// String renders a comparison as one line per field
func (c *SampleComparison) String() string {
	var b strings.Builder
	for _, field := range Fields {
		f := c.Fields[field]
		fmt.Fprintf(&b, "  %-10s %.2f (%s) - Expected: %s, Actual: %s\n", field+":", f.Score, f.Method, f.Expected, f.Actual)
	}
	return b.String()
}
