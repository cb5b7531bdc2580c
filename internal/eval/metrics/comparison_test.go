package metrics

import (
	"math"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/coverscan/internal/eval/dataset"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"война", "война", 0},
		{"война", "воина", 1},
		{"мир", "мор", 1},
	}

	for _, tt := range tests {
		if got := levenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  Мастер  и\nМаргарита!  ", "мастер и маргарита"},
		{"«Война и мир»", "война и мир"},
		{"F. Scott Fitzgerald", "f scott fitzgerald"},
		{"1967", "1967"},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.input); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCompareField(t *testing.T) {
	tests := []struct {
		name       string
		expected   string
		actual     string
		wantMethod string
		wantScore  float64
	}{
		{"exact after normalization", "Война и мир", "ВОЙНА И МИР.", MatchExact, 1.0},
		{"both empty", "", "  ", MatchBothEmpty, 0},
		{"missing", "Лев Толстой", "", MatchMissing, 0},
		{"no reference", "", "Азбука", MatchNoReference, 0},
		{"one letter off", "воскресение", "воскресенье", MatchFuzzyHigh, 1 - 1.0/11},
		{"different", "Идиот", "Бесы", MatchNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareField(tt.expected, tt.actual)
			if got.Method != tt.wantMethod {
				t.Errorf("Expected method %s, got %s", tt.wantMethod, got.Method)
			}
			if tt.wantMethod != MatchNone && math.Abs(got.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Expected score %.4f, got %.4f", tt.wantScore, got.Score)
			}
			if tt.wantMethod == MatchNone && got.Score > 0.5 {
				t.Errorf("Expected low score, got %.4f", got.Score)
			}
		})
	}
}

func TestCompareSample(t *testing.T) {
	expected := dataset.CoverSample{
		ID:     "1",
		Title:  "Мастер и Маргарита",
		Author: "Михаил Булгаков",
		Year:   "1967",
	}

	t.Run("all fields match", func(t *testing.T) {
		actual := models.MetadataRecord{
			Title:  models.StringPtr("МАСТЕР И МАРГАРИТА"),
			Author: models.StringPtr("Михаил Булгаков"),
			Year:   models.IntPtr(1967),
		}

		comparison := CompareSample(expected, actual)
		if comparison.OverallScore != 1.0 {
			t.Errorf("Expected overall 1.0, got %.3f", comparison.OverallScore)
		}
		if comparison.FieldsMatched != 3 {
			t.Errorf("Expected 3 matched fields, got %d", comparison.FieldsMatched)
		}
		if comparison.Fields["publisher"].Method != MatchBothEmpty {
			t.Errorf("Expected publisher both_empty, got %s", comparison.Fields["publisher"].Method)
		}
	})

	t.Run("missing year and author", func(t *testing.T) {
		actual := models.MetadataRecord{
			Title: models.StringPtr("Мастер и Маргарита"),
		}

		comparison := CompareSample(expected, actual)
		if comparison.FieldsMissing != 2 {
			t.Errorf("Expected 2 missing fields, got %d", comparison.FieldsMissing)
		}
		if math.Abs(comparison.OverallScore-1.0/3) > 1e-9 {
			t.Errorf("Expected overall 1/3, got %.3f", comparison.OverallScore)
		}
		if !strings.Contains(comparison.String(), "year:") {
			t.Errorf("Expected rendered comparison to list year, got %s", comparison.String())
		}
	})
}
