package heuristic

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/lehigh-university-libraries/coverscan/internal/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		title  *string
		author *string
		year   *int
	}{
		{
			name:   "author then title then year",
			text:   "Лев Толстой\nВойна и мир\n2015",
			author: models.StringPtr("Лев Толстой"),
			title:  models.StringPtr("Война и мир"),
			year:   models.IntPtr(2015),
		},
		{
			name:   "years before 1900 are not recognized",
			text:   "Лев Толстой\nВойна и мир\n1869",
			author: models.StringPtr("Лев Толстой"),
			title:  models.StringPtr("Война и мир"),
		},
		{
			name:   "year line is consumed before author rule",
			text:   "Москва 1999\nДостоевский\nИдиот",
			author: models.StringPtr("Достоевский"),
			title:  models.StringPtr("Идиот"),
			year:   models.IntPtr(1999),
		},
		{
			name:   "only first year is taken and later year lines may become title",
			text:   "2001\nАркадий Стругацкий\n2020 издание",
			author: models.StringPtr("Аркадий Стругацкий"),
			title:  models.StringPtr("2020 издание"),
			year:   models.IntPtr(2001),
		},
		{
			name:   "three letter lines cannot be authors",
			text:   "Оно\nСтивен Кинг",
			title:  models.StringPtr("Оно"),
			author: models.StringPtr("Стивен Кинг"),
		},
		{
			name:   "lines with digits are not authors",
			text:   "Увертюра 1812\nPyotr Tchaikovsky",
			author: models.StringPtr("Pyotr Tchaikovsky"),
			title:  models.StringPtr("Увертюра 1812"),
		},
		{
			name:   "year must be a whole token",
			text:   "ISBN 978-5-17-120011\nМастер и Маргарита",
			author: models.StringPtr("Мастер и Маргарита"),
			title:  models.StringPtr("ISBN 978-5-17-120011"),
		},
		{
			name: "single character yields nothing",
			text: "x",
		},
		{
			name: "blank text",
			text: "  \n\n ",
		},
		{
			name: "empty text",
			text: "",
		},
		{
			name:   "lines are trimmed",
			text:   "   Агата Кристи  \n\tУбийство в Восточном экспрессе ",
			author: models.StringPtr("Агата Кристи"),
			title:  models.StringPtr("Убийство в Восточном экспрессе"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)

			if !reflect.DeepEqual(got.Title, tt.title) {
				t.Errorf("Title: expected %v, got %v", deref(tt.title), deref(got.Title))
			}
			if !reflect.DeepEqual(got.Author, tt.author) {
				t.Errorf("Author: expected %v, got %v", deref(tt.author), deref(got.Author))
			}
			if !reflect.DeepEqual(got.Year, tt.year) {
				t.Errorf("Year: expected %v, got %v", tt.year, got.Year)
			}
			if got.Publisher != nil {
				t.Errorf("Publisher should never be set, got %q", *got.Publisher)
			}
			if got.ExtractedText != tt.text {
				t.Errorf("ExtractedText: expected original text %q, got %q", tt.text, got.ExtractedText)
			}
		})
	}
}

func TestExtract_YearRange(t *testing.T) {
	for _, year := range []int{1900, 1955, 1999, 2000, 2024, 2099} {
		text := "Какой-то текст\n" + "Издано в " + strconv.Itoa(year) + " году"
		got := Extract(text)
		if got.Year == nil || *got.Year != year {
			t.Errorf("Expected year %d, got %v", year, got.Year)
		}
	}

	for _, text := range []string{"1899", "2100", "18990", "12000"} {
		if got := Extract(text); got.Year != nil {
			t.Errorf("Expected no year for %q, got %d", text, *got.Year)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Братья Стругацкие\nПикник на обочине\nАСТ\n2019\nФантастика"
	first := Extract(text)
	for i := 0; i < 10; i++ {
		if got := Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
