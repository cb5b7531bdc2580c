package evalcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/coverscan/internal/eval/results"
	"github.com/lehigh-university-libraries/coverscan/internal/models"
	"gopkg.in/yaml.v3"
)

type fakeRecognizer struct {
	byPath map[string]models.Result
	calls  int
}

func (f *fakeRecognizer) Process(ctx context.Context, req models.RecognitionRequest) models.Result {
	f.calls++
	if r, ok := f.byPath[filepath.Base(req.ImagePath)]; ok {
		return r
	}
	return models.Result{Error: "No text found on image"}
}

type noCovers struct{}

func (noCovers) FetchCover(ctx context.Context, isbn, outputDir string) (string, error) {
	return "", errors.New("cover not found")
}

func TestExecuteRun(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "covers.jsonl")
	data := `{"id":"a","image_path":"a.jpg","title":"Война и мир","author":"Лев Толстой","year":"1869"}
{"id":"b","image_path":"b.jpg","title":"Идиот"}
{"id":"c","isbn":"978-0-00-000000-0","title":"Без обложки"}
`
	if err := os.WriteFile(manifest, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	recognizer := &fakeRecognizer{byPath: map[string]models.Result{
		"a.jpg": {
			Metadata: &models.MetadataRecord{
				Title:  models.StringPtr("ВОЙНА И МИР"),
				Author: models.StringPtr("Лев Толстой"),
			},
			Diagnostics: models.Diagnostics{Extractor: models.ExtractorFallback},
		},
	}}

	var out bytes.Buffer
	outputDir := filepath.Join(dir, "evals")
	path, err := executeRun(context.Background(), &out, RunOptions{
		DatasetPath: manifest,
		OutputDir:   outputDir,
		CoversDir:   filepath.Join(dir, "covers"),
	}, recognizer, noCovers{}, "yandexgpt/latest", 0.1)
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	if recognizer.calls != 2 {
		t.Errorf("Expected 2 recognitions (sample without image skipped), got %d", recognizer.calls)
	}
	if !strings.Contains(out.String(), "Total Records: 3") {
		t.Errorf("Expected summary in output, got %s", out.String())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var spec results.EvalSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}

	if spec.Summary.Succeeded != 1 || spec.Summary.Failed != 2 || spec.Summary.Fallback != 1 {
		t.Errorf("Unexpected summary %+v", spec.Summary)
	}
	if spec.Results[0].Fields["title"].Method != "exact" {
		t.Errorf("Expected exact title match, got %+v", spec.Results[0].Fields["title"])
	}
	if spec.Results[0].Fields["year"].Method != "missing" {
		t.Errorf("Expected year missing, got %+v", spec.Results[0].Fields["year"])
	}
	if spec.Results[2].Error != "no image available for sample" {
		t.Errorf("Expected image error for ISBN-only sample, got %q", spec.Results[2].Error)
	}
}

func TestExecuteRunEmptyDataset(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(manifest, nil, 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	_, err := executeRun(context.Background(), &bytes.Buffer{}, RunOptions{DatasetPath: manifest}, &fakeRecognizer{}, noCovers{}, "", 0)
	if err == nil {
		t.Error("Expected error for empty dataset")
	}
}

func TestExecuteInspect(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "present.jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}
	manifest := filepath.Join(dir, "covers.yaml")
	data := `samples:
  - id: present
    image_path: present.jpg
    title: Обломов
  - id: absent
    image_path: absent.jpg
`
	if err := os.WriteFile(manifest, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	var out bytes.Buffer
	if err := executeInspect(context.Background(), &out, manifest, 0); err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}

	if !strings.Contains(out.String(), "Обломов") || !strings.Contains(out.String(), "(missing)") {
		t.Errorf("Unexpected inspect output %s", out.String())
	}
	if !strings.Contains(out.String(), "1 of 2 samples have a local image") {
		t.Errorf("Expected image count line, got %s", out.String())
	}
}
