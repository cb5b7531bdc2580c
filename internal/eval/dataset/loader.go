package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Loader reads cover samples from a manifest file
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads all samples (JSONL, YAML or Parquet).
// Relative image paths are resolved against the manifest directory.
func (l *Loader) Load() ([]CoverSample, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit samples; limit <= 0 loads everything
func (l *Loader) LoadSample(limit int) ([]CoverSample, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var (
		samples []CoverSample
		err     error
	)
	switch ext {
	case ".parquet":
		samples, err = l.loadParquet(limit)
	case ".jsonl", ".json":
		samples, err = l.loadJSONL(limit)
	case ".yaml", ".yml":
		samples, err = l.loadYAML(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .yaml)", ext)
	}
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(l.datasetPath)
	for i := range samples {
		if samples[i].HasImage() && !filepath.IsAbs(samples[i].ImagePath) {
			samples[i].ImagePath = filepath.Join(baseDir, samples[i].ImagePath)
		}
	}

	slog.Debug("Loaded dataset", "path", l.datasetPath, "samples", len(samples))
	return samples, nil
}

func (l *Loader) loadJSONL(limit int) ([]CoverSample, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var samples []CoverSample
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(samples) >= limit {
			break
		}
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var sample CoverSample
		if err := json.Unmarshal([]byte(line), &sample); err != nil {
			// Skip malformed lines but continue
			slog.Warn("Skipping malformed dataset line", "line", lineNum, "err", err)
			continue
		}

		samples = append(samples, sample)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return samples, nil
}

func (l *Loader) loadYAML(limit int) ([]CoverSample, error) {
	data, err := os.ReadFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML manifest: %w", err)
	}

	samples := manifest.Samples
	if limit > 0 && len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

func (l *Loader) loadParquet(limit int) ([]CoverSample, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[CoverSample](pf)
	defer reader.Close()

	var samples []CoverSample
	rows := make([]CoverSample, 128)

	for limit <= 0 || len(samples) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && n > limit-len(samples) {
				n = limit - len(samples)
			}
			samples = append(samples, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	return samples, nil
}
