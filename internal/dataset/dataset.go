// Package dataset reads the static CSV tables the diagnosis model is built
// from: the symptom training table and the disease to specialization mapping.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DiseaseColumn        = "Disease"
	SpecializationColumn = "Doctor Specialization"
)

var (
	ErrEmptyFile     = errors.New("dataset: empty file")
	ErrMissingColumn = errors.New("dataset: missing column")
)

// TrainingSet holds the raw cell values of the training table. Values has one
// row per example and one column per entry in Symptoms; blank cells are
// already replaced by "No".
type TrainingSet struct {
	Symptoms []string
	Values   [][]string
	Labels   []string
}

type SpecializationRow struct {
	Disease        string
	Specialization string
}

func OpenTraining(path, labelColumn string) (*TrainingSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	set, err := ReadTraining(f, labelColumn)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return set, nil
}

// ReadTraining parses a training table. The label column is split out, and
// unnamed columns (blank headers or pandas-style "Unnamed: N") are dropped.
func ReadTraining(r io.Reader, labelColumn string) (*TrainingSet, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	labelIdx := -1
	var keep []int
	var symptoms []string
	for i, name := range header {
		switch {
		case name == labelColumn:
			labelIdx = i
		case isUnnamed(name):
		default:
			keep = append(keep, i)
			symptoms = append(symptoms, name)
		}
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, labelColumn)
	}

	set := &TrainingSet{Symptoms: symptoms}
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		label := cell(row, labelIdx)
		if label == "" {
			return nil, fmt.Errorf("row %d: empty %s", n+2, labelColumn)
		}

		values := make([]string, len(keep))
		for j, col := range keep {
			values[j] = cell(row, col)
			if values[j] == "" {
				values[j] = "No"
			}
		}
		set.Values = append(set.Values, values)
		set.Labels = append(set.Labels, label)
	}
	return set, nil
}

func OpenSpecializations(path string) ([]SpecializationRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	out, err := ReadSpecializations(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

func ReadSpecializations(r io.Reader) ([]SpecializationRow, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	diseaseIdx, specIdx := -1, -1
	for i, name := range rows[0] {
		switch name {
		case DiseaseColumn:
			diseaseIdx = i
		case SpecializationColumn:
			specIdx = i
		}
	}
	if diseaseIdx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, DiseaseColumn)
	}
	if specIdx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, SpecializationColumn)
	}

	out := make([]SpecializationRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		disease, spec := cell(row, diseaseIdx), cell(row, specIdx)
		if disease == "" || spec == "" {
			continue
		}
		out = append(out, SpecializationRow{Disease: disease, Specialization: spec})
	}
	return out, nil
}

func readAll(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	for i, name := range rows[0] {
		rows[0][i] = cleanCell(name)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func cleanCell(value string) string {
	return strings.TrimSpace(strings.TrimPrefix(value, "\ufeff"))
}

func isUnnamed(name string) bool {
	return name == "" || strings.HasPrefix(name, "Unnamed:")
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if cleanCell(v) != "" {
			return false
		}
	}
	return true
}
