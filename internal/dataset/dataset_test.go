package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTraining(t *testing.T) {
	input := "fever,cough,prognosis,Unnamed: 3\n" +
		"Yes,No,flu,\n" +
		"No,,cold,\n" +
		",,,\n" +
		"Yes,Yes,flu\n"

	set, err := ReadTraining(strings.NewReader(input), "prognosis")
	require.NoError(t, err)

	assert.Equal(t, []string{"fever", "cough"}, set.Symptoms)
	assert.Equal(t, []string{"flu", "cold", "flu"}, set.Labels)
	assert.Equal(t, [][]string{
		{"Yes", "No"},
		{"No", "No"},
		{"Yes", "Yes"},
	}, set.Values)
}

func TestReadTrainingDropsBlankHeader(t *testing.T) {
	set, err := ReadTraining(strings.NewReader("fever,prognosis,\nYes,flu,\n"), "prognosis")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever"}, set.Symptoms)
}

func TestReadTrainingErrors(t *testing.T) {
	_, err := ReadTraining(strings.NewReader(""), "prognosis")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ReadTraining(strings.NewReader("fever,cough\nYes,No\n"), "prognosis")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadTraining(strings.NewReader("fever,prognosis\nYes,\n"), "prognosis")
	assert.Error(t, err)
}

func TestReadSpecializations(t *testing.T) {
	input := "Disease,Doctor Specialization\n" +
		"flu,General Physician\n" +
		"migraine,Neurologist\n" +
		"flu,Pulmonologist\n" +
		",Orphan\n"

	rows, err := ReadSpecializations(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []SpecializationRow{
		{Disease: "flu", Specialization: "General Physician"},
		{Disease: "migraine", Specialization: "Neurologist"},
		{Disease: "flu", Specialization: "Pulmonologist"},
	}, rows)
}

func TestReadSpecializationsMissingColumn(t *testing.T) {
	_, err := ReadSpecializations(strings.NewReader("Disease,Specialty\nflu,GP\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestOpenTrainingMissingFile(t *testing.T) {
	_, err := OpenTraining(filepath.Join(t.TempDir(), "missing.csv"), "prognosis")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	training := filepath.Join(dir, "data_set.csv")
	mapping := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(training, []byte("fever,prognosis\nYes,flu\n"), 0o600))
	require.NoError(t, os.WriteFile(mapping, []byte("Disease,Doctor Specialization\nflu,GP\n"), 0o600))

	set, err := OpenTraining(training, "prognosis")
	require.NoError(t, err)
	assert.Len(t, set.Labels, 1)

	rows, err := OpenSpecializations(mapping)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
