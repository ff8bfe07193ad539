package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/validation"
)

// stubWizard replaces the interactive form for the duration of a test and
// records the initial overrides it was given.
func stubWizard(t *testing.T, answer rula.Overrides, err error) *rula.Overrides {
	t.Helper()
	var seen rula.Overrides
	orig := runWizard
	runWizard = func(_ io.Reader, _ io.Writer, initial rula.Overrides, _ language.Tag) (rula.Overrides, error) {
		seen = initial
		return answer, err
	}
	t.Cleanup(func() { runWizard = orig })
	return &seen
}

func TestAdjust_PrefillsSuggestion(t *testing.T) {
	dir := inTempDir(t)
	runPath := savedRun(t, dir, 2)

	answer := rula.DefaultOverrides()
	answer.Flags.TrunkTwisted = true
	seen := stubWizard(t, answer, nil)

	out, err := runCLI(t, "adjust", runPath)
	require.NoError(t, err)
	assert.Equal(t, rula.DefaultOverrides(), *seen)
	assert.Contains(t, out, "Adjusted RULA")
	assert.NotContains(t, out, "Saved:")
}

func TestAdjust_SaveAndWriteOverrides(t *testing.T) {
	dir := inTempDir(t)
	runPath := savedRun(t, dir, 2)

	answer := rula.DefaultOverrides()
	answer.Factors.Legs = 2
	answer.Flags.NeckTwisted = true
	stubWizard(t, answer, nil)

	docPath := filepath.Join(dir, "answers.yaml")
	out, err := runCLI(t, "adjust", runPath, "--save", "--write-overrides", docPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved:")

	doc, err := validation.LoadOverrides(docPath)
	require.NoError(t, err)
	assert.Equal(t, answer, doc)

	run, err := export.LoadRun(runPath)
	require.NoError(t, err)
	require.NotNil(t, run.Adjusted)
	assert.Equal(t, answer, run.Adjusted.Overrides)

	// a second session starts from the stored adjustment
	seen := stubWizard(t, answer, nil)
	_, err = runCLI(t, "adjust", runPath)
	require.NoError(t, err)
	assert.Equal(t, answer, *seen)
}

func TestAdjust_WizardError(t *testing.T) {
	dir := inTempDir(t)
	runPath := savedRun(t, dir, 1)
	stubWizard(t, rula.Overrides{}, errors.New("wizard failed: user aborted"))

	_, err := runCLI(t, "adjust", runPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user aborted")
}

func TestAdjust_MissingRun(t *testing.T) {
	inTempDir(t)
	_, err := runCLI(t, "adjust", "missing.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
