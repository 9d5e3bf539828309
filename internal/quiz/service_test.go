package quiz

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/quizgen/internal/assemble"
	"github.com/examforge/quizgen/internal/config"
	"github.com/examforge/quizgen/internal/taxonomy"
)

// stubBackend satisfies assemble.Backend without touching real documents.
type stubBackend struct{}

func (stubBackend) Variant() assemble.Variant { return assemble.VariantFull }
func (stubBackend) Capabilities() assemble.Capabilities {
	return assemble.Capabilities{Merge: true, Overlay: true}
}
func (stubBackend) PageCount(string) (int, error) { return 1, nil }
func (stubBackend) Merge(inFiles []string, outFile string) error {
	return os.WriteFile(outFile, []byte("%PDF-1.4 merged"), 0o600)
}
func (stubBackend) Overlay(string, map[int]assemble.Stamp, assemble.OverlayOptions) error {
	return nil
}

// makeCorpus lays out a small two-sided corpus:
//
//	questions/9709_w24_qp_11/{A_Q2_Trigonometry, A_Q5_Series, A_Q8_Coordinate_geometry}
//	answers/9709_w24_ms_11/{B_Q2_ANS, B_Q8_ANS}   (Q5 has no answer)
func makeCorpus(t *testing.T) (questionRoot, answerRoot string) {
	t.Helper()
	root := t.TempDir()
	questionRoot = filepath.Join(root, "questions")
	answerRoot = filepath.Join(root, "answers")

	qdir := filepath.Join(questionRoot, "9709_w24_qp_11")
	require.NoError(t, os.MkdirAll(qdir, 0o750))
	for _, name := range []string{
		"A_Q2_Trigonometry.pdf",
		"A_Q5_Series.pdf",
		"A_Q8_Coordinate_geometry.pdf",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(qdir, name), []byte("%PDF-1.4"), 0o600))
	}

	adir := filepath.Join(answerRoot, "9709_w24_ms_11")
	require.NoError(t, os.MkdirAll(adir, 0o750))
	for _, name := range []string{"B_Q2_ANS.pdf", "B_Q8_ANS.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(adir, name), []byte("%PDF-1.4"), 0o600))
	}
	return questionRoot, answerRoot
}

func testService(t *testing.T, questionRoot, answerRoot string) *Service {
	t.Helper()
	out := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.QuestionDir = questionRoot
	cfg.AnswerDir = answerRoot
	cfg.QuizOutputDir = filepath.Join(out, "quiz")
	cfg.AnswerOutputDir = filepath.Join(out, "quiz_answers")
	return NewService(cfg, stubBackend{}, taxonomy.Default(), nil)
}

func TestServicePreview(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)
	svc := testService(t, questionRoot, answerRoot)

	result, err := svc.Preview(PreviewRequest{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Trigonometry", "Coordinate geometry", "Series"},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, 1, result.MissingAnswers)

	// Manifest order: question number ascending within the single paper.
	assert.Equal(t, 2, result.Entries[0].QuestionNumber)
	assert.Equal(t, 5, result.Entries[1].QuestionNumber)
	assert.Equal(t, 8, result.Entries[2].QuestionNumber)

	assert.True(t, result.Entries[0].HasAnswer)
	assert.False(t, result.Entries[1].HasAnswer, "Q5 has no mark scheme")
	assert.True(t, result.Entries[2].HasAnswer)

	assert.Equal(t, "9709_w24_11", result.Entries[0].Paper)
}

func TestServicePreviewTopicSubset(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)
	svc := testService(t, questionRoot, answerRoot)

	result, err := svc.Preview(PreviewRequest{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Series"},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, 5, result.Entries[0].QuestionNumber)
}

func TestServiceEmptyOutcomes(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)

	t.Run("no parseable folders", func(t *testing.T) {
		svc := testService(t, t.TempDir(), answerRoot)
		result, err := svc.Generate(GenerateRequest{
			Years:     []string{"2024"},
			Seasons:   []string{"Winter"},
			Component: "1",
			Topics:    []string{"Series"},
		})
		require.NoError(t, err, "empty result must not be an error")
		assert.Equal(t, OutcomeEmpty, result.Outcome)
		assert.Contains(t, result.Message, "naming convention")
		assert.Empty(t, result.QuizPath)
	})

	t.Run("folders but no matching questions", func(t *testing.T) {
		svc := testService(t, questionRoot, answerRoot)
		result, err := svc.Generate(GenerateRequest{
			Years:     []string{"2024"},
			Seasons:   []string{"Winter"},
			Component: "1",
			Topics:    []string{"Vectors"}, // no file carries this token
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeEmpty, result.Outcome)
		assert.Contains(t, result.Message, "matched")
	})
}

func TestServiceGenerateRejectsIncompleteSelection(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)
	svc := testService(t, questionRoot, answerRoot)

	_, err := svc.Generate(GenerateRequest{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		// no topics and no match-all
	})
	assert.Error(t, err)
}

func TestServiceScanCorpus(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)
	svc := testService(t, questionRoot, answerRoot)

	result, err := svc.ScanCorpus()
	require.NoError(t, err)

	assert.Equal(t, questionRoot, result.QuestionRoot)
	assert.Equal(t, answerRoot, result.AnswerRoot)
	require.Len(t, result.QuestionFolders, 1)
	assert.Equal(t, "9709_w24_11", result.QuestionFolders[0].Key.String())
	assert.Equal(t, 1, result.AnswerFolders)
	assert.Empty(t, result.DuplicateAnswerKeys)
}

func TestServiceTaxonomyAccessors(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)
	svc := testService(t, questionRoot, answerRoot)

	assert.Equal(t, "9709", svc.Subject())

	components := svc.Components()
	require.Len(t, components, 5)
	assert.Equal(t, "1", components[0].Component)

	topics := svc.Topics("1")
	assert.Len(t, topics, 8)
	assert.Empty(t, svc.Topics("9"))
}

func TestServiceGenerateRequestIDsUnique(t *testing.T) {
	questionRoot, answerRoot := makeCorpus(t)
	svc := testService(t, questionRoot, answerRoot)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		result, err := svc.Generate(GenerateRequest{
			Years:     []string{"2024"},
			Seasons:   []string{"Winter"},
			Component: "1",
			Topics:    []string{fmt.Sprintf("topic%d", i)},
		})
		require.NoError(t, err)
		assert.False(t, seen[result.RequestID], "request IDs must be unique")
		seen[result.RequestID] = true
	}
}
