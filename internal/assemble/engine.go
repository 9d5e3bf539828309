package assemble

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/examforge/quizgen/internal/exam"
)

// Options controls one assembly run.
type Options struct {
	// Shuffle permutes the sorted manifest order using Seed. Two runs with
	// the same seed produce identical output ordering.
	Shuffle bool
	Seed    int64

	// RenumberQuestions overlays a sequential label on each question's first
	// page; center anchors also mask continuation pages. Best-effort: if the
	// backend cannot overlay, output degrades to plain concatenation.
	RenumberQuestions bool
	// RenumberAnswers applies the same overlay logic to the answer packet.
	// Off by default.
	RenumberAnswers bool

	// LabelFormat renders the sequential label, e.g. "Q%d".
	LabelFormat string
	Overlay     OverlayOptions

	// QuizDir and AnswerDir are the output roots, separate from the corpus.
	QuizDir   string
	AnswerDir string
}

// Naming carries the selection fields embedded in output filenames.
type Naming struct {
	Years     []string
	Seasons   []string
	Component string
	Timestamp time.Time
}

// Result reports what one assembly run produced. AnswerPath is empty when no
// manifest record had a bound answer; the answer output is omitted entirely
// rather than written as an empty document.
type Result struct {
	QuizPath    string `json:"quiz_path"`
	AnswerPath  string `json:"answer_path,omitempty"`
	QuizPages   int    `json:"quiz_pages"`
	AnswerPages int    `json:"answer_pages"`
}

// Engine turns an ordered manifest into the quiz and answer-key documents.
type Engine struct {
	backend   Backend
	validator *SourceValidator
	logger    *zap.Logger
}

// NewEngine creates an assembly engine on the given backend.
func NewEngine(backend Backend, validator *SourceValidator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{backend: backend, validator: validator, logger: logger}
}

// Assemble merges the manifest's question documents into a quiz packet and
// the bound answer documents into an answer packet, in matching order.
// Output files are written to a temporary path and renamed into place on
// success; nothing partial is left behind on failure.
func (e *Engine) Assemble(manifest exam.Manifest, naming Naming, opts Options) (*Result, error) {
	if len(manifest) == 0 {
		return nil, fmt.Errorf("nothing to assemble: empty manifest")
	}
	if !e.backend.Capabilities().Merge {
		return nil, ErrBackendUnavailable
	}

	order := permutation(len(manifest), opts.Shuffle, opts.Seed)

	quizFiles := make([]string, 0, len(manifest))
	answerFiles := make([]string, 0, len(manifest))
	for _, idx := range order {
		rec := manifest[idx]
		quizFiles = append(quizFiles, rec.SourcePath)
		if rec.HasAnswer() {
			answerFiles = append(answerFiles, rec.AnswerPath)
		}
	}

	result := &Result{}

	quizName := BuildOutputName("quiz", naming)
	quizPages, quizPath, err := e.writePacket(quizFiles, opts.QuizDir, quizName, opts.RenumberQuestions, opts)
	if err != nil {
		return nil, err
	}
	result.QuizPath = quizPath
	result.QuizPages = quizPages

	if len(answerFiles) > 0 {
		answerName := BuildOutputName("quiz_answers", naming)
		answerPages, answerPath, err := e.writePacket(answerFiles, opts.AnswerDir, answerName, opts.RenumberAnswers, opts)
		if err != nil {
			return nil, err
		}
		result.AnswerPath = answerPath
		result.AnswerPages = answerPages
	}

	return result, nil
}

// writePacket validates and merges files into dir/name, optionally stamping
// sequential labels, and returns the total page count and final path.
func (e *Engine) writePacket(files []string, dir, name string, renumber bool, opts Options) (int, string, error) {
	pageCounts := make([]int, len(files))
	total := 0
	for i, path := range files {
		if e.validator != nil {
			if err := e.validator.Validate(path); err != nil {
				return 0, "", fmt.Errorf("pre-merge validation failed: %w", err)
			}
		}
		count, err := e.backend.PageCount(path)
		if err != nil {
			return 0, "", err
		}
		pageCounts[i] = count
		total += count
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, "", fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".quizgen-%s.pdf", uuid.NewString()))
	if err := e.backend.Merge(files, tmp); err != nil {
		_ = os.Remove(tmp)
		return 0, "", err
	}

	if renumber {
		if err := e.stamp(tmp, pageCounts, opts); err != nil {
			if errors.Is(err, ErrOverlayUnsupported) || errors.Is(err, ErrBackendUnavailable) {
				e.logger.Warn("overlay backend unavailable, emitting plain concatenation",
					zap.String("output", name))
			} else {
				// The plain merged document is intact; renumbering is
				// best-effort, so degrade rather than abort.
				e.logger.Warn("renumbering overlay failed, emitting plain concatenation",
					zap.String("output", name), zap.Error(err))
			}
		}
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return 0, "", fmt.Errorf("cannot finalize output %s: %w", final, err)
	}
	return total, final, nil
}

func (e *Engine) stamp(path string, pageCounts []int, opts Options) error {
	plan := buildStampPlan(pageCounts, opts.LabelFormat, opts.Overlay.Anchor)
	return e.backend.Overlay(path, plan, opts.Overlay)
}

// buildStampPlan maps 1-based output pages to stamps. Each document's first
// page receives the sequential label for its position; subsequent pages of
// the same document receive a masked stamp, but only for center anchors,
// since corner anchors never cover page-number artifacts.
func buildStampPlan(pageCounts []int, labelFormat, anchor string) map[int]Stamp {
	if labelFormat == "" {
		labelFormat = "Q%d"
	}
	plan := make(map[int]Stamp)
	page := 1
	mask := CenterAnchor(anchor)
	for i, count := range pageCounts {
		label := fmt.Sprintf(labelFormat, i+1)
		plan[page] = Stamp{Label: label}
		if mask {
			for p := 1; p < count; p++ {
				plan[page+p] = Stamp{Label: label, Masked: true}
			}
		}
		page += count
	}
	return plan
}

// permutation returns the output order of n manifest indices: identity for
// sorted output, or a seeded pseudo-random shuffle. The generator is local
// to the call; process-global random state is never touched.
func permutation(n int, shuffle bool, seed int64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return order
}

// BuildOutputName renders the deterministic output filename:
// <prefix>_<years>_<seasons>_C<component>_<timestamp>.pdf with sorted-unique
// years and sorted seasons, traceable to the selection that produced it.
func BuildOutputName(prefix string, naming Naming) string {
	years := uniqueSorted(naming.Years)
	seasons := append([]string(nil), naming.Seasons...)
	sort.Strings(seasons)
	return fmt.Sprintf("%s_%s_%s_C%s_%s.pdf",
		prefix,
		strings.Join(years, "-"),
		strings.Join(seasons, "-"),
		naming.Component,
		naming.Timestamp.Format("20060102_150405"),
	)
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
