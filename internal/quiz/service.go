package quiz

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/examforge/quizgen/internal/assemble"
	"github.com/examforge/quizgen/internal/config"
	"github.com/examforge/quizgen/internal/exam"
	"github.com/examforge/quizgen/internal/taxonomy"
)

// Service runs the matching and assembly pipeline: scan, resolve, bind,
// assemble. It snapshots the configured roots and overlay settings at
// construction so every request sees one immutable view of the
// configuration.
type Service struct {
	questionRoot string
	answerRoot   string
	subject      string

	engine *assemble.Engine
	opts   assemble.Options

	taxonomy taxonomy.Table
	logger   *zap.Logger

	// now is injected in tests for deterministic output names.
	now func() time.Time
}

// NewService wires the pipeline from configuration.
func NewService(cfg *config.Config, backend assemble.Backend, table taxonomy.Table, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := assemble.NewSourceValidator(cfg.MaxFileSize)
	return &Service{
		questionRoot: cfg.QuestionDir,
		answerRoot:   cfg.AnswerDir,
		subject:      cfg.Subject,
		engine:       assemble.NewEngine(backend, validator, logger),
		opts: assemble.Options{
			RenumberQuestions: cfg.Renumber,
			RenumberAnswers:   cfg.RenumberAnswers,
			LabelFormat:       "Q%d",
			Overlay: assemble.OverlayOptions{
				Anchor:       cfg.Anchor,
				FontSize:     cfg.LabelFontSize,
				Margin:       cfg.LabelMargin,
				MinRectWidth: 140,
			},
			QuizDir:   cfg.QuizOutputDir,
			AnswerDir: cfg.AnswerOutputDir,
		},
		taxonomy: table,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate runs one full generation request and emits the quiz packet and,
// when any answers bind, the answer packet.
func (s *Service) Generate(req GenerateRequest) (*GenerateResult, error) {
	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID))

	result := &GenerateResult{RequestID: requestID}

	manifest, missing, outcome, err := s.resolveAndBind(req.Years, req.Seasons, req.Component, req.Topics, req.AllTopics)
	if err != nil {
		return nil, err
	}
	if outcome != "" {
		result.Outcome = OutcomeEmpty
		result.Message = outcome
		log.Info("generation produced no matches", zap.String("reason", outcome))
		return result, nil
	}

	opts := s.opts
	opts.Shuffle = req.Shuffle
	opts.Seed = req.Seed

	naming := assemble.Naming{
		Years:     req.Years,
		Seasons:   req.Seasons,
		Component: req.Component,
		Timestamp: s.now(),
	}

	assembled, err := s.engine.Assemble(manifest, naming, opts)
	if err != nil {
		return nil, fmt.Errorf("assembly failed: %w", err)
	}

	result.Outcome = OutcomeOK
	result.MatchedQuestions = len(manifest)
	result.MissingAnswers = len(missing)
	result.QuizPages = assembled.QuizPages
	result.AnswerPages = assembled.AnswerPages
	result.QuizPath = assembled.QuizPath
	result.AnswerPath = assembled.AnswerPath

	log.Info("generation complete",
		zap.Int("matched_questions", result.MatchedQuestions),
		zap.Int("missing_answers", result.MissingAnswers),
		zap.String("quiz_path", result.QuizPath),
		zap.String("answer_path", result.AnswerPath))

	return result, nil
}

// Preview resolves and binds without assembling, so a caller can inspect
// what a request would select.
func (s *Service) Preview(req PreviewRequest) (*PreviewResult, error) {
	manifest, missing, outcome, err := s.resolveAndBind(req.Years, req.Seasons, req.Component, req.Topics, req.AllTopics)
	if err != nil {
		return nil, err
	}
	if outcome != "" {
		return &PreviewResult{Outcome: OutcomeEmpty, Message: outcome}, nil
	}

	entries := make([]PreviewEntry, len(manifest))
	for i, rec := range manifest {
		entries[i] = PreviewEntry{
			Paper:          rec.Key.String(),
			QuestionNumber: rec.QuestionNumber,
			SourcePath:     rec.SourcePath,
			HasAnswer:      rec.HasAnswer(),
		}
	}
	return &PreviewResult{
		Outcome:        OutcomeOK,
		Entries:        entries,
		MissingAnswers: len(missing),
	}, nil
}

// resolveAndBind runs scan, resolve and bind. A non-empty outcome string
// describes an empty result; errors are genuine failures.
func (s *Service) resolveAndBind(years, seasons []string, component string, topics []string, allTopics bool) (exam.Manifest, []exam.Record, string, error) {
	criteria := exam.Criteria{
		Years:          years,
		Seasons:        seasons,
		Component:      component,
		Topics:         topics,
		MatchAllTopics: allTopics,
	}

	folders, err := exam.ScanFolders(s.questionRoot, exam.RoleQuestion)
	if err != nil {
		return nil, nil, "", err
	}

	manifest, err := exam.Resolve(folders, criteria)
	if err != nil {
		return nil, nil, "", err
	}
	if len(manifest) == 0 {
		if len(folders) == 0 {
			return nil, nil, fmt.Sprintf("no folders matching the naming convention under %s (expected e.g. 9709_w24_qp_11)", s.questionRoot), nil
		}
		return nil, nil, "no question documents matched the selection (check that filenames carry _Q<n>_ markers and topic segments)", nil
	}

	index, duplicates, err := exam.BuildAnswerIndex(s.answerRoot)
	if err != nil {
		return nil, nil, "", err
	}
	if len(duplicates) > 0 {
		s.logger.Warn("answer corpus has duplicate folder keys; last-seen folder wins",
			zap.Strings("keys", keyStrings(duplicates)))
	}

	manifest, missing, err := exam.AttachAnswers(manifest, index)
	if err != nil {
		return nil, nil, "", err
	}
	return manifest, missing, "", nil
}

// ScanCorpus inventories both corpus roots, including duplicate-key
// diagnostics for the answer side.
func (s *Service) ScanCorpus() (*ScanResult, error) {
	questionFolders, err := exam.ScanFolders(s.questionRoot, exam.RoleQuestion)
	if err != nil {
		return nil, err
	}
	index, duplicates, err := exam.BuildAnswerIndex(s.answerRoot)
	if err != nil {
		return nil, err
	}
	return &ScanResult{
		QuestionRoot:        s.questionRoot,
		AnswerRoot:          s.answerRoot,
		QuestionFolders:     questionFolders,
		AnswerFolders:       len(index),
		DuplicateAnswerKeys: keyStrings(duplicates),
	}, nil
}

// Subject returns the configured subject code.
func (s *Service) Subject() string {
	return s.subject
}

// Components lists the configured subject's paper types.
func (s *Service) Components() []taxonomy.ComponentInfo {
	return s.taxonomy.ListComponents(s.subject)
}

// Topics lists the configured subject's topics for one component digit.
func (s *Service) Topics(component string) []taxonomy.Topic {
	return s.taxonomy.Topics(s.subject, component)
}

func keyStrings(keys []exam.Key) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
