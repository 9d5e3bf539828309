package quiz

import "github.com/examforge/quizgen/internal/exam"

// Outcome labels the result class of a request per the error taxonomy:
// empty results are ordinary outcomes, not errors.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
)

// GenerateRequest is one packet-generation request.
type GenerateRequest struct {
	Years     []string `json:"years"`
	Seasons   []string `json:"seasons"`
	Component string   `json:"component"`
	Topics    []string `json:"topics"`
	// AllTopics selects every parseable question regardless of topic. It is
	// the explicit match-all mode used by the debug entry point.
	AllTopics bool  `json:"all_topics"`
	Shuffle   bool  `json:"shuffle"`
	Seed      int64 `json:"seed"`
}

// GenerateResult reports one generation request. A zero-match request
// returns Outcome "empty" with a human-readable reason and no error.
type GenerateResult struct {
	RequestID        string `json:"request_id"`
	Outcome          string `json:"outcome"`
	Message          string `json:"message,omitempty"`
	MatchedQuestions int    `json:"matched_questions"`
	MissingAnswers   int    `json:"missing_answers"`
	QuizPages        int    `json:"quiz_pages"`
	AnswerPages      int    `json:"answer_pages"`
	QuizPath         string `json:"quiz_path,omitempty"`
	// AnswerPath is empty when no matched question had a bound answer; the
	// answer packet is omitted rather than written empty.
	AnswerPath string `json:"answer_path,omitempty"`
}

// PreviewRequest resolves and binds without assembling any output.
type PreviewRequest struct {
	Years     []string `json:"years"`
	Seasons   []string `json:"seasons"`
	Component string   `json:"component"`
	Topics    []string `json:"topics"`
	AllTopics bool     `json:"all_topics"`
}

// PreviewEntry is one manifest record summarized for display.
type PreviewEntry struct {
	Paper          string `json:"paper"` // e.g. 9709_w24_11
	QuestionNumber int    `json:"question_number"`
	SourcePath     string `json:"source_path"`
	HasAnswer      bool   `json:"has_answer"`
}

// PreviewResult reports what a generation request would assemble.
type PreviewResult struct {
	Outcome        string         `json:"outcome"`
	Message        string         `json:"message,omitempty"`
	Entries        []PreviewEntry `json:"entries"`
	MissingAnswers int            `json:"missing_answers"`
}

// ScanResult inventories the corpus roots.
type ScanResult struct {
	QuestionRoot        string             `json:"question_root"`
	AnswerRoot          string             `json:"answer_root"`
	QuestionFolders     []exam.FolderEntry `json:"question_folders"`
	AnswerFolders       int                `json:"answer_folders"`
	DuplicateAnswerKeys []string           `json:"duplicate_answer_keys,omitempty"`
}
