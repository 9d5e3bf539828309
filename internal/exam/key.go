package exam

import "fmt"

// Role distinguishes the two sides of the corpus: question papers and
// mark schemes (answers).
type Role string

const (
	RoleQuestion Role = "qp"
	RoleAnswer   Role = "ms"
)

// Season characters used in folder names.
const (
	SeasonWinterChar = "w"
	SeasonSummerChar = "s"
	SeasonSpringChar = "m"
)

// SeasonCodes maps UI season names to the single folder-name character.
var SeasonCodes = map[string]string{
	"Winter": SeasonWinterChar,
	"Summer": SeasonSummerChar,
	"Spring": SeasonSpringChar,
}

// SeasonNames lists the fixed season vocabulary in display order.
var SeasonNames = []string{"Winter", "Summer", "Spring"}

// Key identifies one physical exam paper: one subject/season/year/component
// combination. Two keys are equal iff all four fields match; the season
// character is normalized to lower case at parse time so plain struct
// equality is sufficient.
type Key struct {
	Subject    string `json:"subject"`     // 4 digits, e.g. "9709"
	Season     string `json:"season"`      // "w", "s" or "m"
	YearSuffix string `json:"year_suffix"` // 2 digits, e.g. "24"
	Component  string `json:"component"`   // 2 digits, e.g. "11"
}

// String renders the key in the corpus naming order.
func (k Key) String() string {
	return fmt.Sprintf("%s_%s%s_%s", k.Subject, k.Season, k.YearSuffix, k.Component)
}

// ComponentFirstDigit returns the paper-type digit of a two-digit component
// code. The second digit is a variant index and is ignored when matching by
// paper type.
func ComponentFirstDigit(component string) string {
	if component == "" {
		return ""
	}
	return component[:1]
}

// Record is one matched question page document, optionally enriched with the
// path of its corresponding answer document.
type Record struct {
	Key            Key                 `json:"key"`
	QuestionNumber int                 `json:"question_number"`
	SourcePath     string              `json:"source_path"`
	TopicTokens    map[string]struct{} `json:"-"`
	AnswerPath     string              `json:"answer_path,omitempty"`
}

// HasAnswer reports whether an answer document was bound to this record.
func (r Record) HasAnswer() bool {
	return r.AnswerPath != ""
}

// Manifest is the ordered, deduplicated list of matched question records for
// one generation request.
type Manifest []Record
