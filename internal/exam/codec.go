package exam

import (
	"regexp"
	"strconv"
	"strings"
)

// Corpus naming convention, case-insensitive on letters:
//
//	question folder: 9709_w24_qp_11
//	answer folder:   9709_w24_ms_11
//	question file:   A_Q8_Coordinate_geometry.pdf  (must contain _Q<n>_)
//	answer file:     B_Q8_ANS.pdf                  (must contain _Q<n> at a token boundary)
var (
	folderRe         = regexp.MustCompile(`(?i)^(\d{4})_([wsm])(\d{2})_(qp|ms)_(\d{2})$`)
	questionMarkerRe = regexp.MustCompile(`(?i)_Q(\d+)_`)
	answerMarkerRe   = regexp.MustCompile(`(?i)_Q(\d+)(?:_|$)`)
	tokenRe          = regexp.MustCompile(`[a-z0-9]+`)
)

// ParseFolderName parses a corpus folder name into a Key. A name that does
// not match the convention for the given role yields ok=false; that is a
// filter signal, not an error, since corpora may contain unrelated entries.
func ParseFolderName(name string, role Role) (Key, bool) {
	m := folderRe.FindStringSubmatch(name)
	if m == nil {
		return Key{}, false
	}
	if !strings.EqualFold(m[4], string(role)) {
		return Key{}, false
	}
	return Key{
		Subject:    m[1],
		Season:     strings.ToLower(m[2]),
		YearSuffix: m[3],
		Component:  m[5],
	}, true
}

// ParseQuestionFilename extracts the question number and topic-token set
// from a question file stem. The stem must contain a literal _Q<digits>_
// marker; everything after the marker, split on underscores and tokenized
// into lowercase alphanumeric runs, forms the token set. Stems without the
// marker are not question pages and yield ok=false.
func ParseQuestionFilename(stem string) (int, map[string]struct{}, bool) {
	loc := questionMarkerRe.FindStringSubmatchIndex(stem)
	if loc == nil {
		return 0, nil, false
	}
	n, err := strconv.Atoi(stem[loc[2]:loc[3]])
	if err != nil || n <= 0 {
		return 0, nil, false
	}
	tokens := make(map[string]struct{})
	// loc[1] is the end of the full marker match, i.e. past the trailing underscore.
	for _, seg := range strings.Split(stem[loc[1]:], "_") {
		for _, tok := range Tokenize(seg) {
			tokens[tok] = struct{}{}
		}
	}
	return n, tokens, true
}

// MatchesAnswerFilename reports whether an answer file stem refers to the
// given question number. The digits must end at a token boundary (an
// underscore or end of stem), so looking for question 1 never matches _Q10.
func MatchesAnswerFilename(stem string, questionNumber int) bool {
	for _, m := range answerMarkerRe.FindAllStringSubmatch(stem, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n == questionNumber {
			return true
		}
	}
	return false
}

// Tokenize lowercases s and splits it into maximal alphanumeric runs.
// Non-alphanumeric characters separate tokens and are discarded.
func Tokenize(s string) []string {
	return tokenRe.FindAllString(strings.ToLower(s), -1)
}

// TokenSet returns the union of tokens across all given phrases. It is used
// both for topic display names and for manifest diagnostics.
func TokenSet(phrases []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range phrases {
		for _, tok := range Tokenize(p) {
			set[tok] = struct{}{}
		}
	}
	return set
}
