package exam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Criteria is one generation request's selection input. It is constructed
// fresh per request and never persisted.
type Criteria struct {
	// Years holds 4-digit year strings; a folder matches when its 2-digit
	// year suffix is the suffix of any selected year.
	Years []string `json:"years"`
	// Seasons holds season names from the fixed vocabulary (Winter, Summer,
	// Spring).
	Seasons []string `json:"seasons"`
	// Component is the single paper-type digit compared against the first
	// digit of a folder's two-digit component code.
	Component string `json:"component"`
	// Topics holds topic display names. Matching is by token intersection:
	// any shared token selects the file, so "Coordinate geometry" also
	// matches a file tagged only "geometry". This coarseness is deliberate.
	Topics []string `json:"topics"`
	// MatchAllTopics selects every parseable question file regardless of
	// topic tokens. It exists for the assembly debug entry point; the
	// interactive path must reject empty Topics before resolving instead.
	MatchAllTopics bool `json:"match_all_topics"`
}

// ErrNoCriteria is returned when a request carries neither topics nor the
// explicit match-all mode.
var ErrNoCriteria = errors.New("selection requires at least one topic (or explicit match-all mode)")

// Validate checks that the criteria are complete enough to resolve.
func (c Criteria) Validate() error {
	if len(c.Years) == 0 {
		return errors.New("selection requires at least one year")
	}
	if len(c.Seasons) == 0 {
		return errors.New("selection requires at least one season")
	}
	for _, s := range c.Seasons {
		if _, ok := SeasonCodes[s]; !ok {
			return fmt.Errorf("unknown season %q (expected one of %s)", s, strings.Join(SeasonNames, ", "))
		}
	}
	if len(c.Component) != 1 || c.Component[0] < '0' || c.Component[0] > '9' {
		return fmt.Errorf("component must be a single digit, got %q", c.Component)
	}
	if len(c.Topics) == 0 && !c.MatchAllTopics {
		return ErrNoCriteria
	}
	return nil
}

// seasonChars returns the set of folder season characters selected by the
// criteria.
func (c Criteria) seasonChars() map[string]struct{} {
	chars := make(map[string]struct{}, len(c.Seasons))
	for _, name := range c.Seasons {
		if code, ok := SeasonCodes[name]; ok {
			chars[code] = struct{}{}
		}
	}
	return chars
}

// matchesKey reports whether a scanned folder key satisfies the year,
// season and component filters.
func (c Criteria) matchesKey(key Key) bool {
	yearOK := false
	for _, y := range c.Years {
		if strings.HasSuffix(y, key.YearSuffix) {
			yearOK = true
			break
		}
	}
	if !yearOK {
		return false
	}
	if _, ok := c.seasonChars()[key.Season]; !ok {
		return false
	}
	return ComponentFirstDigit(key.Component) == c.Component
}

// Resolve filters the scanned question folders against the criteria,
// parses their PDF files, and produces the ordered Manifest. Empty results
// are ordinary outcomes: zero surviving folders or zero matching files both
// yield an empty manifest and a nil error.
func Resolve(folders []FolderEntry, criteria Criteria) (Manifest, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	selected := TokenSet(criteria.Topics)

	var manifest Manifest
	seen := make(map[string]struct{})

	for _, folder := range folders {
		if !criteria.matchesKey(folder.Key) {
			continue
		}
		entries, err := os.ReadDir(folder.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read question folder %s: %w", folder.Path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			qnum, tokens, ok := ParseQuestionFilename(stem)
			if !ok || len(tokens) == 0 {
				continue
			}
			if !criteria.MatchAllTopics && !intersects(tokens, selected) {
				continue
			}

			path := filepath.Join(folder.Path, entry.Name())
			canonical := canonicalPath(path)
			if _, dup := seen[canonical]; dup {
				continue
			}
			seen[canonical] = struct{}{}

			manifest = append(manifest, Record{
				Key:            folder.Key,
				QuestionNumber: qnum,
				SourcePath:     path,
				TopicTokens:    tokens,
			})
		}
	}

	sortManifest(manifest)
	return manifest, nil
}

// sortManifest applies the manifest ordering invariant: primary sort by
// (subject, season, year, component, question number), tie-broken by the
// source filename so the order is total and idempotent.
func sortManifest(m Manifest) {
	sort.SliceStable(m, func(i, j int) bool {
		a, b := m[i], m[j]
		if a.Key.Subject != b.Key.Subject {
			return a.Key.Subject < b.Key.Subject
		}
		if a.Key.Season != b.Key.Season {
			return a.Key.Season < b.Key.Season
		}
		if a.Key.YearSuffix != b.Key.YearSuffix {
			return a.Key.YearSuffix < b.Key.YearSuffix
		}
		if a.Key.Component != b.Key.Component {
			return a.Key.Component < b.Key.Component
		}
		if a.QuestionNumber != b.QuestionNumber {
			return a.QuestionNumber < b.QuestionNumber
		}
		return filepath.Base(a.SourcePath) < filepath.Base(b.SourcePath)
	})
}

// canonicalPath resolves a path for deduplication. The same physical file
// must not appear twice even when reachable through a symlinked folder.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}
