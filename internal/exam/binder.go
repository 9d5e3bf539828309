package exam

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AttachAnswers looks up the answer folder for each manifest record and
// binds the first answer file whose embedded question number matches.
// Records with no answer folder or no matching file are returned in missing
// and left without an AnswerPath. Candidate files are tried in path-sorted
// order so binding is deterministic; the linear search is fine because a
// folder holds at most one exam paper's worth of files.
func AttachAnswers(manifest Manifest, index AnswerIndex) (Manifest, []Record, error) {
	var missing []Record
	cache := make(map[string][]string)

	for i := range manifest {
		rec := &manifest[i]
		folder, ok := index[rec.Key]
		if !ok {
			missing = append(missing, *rec)
			continue
		}

		files, cached := cache[folder]
		if !cached {
			var err error
			files, err = listPDFs(folder)
			if err != nil {
				return nil, nil, err
			}
			cache[folder] = files
		}

		found := ""
		for _, path := range files {
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if MatchesAnswerFilename(stem, rec.QuestionNumber) {
				found = path
				break
			}
		}
		if found == "" {
			missing = append(missing, *rec)
			continue
		}
		rec.AnswerPath = found
	}

	return manifest, missing, nil
}

// listPDFs returns the sorted PDF files immediately inside folder.
func listPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer folder %s: %w", folder, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(folder, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}
