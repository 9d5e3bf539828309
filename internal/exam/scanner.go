package exam

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FolderEntry is one corpus folder whose name parsed successfully.
type FolderEntry struct {
	Path string `json:"path"`
	Key  Key    `json:"key"`
}

// ScanFolders enumerates the immediate subdirectories of root whose names
// match the naming convention for the given role. Non-directory entries and
// unparseable names are skipped silently; the corpus is expected to contain
// unrelated files. A missing root yields an empty result, not an error.
func ScanFolders(root string, role Role) ([]FolderEntry, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan corpus root %s: %w", root, err)
	}

	var out []FolderEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key, ok := ParseFolderName(entry.Name(), role)
		if !ok {
			continue
		}
		out = append(out, FolderEntry{
			Path: filepath.Join(root, entry.Name()),
			Key:  key,
		})
	}

	// ReadDir returns entries sorted by name already; keep the guarantee
	// explicit so downstream ordering never depends on the filesystem.
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// AnswerIndex maps exam keys to the answer folder holding their mark-scheme
// documents.
type AnswerIndex map[Key]string

// BuildAnswerIndex scans the answer root and indexes folders by key.
// Colliding keys are a corpus-authoring defect: the last-seen folder wins,
// matching the original corpus tooling, and the duplicate keys are returned
// so the caller can surface a diagnostic.
func BuildAnswerIndex(root string) (AnswerIndex, []Key, error) {
	folders, err := ScanFolders(root, RoleAnswer)
	if err != nil {
		return nil, nil, err
	}

	index := make(AnswerIndex, len(folders))
	var duplicates []Key
	for _, f := range folders {
		if _, seen := index[f.Key]; seen {
			duplicates = append(duplicates, f.Key)
		}
		index[f.Key] = f.Path
	}
	return index, duplicates, nil
}
