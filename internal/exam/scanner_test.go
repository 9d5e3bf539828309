package exam

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanFolders(t *testing.T) {
	root := t.TempDir()

	for _, dir := range []string{
		"9709_w24_qp_11",
		"9709_s23_qp_12",
		"9709_w24_ms_11", // wrong role, skipped
		"notes",          // unparseable, skipped
	} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	// A stray file whose name would parse must still be skipped.
	if err := os.WriteFile(filepath.Join(root, "9709_w22_qp_11"), []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to create stray file: %v", err)
	}

	folders, err := ScanFolders(root, RoleQuestion)
	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}

	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d: %+v", len(folders), folders)
	}
	// Path-sorted order.
	if folders[0].Key.String() != "9709_s23_12" {
		t.Errorf("first folder = %s, want 9709_s23_12", folders[0].Key.String())
	}
	if folders[1].Key.String() != "9709_w24_11" {
		t.Errorf("second folder = %s, want 9709_w24_11", folders[1].Key.String())
	}
}

func TestScanFoldersMissingRoot(t *testing.T) {
	folders, err := ScanFolders(filepath.Join(t.TempDir(), "does-not-exist"), RoleQuestion)
	if err != nil {
		t.Fatalf("missing root should not error, got: %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("missing root should yield no folders, got %d", len(folders))
	}
}

func TestBuildAnswerIndex(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"9709_w24_ms_11", "9709_s23_ms_12"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	index, duplicates, err := BuildAnswerIndex(root)
	if err != nil {
		t.Fatalf("BuildAnswerIndex failed: %v", err)
	}
	if len(duplicates) != 0 {
		t.Errorf("unexpected duplicates: %v", duplicates)
	}
	if len(index) != 2 {
		t.Fatalf("expected 2 indexed folders, got %d", len(index))
	}

	key := Key{Subject: "9709", Season: "w", YearSuffix: "24", Component: "11"}
	if got := index[key]; got != filepath.Join(root, "9709_w24_ms_11") {
		t.Errorf("index[%s] = %s", key, got)
	}
}

func TestBuildAnswerIndexDuplicateKeys(t *testing.T) {
	root := t.TempDir()
	// Same key in different letter case: both parse to the identical Key.
	for _, dir := range []string{"9709_W24_MS_11", "9709_w24_ms_11"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	index, duplicates, err := BuildAnswerIndex(root)
	if err != nil {
		t.Fatalf("BuildAnswerIndex failed: %v", err)
	}
	if len(index) != 1 {
		t.Fatalf("expected 1 indexed folder, got %d", len(index))
	}
	if len(duplicates) != 1 {
		t.Fatalf("expected 1 duplicate diagnostic, got %d", len(duplicates))
	}

	// Last-seen folder wins: path sort puts the lowercase name second.
	key := Key{Subject: "9709", Season: "w", YearSuffix: "24", Component: "11"}
	if got := index[key]; got != filepath.Join(root, "9709_w24_ms_11") {
		t.Errorf("expected last-seen folder to win, got %s", got)
	}
}
