package exam

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeCorpusFile creates an empty placeholder file; resolution only looks at
// names, never content.
func writeCorpusFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
}

func makeFolder(t *testing.T, root, name string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	for _, f := range files {
		writeCorpusFile(t, dir, f)
	}
}

func TestCriteriaValidate(t *testing.T) {
	valid := Criteria{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Trigonometry"},
	}

	tests := []struct {
		name      string
		mutate    func(c *Criteria)
		expectErr bool
	}{
		{"complete criteria", func(c *Criteria) {}, false},
		{"no years", func(c *Criteria) { c.Years = nil }, true},
		{"no seasons", func(c *Criteria) { c.Seasons = nil }, true},
		{"unknown season", func(c *Criteria) { c.Seasons = []string{"Autumn"} }, true},
		{"two-digit component", func(c *Criteria) { c.Component = "11" }, true},
		{"non-digit component", func(c *Criteria) { c.Component = "x" }, true},
		{"no topics", func(c *Criteria) { c.Topics = nil }, true},
		{"no topics but match-all", func(c *Criteria) { c.Topics = nil; c.MatchAllTopics = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectErr && err == nil {
				t.Errorf("expected validation error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveSelectsAndOrders(t *testing.T) {
	root := t.TempDir()
	makeFolder(t, root, "9709_w24_qp_11",
		"A_Q8_Coordinate_geometry.pdf",
		"A_Q2_Trigonometry.pdf",
		"A_Q5_Series.pdf",
		"cover.pdf", // no marker, skipped
	)
	makeFolder(t, root, "9709_w24_qp_12",
		"B_Q1_Coordinate_geometry.pdf",
	)
	makeFolder(t, root, "9709_s23_qp_11",
		"C_Q4_Trigonometry.pdf",
	)
	makeFolder(t, root, "9709_w24_qp_21", // wrong paper type
		"D_Q1_Trigonometry.pdf",
	)

	folders, err := ScanFolders(root, RoleQuestion)
	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}

	manifest, err := Resolve(folders, Criteria{
		Years:     []string{"2023", "2024"},
		Seasons:   []string{"Winter", "Summer"},
		Component: "1",
		Topics:    []string{"Coordinate geometry", "Trigonometry"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var got []string
	for _, rec := range manifest {
		got = append(got, fmt.Sprintf("%s/Q%d", rec.Key, rec.QuestionNumber))
	}
	want := []string{
		"9709_s23_11/Q4", // summer sorts before winter, year before component
		"9709_w24_11/Q2",
		"9709_w24_11/Q8",
		"9709_w24_12/Q1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("manifest order = %v, want %v", got, want)
	}
}

func TestResolveTokenUnionSemantics(t *testing.T) {
	root := t.TempDir()
	makeFolder(t, root, "9709_w24_qp_11",
		"A_Q1_geometry.pdf",           // shares "geometry" with the selection
		"A_Q2_Circular_geometry.pdf",  // shares "geometry"
		"A_Q3_Circular_measure.pdf",   // no shared token
		"A_Q4_Coordinate_systems.pdf", // shares "coordinate"
	)

	folders, err := ScanFolders(root, RoleQuestion)
	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}

	manifest, err := Resolve(folders, Criteria{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Coordinate geometry"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var numbers []int
	for _, rec := range manifest {
		numbers = append(numbers, rec.QuestionNumber)
	}
	if !reflect.DeepEqual(numbers, []int{1, 2, 4}) {
		t.Errorf("matched questions = %v, want [1 2 4]", numbers)
	}
}

func TestResolveMatchAllTopics(t *testing.T) {
	root := t.TempDir()
	makeFolder(t, root, "9709_w24_qp_11",
		"A_Q1_Series.pdf",
		"A_Q2_Functions.pdf",
	)

	folders, err := ScanFolders(root, RoleQuestion)
	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}

	manifest, err := Resolve(folders, Criteria{
		Years:          []string{"2024"},
		Seasons:        []string{"Winter"},
		Component:      "1",
		MatchAllTopics: true,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(manifest) != 2 {
		t.Errorf("match-all should select both questions, got %d", len(manifest))
	}
}

func TestResolveEmptyIsNotAnError(t *testing.T) {
	root := t.TempDir()
	makeFolder(t, root, "9709_w24_qp_11", "A_Q1_Series.pdf")

	folders, err := ScanFolders(root, RoleQuestion)
	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}

	manifest, err := Resolve(folders, Criteria{
		Years:     []string{"1999"}, // no matching year
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Series"},
	})
	if err != nil {
		t.Fatalf("empty result should not be an error: %v", err)
	}
	if len(manifest) != 0 {
		t.Errorf("expected empty manifest, got %d records", len(manifest))
	}
}

func TestResolveDeduplicatesSymlinkedFolders(t *testing.T) {
	root := t.TempDir()
	makeFolder(t, root, "9709_w24_qp_11", "A_Q1_Series.pdf")

	// A second folder that is a symlink to the first: same physical files.
	link := filepath.Join(root, "9709_w24_qp_12")
	if err := os.Symlink(filepath.Join(root, "9709_w24_qp_11"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	folders := []FolderEntry{
		{Path: filepath.Join(root, "9709_w24_qp_11"), Key: Key{Subject: "9709", Season: "w", YearSuffix: "24", Component: "11"}},
		{Path: link, Key: Key{Subject: "9709", Season: "w", YearSuffix: "24", Component: "12"}},
	}

	manifest, err := Resolve(folders, Criteria{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Series"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(manifest) != 1 {
		t.Errorf("symlinked duplicate should be dropped, got %d records", len(manifest))
	}
}

func TestResolveOrderIdempotent(t *testing.T) {
	root := t.TempDir()
	makeFolder(t, root, "9709_w24_qp_11",
		"A_Q3_Series.pdf",
		"A_Q1_Series.pdf",
		"A_Q2_Series.pdf",
	)

	folders, err := ScanFolders(root, RoleQuestion)
	if err != nil {
		t.Fatalf("ScanFolders failed: %v", err)
	}

	criteria := Criteria{
		Years:     []string{"2024"},
		Seasons:   []string{"Winter"},
		Component: "1",
		Topics:    []string{"Series"},
	}

	first, err := Resolve(folders, criteria)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := Resolve(folders, criteria)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two resolutions of the same input differ")
	}
}
