package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/examforge/quizgen/internal/config"
)

func TestPrintVersion(t *testing.T) {
	originalStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version = "1.2.3"
	buildTime = "2026-08-24_10:30:00"
	gitCommit = "abc123"

	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
		os.Stdout = originalStdout
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printVersion()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done

	output := buf.String()
	for _, expected := range []string{
		"Quizgen Practice Packet Generator",
		"Version: 1.2.3",
		"Build Time: 2026-08-24_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing %q:\n%s", expected, output)
		}
	}
}

func TestVersionFlagDetection(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		hasVersion bool
	}{
		{"no version flag", []string{"program"}, false},
		{"-version flag", []string{"program", "-version"}, true},
		{"--version flag", []string{"program", "--version"}, true},
		{"-v flag", []string{"program", "-v"}, true},
		{"version flag among others", []string{"program", "--mode=cli", "-version"}, true},
		{"similar but not version flag", []string{"program", "-verbose", "-versions"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := false
			for _, arg := range tt.args[1:] {
				if arg == "-version" || arg == "--version" || arg == "-v" {
					found = true
					break
				}
			}
			if found != tt.hasVersion {
				t.Errorf("version flag detection for %v: got %v, want %v", tt.args, found, tt.hasVersion)
			}
		})
	}
}

func TestLoadTaxonomy(t *testing.T) {
	t.Run("built-in table", func(t *testing.T) {
		cfg := config.DefaultConfig()
		table, err := loadTaxonomy(cfg)
		if err != nil {
			t.Fatalf("loadTaxonomy failed: %v", err)
		}
		if len(table.Topics(cfg.Subject, "1")) == 0 {
			t.Errorf("built-in table has no topics for subject %s component 1", cfg.Subject)
		}
	})

	t.Run("yaml override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taxonomy.yaml")
		content := `
"0580":
  name: IGCSE Mathematics
  components:
    "1":
      title: Core Paper
      topics:
        - id: number
          name: Number
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write taxonomy: %v", err)
		}

		cfg := config.DefaultConfig()
		cfg.TaxonomyFile = path
		table, err := loadTaxonomy(cfg)
		if err != nil {
			t.Fatalf("loadTaxonomy failed: %v", err)
		}
		if len(table.Topics("0580", "1")) != 1 {
			t.Errorf("override table not loaded: %v", table)
		}
	})

	t.Run("missing override file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.TaxonomyFile = filepath.Join(t.TempDir(), "missing.yaml")
		if _, err := loadTaxonomy(cfg); err == nil {
			t.Errorf("expected error for missing taxonomy file")
		}
	})
}
