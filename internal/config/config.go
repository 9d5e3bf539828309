package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/examforge/quizgen/internal/assemble"
)

const (
	// Mode constants
	ModeStdio = "stdio"
	ModeCLI   = "cli"

	// Default values
	DefaultSubject     = "9709"
	DefaultLogLevel    = "info"
	DefaultAnchor      = assemble.AnchorTopCenter
	DefaultFontSize    = 18
	DefaultMargin      = 24
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the quiz generator. Corpus and output
// roots are captured here once per process start; services snapshot them at
// construction so a generation request never observes a mid-run change.
type Config struct {
	// Mode is "stdio" (MCP tool server) or "cli" (one generation request).
	Mode string

	// Corpus roots
	QuestionDir string
	AnswerDir   string

	// Output roots, separate from the corpus
	QuizOutputDir   string
	AnswerOutputDir string

	// Taxonomy
	Subject      string
	TaxonomyFile string // optional YAML override of the built-in table

	// Overlay
	Renumber        bool
	RenumberAnswers bool
	Anchor          string
	LabelFontSize   int
	LabelMargin     int

	// Selection (cli mode)
	Years     []string
	Seasons   []string
	Component string
	Topics    []string
	AllTopics bool
	Shuffle   bool
	Seed      int64

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults, rooted in
// the conventional corpus layout under ./data.
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeStdio,
		QuestionDir:     filepath.Join("data", "output"),
		AnswerDir:       filepath.Join("data", "output_answers"),
		QuizOutputDir:   filepath.Join("data", "quiz"),
		AnswerOutputDir: filepath.Join("data", "quiz_answers"),
		Subject:         DefaultSubject,
		Renumber:        true,
		RenumberAnswers: false,
		Anchor:          DefaultAnchor,
		LabelFontSize:   DefaultFontSize,
		LabelMargin:     DefaultMargin,
		Version:         "1.0.0",
		ServerName:      "quizgen",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags, environment variables and an
// optional .env file, and returns a validated configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	// A .env file is a convenience for local corpora; absence is fine.
	_ = godotenv.Load()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	populateConfigFromViper(cfg)

	for _, dir := range []*string{&cfg.QuestionDir, &cfg.AnswerDir, &cfg.QuizOutputDir, &cfg.AnswerOutputDir} {
		if *dir != "" {
			if expanded, err := filepath.Abs(*dir); err == nil {
				*dir = expanded
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("QUIZGEN")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("questions", cfg.QuestionDir)
	viper.SetDefault("answers", cfg.AnswerDir)
	viper.SetDefault("quizdir", cfg.QuizOutputDir)
	viper.SetDefault("answerdir", cfg.AnswerOutputDir)
	viper.SetDefault("subject", cfg.Subject)
	viper.SetDefault("taxonomy", cfg.TaxonomyFile)
	viper.SetDefault("renumber", cfg.Renumber)
	viper.SetDefault("renumber-answers", cfg.RenumberAnswers)
	viper.SetDefault("anchor", cfg.Anchor)
	viper.SetDefault("fontsize", cfg.LabelFontSize)
	viper.SetDefault("margin", cfg.LabelMargin)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'stdio' for the MCP tool server, 'cli' for one generation request")
	pflag.String("questions", cfg.QuestionDir, "Root directory of per-paper question folders")
	pflag.String("answers", cfg.AnswerDir, "Root directory of per-paper answer folders")
	pflag.String("quizdir", cfg.QuizOutputDir, "Output directory for quiz packets")
	pflag.String("answerdir", cfg.AnswerOutputDir, "Output directory for answer packets")
	pflag.String("subject", cfg.Subject, "Subject code for taxonomy lookups")
	pflag.String("taxonomy", cfg.TaxonomyFile, "Optional YAML file replacing the built-in topic table")
	pflag.Bool("renumber", cfg.Renumber, "Overlay sequential question labels on the quiz packet")
	pflag.Bool("renumber-answers", cfg.RenumberAnswers, "Overlay sequential labels on the answer packet")
	pflag.String("anchor", cfg.Anchor, "Overlay anchor: tc, bc, tl, tr, bl or br")
	pflag.Int("fontsize", cfg.LabelFontSize, "Overlay label font size in points")
	pflag.Int("margin", cfg.LabelMargin, "Overlay distance from the page edge in points")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum source PDF size in bytes")

	// Selection flags, consumed in cli mode only.
	pflag.StringSlice("years", nil, "Selected 4-digit years (cli mode)")
	pflag.StringSlice("seasons", nil, "Selected seasons: Winter, Summer, Spring (cli mode)")
	pflag.String("component", "", "Selected paper-type digit (cli mode)")
	pflag.StringSlice("topics", nil, "Selected topic display names (cli mode)")
	pflag.Bool("all-topics", false, "Match every question regardless of topic (cli mode)")
	pflag.Bool("shuffle", false, "Shuffle output order (cli mode)")
	pflag.Int64("seed", 0, "Seed for the shuffle permutation (cli mode)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "questions", "answers", "quizdir", "answerdir",
		"subject", "taxonomy", "renumber", "renumber-answers",
		"anchor", "fontsize", "margin", "loglevel", "maxfilesize",
		"years", "seasons", "component", "topics", "all-topics", "shuffle", "seed",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.QuestionDir = viper.GetString("questions")
	cfg.AnswerDir = viper.GetString("answers")
	cfg.QuizOutputDir = viper.GetString("quizdir")
	cfg.AnswerOutputDir = viper.GetString("answerdir")
	cfg.Subject = viper.GetString("subject")
	cfg.TaxonomyFile = viper.GetString("taxonomy")
	cfg.Renumber = viper.GetBool("renumber")
	cfg.RenumberAnswers = viper.GetBool("renumber-answers")
	cfg.Anchor = viper.GetString("anchor")
	cfg.LabelFontSize = viper.GetInt("fontsize")
	cfg.LabelMargin = viper.GetInt("margin")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Years = viper.GetStringSlice("years")
	cfg.Seasons = viper.GetStringSlice("seasons")
	cfg.Component = viper.GetString("component")
	cfg.Topics = viper.GetStringSlice("topics")
	cfg.AllTopics = viper.GetBool("all-topics")
	cfg.Shuffle = viper.GetBool("shuffle")
	cfg.Seed = viper.GetInt64("seed")
}

// Validate checks if the configuration is valid and creates the output
// directories when missing. The corpus roots are inputs and may be absent;
// scanning an absent root yields an empty result, not an error.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeCLI {
		return errors.New("mode must be either 'stdio' or 'cli'")
	}

	if c.QuestionDir == "" {
		return errors.New("question directory cannot be empty")
	}
	if c.AnswerDir == "" {
		return errors.New("answer directory cannot be empty")
	}
	if c.QuizOutputDir == "" || c.AnswerOutputDir == "" {
		return errors.New("output directories cannot be empty")
	}

	for _, dir := range []string{c.QuizOutputDir, c.AnswerOutputDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create output directory %s: %w", dir, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access output directory %s: %w", dir, err)
		}
	}

	if !assemble.ValidAnchor(c.Anchor) {
		return fmt.Errorf("invalid anchor: %s (must be one of: tc, bc, tl, tr, bl, br)", c.Anchor)
	}
	if c.LabelFontSize <= 0 {
		return errors.New("label font size must be positive")
	}
	if c.LabelMargin < 0 {
		return errors.New("label margin cannot be negative")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsStdioMode returns true if the process serves MCP over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsCLIMode returns true if the process runs one generation request
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, QuestionDir: %s, AnswerDir: %s, QuizOutputDir: %s, AnswerOutputDir: %s, LogLevel: %s}",
		c.Mode, c.QuestionDir, c.AnswerDir, c.QuizOutputDir, c.AnswerOutputDir, c.LogLevel)
}
