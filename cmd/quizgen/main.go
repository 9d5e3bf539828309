package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/examforge/quizgen/internal/assemble"
	"github.com/examforge/quizgen/internal/config"
	"github.com/examforge/quizgen/internal/logging"
	"github.com/examforge/quizgen/internal/mcp"
	"github.com/examforge/quizgen/internal/quiz"
	"github.com/examforge/quizgen/internal/taxonomy"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsDebug() {
		logger.Debug("starting with configuration", zap.String("config", cfg.String()))
	}

	table, err := loadTaxonomy(cfg)
	if err != nil {
		logger.Fatal("failed to load taxonomy", zap.Error(err))
	}

	backend := assemble.SelectBackend(cfg.Renumber || cfg.RenumberAnswers)
	service := quiz.NewService(cfg, backend, table, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsCLIMode() {
		runCLIMode(cfg, service, logger)
		return
	}
	runStdioMode(ctx, cfg, service, logger)
}

// loadTaxonomy returns the built-in topic table, or the YAML override when
// one is configured.
func loadTaxonomy(cfg *config.Config) (taxonomy.Table, error) {
	if cfg.TaxonomyFile == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(cfg.TaxonomyFile)
}

// runStdioMode serves MCP tools over standard I/O. The parent process
// controls the lifecycle; we exit when stdin closes.
func runStdioMode(ctx context.Context, cfg *config.Config, service *quiz.Service, logger *zap.Logger) {
	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		logger.Fatal("failed to create MCP server", zap.Error(err))
	}

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

// runCLIMode executes one generation request from the selection flags and
// prints a summary. This is the debug entry point for exercising the
// pipeline without an MCP client.
func runCLIMode(cfg *config.Config, service *quiz.Service, logger *zap.Logger) {
	result, err := service.Generate(quiz.GenerateRequest{
		Years:     cfg.Years,
		Seasons:   cfg.Seasons,
		Component: cfg.Component,
		Topics:    cfg.Topics,
		AllTopics: cfg.AllTopics,
		Shuffle:   cfg.Shuffle,
		Seed:      cfg.Seed,
	})
	if err != nil {
		logger.Fatal("generation failed", zap.Error(err))
	}

	if result.Outcome == quiz.OutcomeEmpty {
		fmt.Printf("No questions matched: %s\n", result.Message)
		return
	}

	fmt.Printf("Matched questions: %d\n", result.MatchedQuestions)
	fmt.Printf("Missing answers:   %d\n", result.MissingAnswers)
	fmt.Printf("Quiz packet:       %s (%d pages)\n", result.QuizPath, result.QuizPages)
	if result.AnswerPath != "" {
		fmt.Printf("Answer packet:     %s (%d pages)\n", result.AnswerPath, result.AnswerPages)
	} else {
		fmt.Println("Answer packet:     omitted (no answers bound)")
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Quizgen Practice Packet Generator\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
