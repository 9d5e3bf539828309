package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/examforge/quizgen/internal/config"
	"github.com/examforge/quizgen/internal/quiz"
)

// Server exposes the quiz pipeline as MCP tools. It replaces the corpus
// tooling's interactive selection form: a client collects years, seasons,
// component and topics and calls quiz_generate.
type Server struct {
	config      *config.Config
	quizService *quiz.Service
	mcpServer   *server.MCPServer
	logger      *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, quizService *quiz.Service, logger *zap.Logger) (*Server, error) {
	if quizService == nil {
		return nil, fmt.Errorf("quizService cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		quizService: quizService,
		mcpServer:   mcpServer,
		logger:      logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	generateTool := mcp.NewTool(
		"quiz_generate",
		mcp.WithDescription("Assemble a quiz packet and matching answer packet from the corpus"),
		mcp.WithString("years",
			mcp.Required(),
			mcp.Description("Comma-separated 4-digit years, e.g. '2023,2024'"),
		),
		mcp.WithString("seasons",
			mcp.Required(),
			mcp.Description("Comma-separated seasons: Winter, Summer, Spring"),
		),
		mcp.WithString("component",
			mcp.Required(),
			mcp.Description("Single paper-type digit, e.g. '1'"),
		),
		mcp.WithString("topics",
			mcp.Required(),
			mcp.Description("Comma-separated topic display names"),
		),
		mcp.WithString("shuffle",
			mcp.Description("Set to 'true' to shuffle output order"),
		),
		mcp.WithString("seed",
			mcp.Description("Integer seed for the shuffle permutation"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleQuizGenerate)

	previewTool := mcp.NewTool(
		"quiz_preview",
		mcp.WithDescription("Resolve a selection without assembling output, listing the matched questions"),
		mcp.WithString("years",
			mcp.Required(),
			mcp.Description("Comma-separated 4-digit years"),
		),
		mcp.WithString("seasons",
			mcp.Required(),
			mcp.Description("Comma-separated seasons: Winter, Summer, Spring"),
		),
		mcp.WithString("component",
			mcp.Required(),
			mcp.Description("Single paper-type digit"),
		),
		mcp.WithString("topics",
			mcp.Required(),
			mcp.Description("Comma-separated topic display names"),
		),
	)
	s.mcpServer.AddTool(previewTool, s.handleQuizPreview)

	scanTool := mcp.NewTool(
		"corpus_scan",
		mcp.WithDescription("Inventory the question and answer corpus roots"),
	)
	s.mcpServer.AddTool(scanTool, s.handleCorpusScan)

	topicsTool := mcp.NewTool(
		"topics_list",
		mcp.WithDescription("List the topic names available for a paper-type component"),
		mcp.WithString("component",
			mcp.Required(),
			mcp.Description("Single paper-type digit, e.g. '1'"),
		),
	)
	s.mcpServer.AddTool(topicsTool, s.handleTopicsList)

	infoTool := mcp.NewTool(
		"quiz_server_info",
		mcp.WithDescription("Get server information, configured directories and usage guidance"),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions

func (s *Server) handleQuizGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := selectionFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	genReq := quiz.GenerateRequest{
		Years:     req.years,
		Seasons:   req.seasons,
		Component: req.component,
		Topics:    req.topics,
	}
	if v, ok := args["shuffle"].(string); ok && strings.EqualFold(v, "true") {
		genReq.Shuffle = true
	}
	if v, ok := args["seed"].(string); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid seed: %s", v)), nil
		}
		genReq.Seed = seed
	}

	result, err := s.quizService.Generate(genReq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatGenerateResult(result)), nil
}

func (s *Server) handleQuizPreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := selectionFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.quizService.Preview(quiz.PreviewRequest{
		Years:     req.years,
		Seasons:   req.seasons,
		Component: req.component,
		Topics:    req.topics,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPreviewResult(result)), nil
}

func (s *Server) handleCorpusScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.quizService.ScanCorpus()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatScanResult(result)), nil
}

func (s *Server) handleTopicsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, err := request.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	topics := s.quizService.Topics(component)
	if len(topics) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No topics known for subject %s component %s", s.quizService.Subject(), component)), nil
	}

	text := fmt.Sprintf("Topics for subject %s component %s:\n", s.quizService.Subject(), component)
	for i, topic := range topics {
		text += fmt.Sprintf("%d. %s\n", i+1, topic.Name)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Practice Packet Generator\n\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Question corpus: %s\n", s.config.QuestionDir)
	text += fmt.Sprintf("Answer corpus:   %s\n", s.config.AnswerDir)
	text += fmt.Sprintf("Quiz output:     %s\n", s.config.QuizOutputDir)
	text += fmt.Sprintf("Answer output:   %s\n", s.config.AnswerOutputDir)
	text += fmt.Sprintf("Subject:         %s\n\n", s.config.Subject)

	text += "Components:\n"
	for _, comp := range s.quizService.Components() {
		text += fmt.Sprintf("  %s - %s\n", comp.Component, comp.Title)
	}

	text += `
Usage:
1. Call 'topics_list' with a component digit to see selectable topics.
2. Call 'corpus_scan' to confirm the corpus roots contain parseable folders
   (question folders look like 9709_w24_qp_11, answers like 9709_w24_ms_11).
3. Call 'quiz_preview' with years/seasons/component/topics to see which
   questions a selection would pick and how many answers would bind.
4. Call 'quiz_generate' to assemble the quiz packet and, when answers bind,
   the matching answer packet. Pass shuffle=true with a seed for a
   reproducible shuffled order.

Topic matching is by shared word token: 'Coordinate geometry' also matches
files tagged only 'geometry'. Preview before generating if in doubt.`

	return mcp.NewToolResultText(text), nil
}

// selection carries the four common tool arguments.
type selection struct {
	years     []string
	seasons   []string
	component string
	topics    []string
}

func selectionFromRequest(request mcp.CallToolRequest) (*selection, error) {
	years, err := request.RequireString("years")
	if err != nil {
		return nil, err
	}
	seasons, err := request.RequireString("seasons")
	if err != nil {
		return nil, err
	}
	component, err := request.RequireString("component")
	if err != nil {
		return nil, err
	}
	topics, err := request.RequireString("topics")
	if err != nil {
		return nil, err
	}
	return &selection{
		years:     splitList(years),
		seasons:   splitList(seasons),
		component: strings.TrimSpace(component),
		topics:    splitList(topics),
	}, nil
}

// splitList parses a comma-separated tool argument, dropping empty segments.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Formatting methods

func (s *Server) formatGenerateResult(result *quiz.GenerateResult) string {
	if result.Outcome == quiz.OutcomeEmpty {
		return fmt.Sprintf("No questions matched the selection.\nReason: %s", result.Message)
	}

	text := "Quiz packet generated\n"
	text += fmt.Sprintf("Matched questions: %d\n", result.MatchedQuestions)
	text += fmt.Sprintf("Missing answers:   %d\n", result.MissingAnswers)
	text += fmt.Sprintf("Quiz: %s (%d pages)\n", result.QuizPath, result.QuizPages)
	if result.AnswerPath != "" {
		text += fmt.Sprintf("Answers: %s (%d pages)\n", result.AnswerPath, result.AnswerPages)
	} else {
		text += "Answers: none bound; answer packet omitted\n"
	}
	return text
}

func (s *Server) formatPreviewResult(result *quiz.PreviewResult) string {
	if result.Outcome == quiz.OutcomeEmpty {
		return fmt.Sprintf("No questions matched the selection.\nReason: %s", result.Message)
	}

	text := fmt.Sprintf("Selection matches %d question(s), %d without answers\n\n",
		len(result.Entries), result.MissingAnswers)
	for i, entry := range result.Entries {
		text += fmt.Sprintf("%d. %s Q%d", i+1, entry.Paper, entry.QuestionNumber)
		if !entry.HasAnswer {
			text += " (no answer)"
		}
		text += "\n"
	}
	return text
}

func (s *Server) formatScanResult(result *quiz.ScanResult) string {
	text := "Corpus inventory\n"
	text += fmt.Sprintf("Question root: %s (%d folders)\n", result.QuestionRoot, len(result.QuestionFolders))
	text += fmt.Sprintf("Answer root:   %s (%d folders)\n", result.AnswerRoot, result.AnswerFolders)

	if len(result.QuestionFolders) > 0 {
		text += "\nQuestion folders:\n"
		for i, folder := range result.QuestionFolders {
			text += fmt.Sprintf("%d. %s\n", i+1, folder.Key.String())
		}
	}
	if len(result.DuplicateAnswerKeys) > 0 {
		text += "\nWARNING: duplicate answer folder keys (last-seen folder wins):\n"
		for _, key := range result.DuplicateAnswerKeys {
			text += fmt.Sprintf("  %s\n", key)
		}
	}
	return text
}

// Run starts the MCP server over standard I/O.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Debug("starting quiz MCP server in stdio mode",
		zap.String("question_root", s.config.QuestionDir),
		zap.String("answer_root", s.config.AnswerDir))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
