// Package mcp serves the FAQ pipeline as a Model Context Protocol tool
// over stdio, so MCP clients can launch the binary as a subprocess and
// query the corpus.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"faqrag/internal/domain"
	"faqrag/internal/rag"
)

const (
	serverName    = "faq-rag"
	serverVersion = "1.0.0"
)

var errEmptyQuestion = errors.New("`question` is required and cannot be empty")

// Answerer is the slice of the core the MCP layer consumes.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (domain.AnswerResult, error)
}

// Server wraps the MCP SDK server around the question-answering core.
type Server struct {
	mcpServer   *mcp.Server
	core        Answerer
	defaultTopK int
}

// AskInput defines the input schema for the ask_faq tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"The natural language question to answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"Number of document chunks to retrieve (1-10, default 4)"`
}

// AskOutput defines the output schema for the ask_faq tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// NewServer creates an MCP server with the ask_faq tool registered.
// An out-of-range defaultTopK falls back to the core default.
func NewServer(core Answerer, defaultTopK int) (*Server, error) {
	if defaultTopK < rag.MinTopK || defaultTopK > rag.MaxTopK {
		defaultTopK = rag.DefaultTopK
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
		core:        core,
		defaultTopK: defaultTopK,
	}
	if err := s.registerAskFAQ(); err != nil {
		return nil, fmt.Errorf("register ask_faq: %w", err)
	}
	return s, nil
}

// Run serves MCP over the given transport until the context is cancelled.
// Callers pass &mcp.StdioTransport{} for subprocess use.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerAskFAQ() error {
	inputSchema, err := jsonschema.For[AskInput](nil)
	if err != nil {
		return fmt.Errorf("input schema: %w", err)
	}

	tool := &mcp.Tool{
		Name: "ask_faq",
		Description: "Answer a question using the FAQ knowledge base. " +
			"Retrieves relevant information from FAQ documents and generates " +
			"an answer with source citations.",
		InputSchema: inputSchema,
	}

	mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, req *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, AskOutput, error) {
		out, err := s.ask(ctx, in)
		switch {
		case err == nil:
		case errors.Is(err, errEmptyQuestion) || errors.Is(err, rag.ErrInvalidInput):
			// Caller mistake, not a system failure: report as a tool error.
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, AskOutput{Sources: []string{}}, nil
		default:
			return nil, AskOutput{}, err
		}

		text, err := json.Marshal(out)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("marshal result: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		}, out, nil
	})

	return nil
}

// ask validates the question, coerces top_k into range, and queries the
// core. Unlike the HTTP surface, an out-of-range top_k is not rejected
// here; assistants get the configured default instead.
func (s *Server) ask(ctx context.Context, in AskInput) (AskOutput, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return AskOutput{}, errEmptyQuestion
	}

	topK := in.TopK
	if topK < rag.MinTopK || topK > rag.MaxTopK {
		topK = s.defaultTopK
	}
	slog.Debug("ask_faq called", "top_k", topK)

	result, err := s.core.Answer(ctx, question, topK)
	if err != nil {
		return AskOutput{}, err
	}
	return AskOutput{Answer: result.Answer, Sources: result.Sources}, nil
}
