// Package mcp exposes the nexus fact store as a Model Context Protocol
// server over stdio, so external MCP clients can read and write the same
// long-term memory the companion uses.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/repository"
	"github.com/aztralwrld/eve/pkg/usecase/companion"
)

type Server struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Server {
	return &Server{repo: repo}
}

type recallParams struct {
	Category string `json:"category,omitempty" jsonschema:"Optional category filter: Preference, Rule, Secret or Fact"`
}

type storeParams struct {
	Content  string `json:"content" jsonschema:"The fact to remember about the user"`
	Category string `json:"category,omitempty" jsonschema:"Preference, Rule, Secret or Fact (defaults to Fact)"`
}

type forgetParams struct {
	ID string `json:"id" jsonschema:"The ID of the fact to forget, as returned by nexus_recall"`
}

// Run serves until the client disconnects or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "eve-nexus",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nexus_recall",
		Description: "List the long-term facts stored about the user, optionally filtered by category",
	}, s.recall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nexus_store",
		Description: "Store a new long-term fact about the user",
	}, s.store)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "nexus_forget",
		Description: "Delete one stored fact by ID",
	}, s.forget)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server terminated")
	}
	return nil
}

func (s *Server) recall(ctx context.Context, req *mcp.CallToolRequest, params *recallParams) (*mcp.CallToolResult, any, error) {
	entries, err := s.repo.ListNexusEntries(ctx)
	if err != nil {
		return nil, nil, err
	}

	var lines []string
	for _, entry := range entries {
		if params.Category != "" && !strings.EqualFold(params.Category, string(entry.Category)) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s [%s] %s", entry.ID, entry.Category, entry.Content))
	}

	text := fmt.Sprintf("%d facts:\n%s", len(lines), strings.Join(lines, "\n"))
	if len(lines) == 0 {
		text = "No facts stored."
	}

	return textResult(text), nil, nil
}

func (s *Server) store(ctx context.Context, req *mcp.CallToolRequest, params *storeParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Content) == "" {
		return nil, nil, goerr.New("content is required")
	}

	entry, inserted, err := companion.StoreFact(ctx, s.repo, model.NexusCandidate{
		Content:  params.Content,
		Category: model.NexusCategory(params.Category),
	})
	if err != nil {
		return nil, nil, err
	}

	if !inserted {
		return textResult(fmt.Sprintf("Already stored as %s [%s]", entry.ID, entry.Category)), nil, nil
	}
	return textResult(fmt.Sprintf("Stored %s [%s]", entry.ID, entry.Category)), nil, nil
}

func (s *Server) forget(ctx context.Context, req *mcp.CallToolRequest, params *forgetParams) (*mcp.CallToolResult, any, error) {
	if params.ID == "" {
		return nil, nil, goerr.New("id is required")
	}

	if err := s.repo.DeleteNexusEntry(ctx, model.NexusEntryID(params.ID)); err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Forgot %s", params.ID)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
