package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with bless tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"bless",
		version,
		server.WithToolCapabilities(true),
	)

	// Register tools
	s.AddTool(
		mcp.NewTool("bless/validate",
			mcp.WithDescription("Validate a bless manifest file without running any cases"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .blessed.json manifest file")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("bless/status",
			mcp.WithDescription("List snapshot approval states for a repository"),
			mcp.WithString("dir", mcp.Description("Directory inside the repository (defaults to the working directory)")),
		),
		HandleStatus,
	)

	s.AddTool(
		mcp.NewTool("bless/diff",
			mcp.WithDescription("Show the difference between a snapshot's blessed baseline and its working copy"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Case name whose snapshot to diff")),
			mcp.WithString("dir", mcp.Description("Directory inside the repository (defaults to the working directory)")),
		),
		HandleDiff,
	)

	s.AddTool(
		mcp.NewTool("bless/approve",
			mcp.WithDescription("Bless snapshots by staging them as the new baseline"),
			mcp.WithString("name", mcp.Description("Case name to approve (omit to approve every snapshot)")),
			mcp.WithString("dir", mcp.Description("Directory inside the repository (defaults to the working directory)")),
		),
		HandleApprove,
	)

	s.AddTool(
		mcp.NewTool("bless/schema",
			mcp.WithDescription("Export the JSON Schema for bless manifest entries"),
		),
		HandleSchema,
	)

	return s
}
