package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/SonOfLilit/bless/pkg/approval"
	"github.com/SonOfLilit/bless/pkg/config"
	"github.com/SonOfLilit/bless/pkg/gitindex"
	"github.com/SonOfLilit/bless/pkg/manifest"
	"github.com/SonOfLilit/bless/pkg/report"
	"github.com/SonOfLilit/bless/pkg/snapshot"
)

// HandleValidate implements the bless/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	m, err := manifest.LoadFile(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("✓ %s is valid (%d cases)", filepath.Base(path), len(m.Cases))), nil
}

// HandleStatus implements the bless/status MCP tool.
func HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, repo, err := openStore(req)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	entries, err := approval.List(store, repo)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	response := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		response = append(response, map[string]any{
			"name":  e.Name,
			"state": string(e.State),
			"path":  e.Path,
		})
	}
	data, _ := json.MarshalIndent(response, "", "  ")
	return textResult(string(data)), nil
}

// HandleDiff implements the bless/diff MCP tool.
func HandleDiff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return errorResult("name argument is required"), nil
	}

	store, _, err := openStore(req)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	working, ok, err := store.ReadWorking(name)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if !ok {
		return errorResult(fmt.Sprintf("no working snapshot for %s", name)), nil
	}
	baseline, ok, err := store.ReadBaseline(name)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if !ok {
		return textResult(fmt.Sprintf("%s has no blessed baseline; working copy:\n%s", name, working)), nil
	}
	if string(baseline) == string(working) {
		return textResult(fmt.Sprintf("%s matches its blessed baseline", name)), nil
	}
	return textResult(report.RenderDiff(baseline, working, false)), nil
}

// HandleApprove implements the bless/approve MCP tool.
func HandleApprove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)

	store, repo, err := openStore(req)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	var names []string
	if name != "" {
		names = append(names, name)
	}
	approved, err := approval.Approve(store, repo, names...)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if len(approved) == 0 {
		return textResult("nothing to approve"), nil
	}
	data, _ := json.MarshalIndent(approved, "", "  ")
	return textResult(fmt.Sprintf("approved %d snapshot(s):\n%s", len(approved), data)), nil
}

// HandleSchema implements the bless/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := manifest.JSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// openStore resolves the repository and snapshot store for a request's
// optional dir argument.
func openStore(req mcp.CallToolRequest) (*snapshot.Store, *gitindex.Repo, error) {
	dir, _ := req.GetArguments()["dir"].(string)
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	repo, err := gitindex.Discover(dir)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFromRoot(repo.Root())
	if err != nil {
		return nil, nil, err
	}
	store := &snapshot.Store{
		Dir:      filepath.Join(repo.Root(), cfg.SnapshotDir),
		Baseline: repo,
	}
	return store, repo, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
