package mcp

import (
	"context"
	"fmt"
	"os"

	"epubfix/internal/core"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "epubfix"
	serverVersion = "0.1.0"
)

// Server wraps the MCP server with epubfix-specific state.
type Server struct {
	mcp *server.MCPServer
	cfg *core.Config
}

// NewServer creates and configures the MCP server with all epubfix tools registered.
func NewServer() (*Server, error) {
	// Load configuration
	dataDir, err := core.DataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	cfg, err := core.LoadConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s := &Server{
		cfg: cfg,
	}

	// Create MCP server
	s.mcp = server.NewMCPServer(serverName, serverVersion)

	// Register all tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// registerTools registers all epubfix MCP tools.
func (s *Server) registerTools() error {
	// epubfix_repair
	s.mcp.AddTool(mcp.NewTool("epubfix_repair",
		mcp.WithDescription("Rebuilds every .epub file or extracted .epub directory in a directory so the mimetype entry is first and stored uncompressed"),
		mcp.WithString("input_dir",
			mcp.Required(),
			mcp.Description("Directory containing .epub files or extracted .epub directories")),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Directory to write repaired copies to (created if absent)")),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace existing files in the output directory (default: false)")),
	), s.handleRepair)

	// epubfix_scan
	s.mcp.AddTool(mcp.NewTool("epubfix_scan",
		mcp.WithDescription("Reports which EPUBs in a directory need repair, without writing anything"),
		mcp.WithString("input_dir",
			mcp.Required(),
			mcp.Description("Directory containing .epub files or extracted .epub directories")),
	), s.handleScan)

	// epubfix_unpack
	s.mcp.AddTool(mcp.NewTool("epubfix_unpack",
		mcp.WithDescription("Extracts an EPUB archive into a directory for editing"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path to the .epub file")),
		mcp.WithString("dest",
			mcp.Required(),
			mcp.Description("Destination directory for the extracted tree")),
		mcp.WithBoolean("force",
			mcp.Description("Extract into a non-empty destination (default: false)")),
	), s.handleUnpack)

	return nil
}

// Serve starts the MCP server on stdio transport.
func (s *Server) Serve() error {
	stdioServer := server.NewStdioServer(s.mcp)
	ctx := context.Background()
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("failed to serve MCP: %w", err)
	}
	return nil
}

// Serve creates a new MCP server and starts serving on stdio.
func Serve() error {
	srv, err := NewServer()
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Serve(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
