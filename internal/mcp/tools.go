package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"epubfix/internal/core"
	"epubfix/internal/errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleRepair implements epubfix_repair: batch-rebuilds a directory of EPUBs.
func (s *Server) handleRepair(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract parameters
	inputDir, err := request.RequireString("input_dir")
	if err != nil {
		return errorResult("INVALID_PARAMS", "input_dir is required"), nil
	}
	outputDir, err := request.RequireString("output_dir")
	if err != nil {
		return errorResult("INVALID_PARAMS", "output_dir is required"), nil
	}
	overwrite := request.GetBool("overwrite", false)

	summary, err := core.Run(inputDir, outputDir, overwrite, s.cfg)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	return jsonResult(summary), nil
}

// handleScan implements epubfix_scan: inspects every input without writing.
func (s *Server) handleScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract parameters
	inputDir, err := request.RequireString("input_dir")
	if err != nil {
		return errorResult("INVALID_PARAMS", "input_dir is required"), nil
	}

	inputs, err := core.Discover(inputDir)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	reports := make([]map[string]interface{}, 0, len(inputs))
	for _, in := range inputs {
		report, err := core.Inspect(in, s.cfg.ToSecurityLimits())
		if err != nil {
			reports = append(reports, map[string]interface{}{
				"input": in.Path,
				"error": err.Error(),
			})
			continue
		}
		reports = append(reports, map[string]interface{}{
			"input":  in.Path,
			"report": report,
		})
	}

	response := map[string]interface{}{
		"input_dir": inputDir,
		"reports":   reports,
	}

	return jsonResult(response), nil
}

// handleUnpack implements epubfix_unpack: extracts an EPUB into a directory.
func (s *Server) handleUnpack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract parameters
	path, err := request.RequireString("path")
	if err != nil {
		return errorResult("INVALID_PARAMS", "path is required"), nil
	}
	dest, err := request.RequireString("dest")
	if err != nil {
		return errorResult("INVALID_PARAMS", "dest is required"), nil
	}
	force := request.GetBool("force", false)

	// There is no interactive confirmation over MCP, so a non-empty
	// destination is an error unless force is set.
	if !force {
		if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
			return errorResult("DESTINATION_NOT_EMPTY",
				fmt.Sprintf("destination %q is not empty (set force to extract anyway)", dest)), nil
		}
	}

	fileCount, totalSize, err := core.Unpack(path, dest, s.cfg.ToSecurityLimits())
	if err != nil {
		return mcpErrorResult(err), nil
	}

	response := map[string]interface{}{
		"input":      path,
		"dest":       dest,
		"file_count": fileCount,
		"size_bytes": totalSize,
	}

	return jsonResult(response), nil
}

// mcpErrorResult converts an epubfix error into an MCP error result.
func mcpErrorResult(err error) *mcp.CallToolResult {
	code := errors.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	return errorResult(code, err.Error())
}

// errorResult creates an MCP error result.
func errorResult(code, message string) *mcp.CallToolResult {
	errorData := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}

	jsonBytes, err := json.Marshal(errorData)
	if err != nil {
		// Fallback to simple text
		return mcp.NewToolResultText(fmt.Sprintf("Error: %s - %s", code, message))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}

// jsonResult creates an MCP success result from a JSON-serializable object.
func jsonResult(data interface{}) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return errorResult("INTERNAL_ERROR", fmt.Sprintf("failed to marshal response: %s", err))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}
