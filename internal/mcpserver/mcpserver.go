// Package mcpserver exposes the render pipeline (ABC text to a positioned
// drawing.Sheet) as an MCP tool server over stdio, so an editor or agent can
// drive config->abcsym->music->layout without shelling out to the CLI.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/veeh-harfe/zupfnoter/internal/abcsym"
	"github.com/veeh-harfe/zupfnoter/internal/harperr"
	"github.com/veeh-harfe/zupfnoter/internal/layout"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// New builds the MCP server and registers every tool this package provides.
func New(name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))

	s.AddTool(
		mcp.NewTool("ping", mcp.WithDescription("Health check -- returns pong")),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	s.AddTool(renderHarpnoteTool(), renderHarpnoteHandler())
	return s
}

func renderHarpnoteTool() mcp.Tool {
	return mcp.NewTool("render_harpnote",
		mcp.WithDescription("Parse ABC notation and run it through the harpnote layout engine, returning a summary of the positioned sheet (note/rest/annotation counts, page width and height, and any parse/transform/layout warnings)."),
		mcp.WithString("abc",
			mcp.Description("ABC notation source text"),
			mcp.Required(),
		),
		mcp.WithString("voices",
			mcp.Description("Comma-separated voice indices to include, e.g. \"1,2\"; omit to render every voice in the tune"),
		),
		mcp.WithString("bottomup",
			mcp.Description("\"true\" to render beats increasing upward instead of downward"),
		),
	)
}

// renderResult is the summary render_harpnote returns, serialized as JSON
// text rather than Sheet's internal slices, so a caller doesn't need this
// module's types to make sense of the output.
type renderResult struct {
	CorrelationID string   `json:"correlation_id"`
	Notes         int      `json:"notes"`
	Rests         int      `json:"rests"`
	FlowLines     int      `json:"flow_lines"`
	Jumplines     int      `json:"jumplines"`
	Annotations   int      `json:"annotations"`
	PageWidth     float64  `json:"page_width"`
	PageHeight    float64  `json:"page_height"`
	Warnings      []string `json:"warnings,omitempty"`
}

func renderHarpnoteHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		abcText := req.GetString("abc", "")
		if abcText == "" {
			return toolError(fmt.Errorf("abc is required"))
		}

		adapter := abcsym.NewAdapter(nil)
		symVoices, parseErrs := adapter.Parse("mcp", abcText)

		song, transformErrs := music.NewTransformer(music.DefaultOptions()).Transform(symVoices)

		extract := layout.Extract{}
		if raw := req.GetString("voices", ""); raw != "" {
			for _, tok := range strings.Split(raw, ",") {
				tok = strings.TrimSpace(tok)
				if idx, err := strconv.Atoi(tok); err == nil {
					extract.Voices = append(extract.Voices, idx)
				}
			}
		}

		opts := layout.DefaultOptions()
		opts.BottomUp = req.GetString("bottomup", "false") == "true"

		sheet, layoutErrs := layout.Build(song, extract, opts)

		result := renderResult{
			CorrelationID: song.CorrelationID,
			PageWidth:     sheet.Width,
			PageHeight:    sheet.Height,
		}
		result.Rests = len(sheet.Glyphs)
		result.Notes = len(sheet.Ellipses)
		result.FlowLines = len(sheet.FlowLines)
		result.Annotations = len(sheet.Annotations)
		for _, v := range song.VoiceIndices() {
			result.Jumplines += len(song.Voices[v].Gotos)
		}

		for _, e := range harperr.Tag(song.CorrelationID, parseErrs) {
			result.Warnings = append(result.Warnings, e.Error())
		}
		for _, e := range transformErrs {
			result.Warnings = append(result.Warnings, e.Error())
		}
		for _, e := range harperr.Tag(song.CorrelationID, layoutErrs) {
			result.Warnings = append(result.Warnings, e.Error())
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// Serve blocks, serving the MCP protocol over stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
