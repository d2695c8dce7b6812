package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/advisory"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/translation"
	"github.com/matiasleandrokruk/bookcompanion/internal/version"
)

// MCPTranslator translates a batch of texts. translation.Service satisfies it.
type MCPTranslator interface {
	Translate(ctx context.Context, req translation.Request) (*translation.Response, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Translator MCPTranslator
	Driver     *translation.Driver
}

// NewMCPServer exposes the advisory engine and the translation pipeline as
// MCP tools so editor assistants can preview chapter advice and translations.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		version.Name,
		version.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions("bookcompanion: personalized chapter advice and chapter translation for the robotics book."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("advise_chapter",
			mcp.WithDescription("Compute the tips, exercises and resources shown above a chapter for a learner background."),
			mcp.WithString("topic", mcp.Description("Chapter topic or title"), mcp.Required()),
			mcp.WithString("profile", mcp.Description("Learner background as a JSON object (camelCase fields); omit for a blank profile")),
		),
		mcpAdviseChapter(),
	)

	s.AddTool(
		mcp.NewTool("translate_texts",
			mcp.WithDescription("Translate a list of texts, returning one translation per text in the same order."),
			mcp.WithArray("texts", mcp.Description("Texts to translate"), mcp.Required()),
			mcp.WithString("target_language", mcp.Description("Target language (default ur)")),
		),
		mcpTranslateTexts(deps),
	)

	s.AddTool(
		mcp.NewTool("translate_chapter",
			mcp.WithDescription("Translate the readable text of a chapter HTML document. Code blocks are left untouched."),
			mcp.WithString("html", mcp.Description("Chapter HTML"), mcp.Required()),
			mcp.WithString("selector", mcp.Description("Content root selector (default .markdown)")),
			mcp.WithString("target_language", mcp.Description("Target language (default urdu)")),
		),
		mcpTranslateChapter(deps),
	)

	return s
}

func mcpAdviseChapter() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, err := req.RequireString("topic")
		if err != nil {
			return mcpError("topic is required"), nil
		}

		var bg profile.Background
		if raw := strings.TrimSpace(req.GetString("profile", "")); raw != "" {
			if err := json.Unmarshal([]byte(raw), &bg); err != nil {
				return mcpError(fmt.Sprintf("invalid profile JSON: %v", err)), nil
			}
			if err := bg.Validate(); err != nil {
				return mcpError(err.Error()), nil
			}
		}

		out, err := json.MarshalIndent(struct {
			advisory.Bundle
			BasedOn advisory.Summary `json:"basedOn"`
		}{advisory.Advise(&bg, topic), advisory.Summarize(&bg)}, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal advice: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpTranslateTexts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Translator == nil {
			return mcpError("translation is not configured"), nil
		}
		texts := req.GetStringSlice("texts", nil)
		if texts == nil {
			return mcpError("texts must be an array"), nil
		}

		resp, err := deps.Translator.Translate(ctx, translation.Request{
			Texts:          texts,
			TargetLanguage: req.GetString("target_language", ""),
		})
		if err != nil {
			if errors.Is(err, translation.ErrServiceUnavailable) {
				return mcpError(translation.FallbackMessage), nil
			}
			return mcpError(fmt.Sprintf("translation failed: %v", err)), nil
		}

		out, err := json.Marshal(resp.Translations)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal translations: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpTranslateChapter(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Driver == nil {
			return mcpError("translation is not configured"), nil
		}
		html, err := req.RequireString("html")
		if err != nil {
			return mcpError("html is required"), nil
		}

		res, err := translation.TranslateChapter(ctx, deps.Driver, translation.ChapterRequest{
			HTML:           html,
			Selector:       req.GetString("selector", ""),
			TargetLanguage: req.GetString("target_language", ""),
		})
		if err != nil {
			return mcpError(err.Error()), nil
		}
		if res.Error != "" {
			return mcpError(fmt.Sprintf("%s (state %s, %d of %d batches applied)",
				res.Error, res.State, res.Progress.AppliedBatches, res.Progress.Batches)), nil
		}
		return mcpText(res.HTML), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
