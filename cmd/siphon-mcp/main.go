package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the siphon API's POST /scrape body.
type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats,omitempty"`
}

// scrapeResponse mirrors the siphon API's scrape response envelope.
type scrapeResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title     string `json:"title"`
			SourceURL string `json:"sourceURL"`
		} `json:"metadata"`
	} `json:"data"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// searchRequest mirrors the siphon API's POST /search body.
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// searchResponse mirrors the siphon API's search response envelope.
type searchResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Web []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"web"`
	} `json:"data"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func main() {
	apiURL := os.Getenv("SIPHON_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SIPHON_API_KEY")

	s := server.NewMCPServer(
		"siphon",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Fetch a web page and return its main content as Markdown, with metadata."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to fetch"),
		),
	)
	s.AddTool(scrapeTool, handleScrape(apiURL, apiKey))

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Run a meta-search query and return matching result URLs with titles and snippets."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, handleSearch(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := apiPost(ctx, client, apiURL, apiKey, "/scrape", scrapeRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp scrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success || resp.Data == nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", resp.Error, resp.Detail)), nil
		}

		result := fmt.Sprintf("Title: %s\nSource: %s\n\n%s",
			resp.Data.Metadata.Title, resp.Data.Metadata.SourceURL, resp.Data.Markdown)
		return mcp.NewToolResultText(result), nil
	}
}

func handleSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		limit := 10
		if raw, ok := request.GetArguments()["limit"]; ok {
			if f, ok := raw.(float64); ok {
				limit = int(f)
			}
		}

		body, err := apiPost(ctx, client, apiURL, apiKey, "/search", searchRequest{Query: query, Limit: limit})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success || resp.Data == nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", resp.Error, resp.Detail)), nil
		}

		var out bytes.Buffer
		for i, r := range resp.Data.Web {
			fmt.Fprintf(&out, "%d. %s\n   %s\n   %s\n\n", i+1, r.Title, r.URL, r.Description)
		}
		return mcp.NewToolResultText(out.String()), nil
	}
}

func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
