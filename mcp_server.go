package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StartMCPServer advertises the three gateway tools over stdio and
// serves calls one at a time until the transport closes. Every failure
// is rendered as an "Error: <message>" text payload so calling agents
// never see a transport-level fault.
func StartMCPServer(gw *Gateway) error {
	s := server.NewMCPServer(
		"sqlgate",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	readQueryTool := mcp.NewTool("read_query",
		mcp.WithDescription("Execute a SELECT query on the SQL database"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("SELECT SQL query to execute"),
		),
		mcp.WithObject("parameters",
			mcp.Description("Parameters for the SQL query (optional)"),
		),
	)
	s.AddTool(readQueryTool, handleReadQuery(gw))

	getSchemaTool := mcp.NewTool("get_schema",
		mcp.WithDescription("Get the basic schema information for the database"),
	)
	s.AddTool(getSchemaTool, handleGetSchema(gw))

	getSchemaForLLMTool := mcp.NewTool("get_schema_for_llm",
		mcp.WithDescription("Get comprehensive database schema information for LLM analysis, including tables, relationships, constraints, sample data, detected enums, and business patterns"),
	)
	s.AddTool(getSchemaForLLMTool, handleGetSchemaForLLM(gw))

	slog.Info("starting sqlgate mcp server")
	return server.ServeStdio(s)
}

func handleReadQuery(gw *Gateway) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return errorResult(fmt.Errorf("query parameter is required")), nil
		}

		var params map[string]any
		if raw, ok := request.GetArguments()["parameters"]; ok && raw != nil {
			params, ok = raw.(map[string]any)
			if !ok {
				return errorResult(fmt.Errorf("parameters must be an object")), nil
			}
		}

		result, err := gw.ReadQuery(ctx, query, params)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

func handleGetSchema(gw *Gateway) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := gw.Schema(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

func handleGetSchemaForLLM(gw *Gateway) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := gw.SchemaForLLM(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// errorResult shapes any failure into the textual error contract.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("Error: %s", err))
}
