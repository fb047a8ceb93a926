package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/llm2sql/sqlgate/adapters"
	"github.com/llm2sql/sqlgate/bindparam"
)

// DefaultQueryTimeout bounds each backend operation so a stalled driver
// cannot block the single-threaded server indefinitely.
const DefaultQueryTimeout = 30 * time.Second

// Gateway enforces the SELECT-only policy and dispatches tool calls to
// the adapter, consulting the bind parameter analyzer before execution
// when parameters are supplied.
type Gateway struct {
	adapter adapters.Adapter
	timeout time.Duration
}

func NewGateway(adapter adapters.Adapter, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Gateway{adapter: adapter, timeout: timeout}
}

// ReadQuery validates and executes a SELECT statement. Rejected
// statements never open a backend connection.
func (g *Gateway) ReadQuery(ctx context.Context, query string, params map[string]any) (string, error) {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return "", &adapters.ValidationError{Message: "Only SELECT queries are allowed for read_query"}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if len(params) > 0 {
		params = g.filterParameters(ctx, query, params)
	}

	result, err := g.adapter.ExecuteQuery(ctx, query, params)
	if err != nil {
		return "", err
	}
	return marshalIndent(result)
}

// filterParameters keeps only the named bind parameters the analyzer
// detected in the query text; unreferenced keys are silently dropped.
// A named parameter present in the query but absent from the supplied
// map is not pre-validated here; a missing binding surfaces as a
// driver-level error.
func (g *Gateway) filterParameters(ctx context.Context, query string, supplied map[string]any) map[string]any {
	analysis := bindparam.Analyze(ctx, query, g.columnLookup)
	if analysis.ParseError != "" {
		slog.Debug("structural analysis unavailable", "error", analysis.ParseError)
	}

	filtered := map[string]any{}
	for _, p := range analysis.Parameters {
		if p.Kind != "named" || p.Name == nil {
			continue
		}
		if value, ok := supplied[*p.Name]; ok {
			filtered[*p.Name] = value
		}
	}
	slog.Debug("filtered query parameters", "supplied", len(supplied), "bound", len(filtered))
	return filtered
}

// columnLookup adapts the adapter's live catalog lookup to the shape
// the analyzer expects.
func (g *Gateway) columnLookup(ctx context.Context, table string) ([]bindparam.Column, error) {
	refs, err := g.adapter.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	cols := make([]bindparam.Column, 0, len(refs))
	for _, r := range refs {
		cols = append(cols, bindparam.Column{
			Name:       r.Name,
			Type:       r.DataType,
			NotNull:    r.NotNull,
			PrimaryKey: r.IsPrimaryKey,
		})
	}
	return cols, nil
}

// Schema returns the flat catalog projection: table name to ordered
// column list, uniform across backends.
func (g *Gateway) Schema(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	doc, err := g.adapter.IntrospectSchema(ctx)
	if err != nil {
		return "", err
	}
	return marshalIndent(doc.Flatten())
}

// SchemaForLLM returns the enriched schema document, recomputed fresh
// on every call.
func (g *Gateway) SchemaForLLM(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	doc, err := g.adapter.IntrospectSchema(ctx)
	if err != nil {
		return "", err
	}
	return marshalIndent(doc)
}

func marshalIndent(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}
