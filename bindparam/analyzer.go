// Package bindparam analyzes bind parameters in SQL text. It runs two
// deliberately separate extraction passes: a structural pass over the
// parsed expression tree and a more permissive lexical pass over the
// raw text. The lexical pass tolerates SQL the parser cannot, at the
// cost of false positives inside string literals or comments.
package bindparam

import (
	"context"
	"regexp"

	"github.com/xwb1989/sqlparser"
)

// Column is the reduced live column metadata used for type suggestions.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notnull"`
	PrimaryKey bool   `json:"primary_key"`
}

// ColumnLookup fetches live column metadata for one table. A nil lookup
// disables the type-suggestion pass.
type ColumnLookup func(ctx context.Context, table string) ([]Column, error)

// BindParameter is one placeholder occurrence found by the lexical
// pass, in first-seen order. Name is set only for named parameters,
// Position (1-based) only for positional ones.
type BindParameter struct {
	Kind     string  `json:"type"`
	Position *int    `json:"position"`
	Name     *string `json:"name"`
	Style    string  `json:"style"`
}

// Suggestion describes the column a named parameter is compared
// against in a WHERE equality, resolved against live schema.
type Suggestion struct {
	SuggestedColumn string `json:"suggested_column"`
	SuggestedTable  string `json:"suggested_table"`
	DataType        string `json:"data_type"`
	IsPrimaryKey    bool   `json:"is_primary_key"`
	NotNull         bool   `json:"not_null"`
}

// TableInfo holds the live columns of a referenced table, or an error
// marker when the lookup failed for that table.
type TableInfo struct {
	Columns []Column `json:"columns,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Analysis is the full analyzer output.
type Analysis struct {
	OriginalQuery        string                `json:"original_query"`
	Parameters           []BindParameter       `json:"parameters"`
	TablesReferenced     []string              `json:"tables_referenced"`
	ColumnsReferenced    []string              `json:"columns_referenced"`
	ParameterSuggestions map[string]Suggestion `json:"parameter_suggestions"`
	SchemaInfo           map[string]TableInfo  `json:"schema_info,omitempty"`
	ParseError           string                `json:"parse_error,omitempty"`
}

// The four lexical parameter styles, scanned in this order.
var (
	positionalPattern  = regexp.MustCompile(`\?`)
	namedColonPattern  = regexp.MustCompile(`:([a-zA-Z0-9_]+)`)
	namedAtPattern     = regexp.MustCompile(`@([a-zA-Z0-9_]+)`)
	namedDollarPattern = regexp.MustCompile(`\$([a-zA-Z0-9_]+)`)
)

// equality is a column = placeholder comparison found in a WHERE clause.
type equality struct {
	column string
	style  string
}

// Analyze inspects a SQL string for bind parameters. The structural
// pass may fail without aborting the analysis; a parse failure only
// disables table/column extraction and type suggestions, never the
// lexical parameter detection.
func Analyze(ctx context.Context, query string, lookup ColumnLookup) *Analysis {
	result := &Analysis{
		OriginalQuery:        query,
		Parameters:           []BindParameter{},
		TablesReferenced:     []string{},
		ColumnsReferenced:    []string{},
		ParameterSuggestions: map[string]Suggestion{},
	}

	equalities := structuralPass(query, result)
	lexicalPass(query, result)

	if lookup != nil && result.ParseError == "" && len(result.TablesReferenced) > 0 {
		suggestPass(ctx, lookup, equalities, result)
	}

	return result
}

// structuralPass parses the query and records referenced tables and
// columns in first-seen order, plus WHERE equality comparisons for the
// suggestion pass.
func structuralPass(query string, result *Analysis) []equality {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		result.ParseError = err.Error()
		return nil
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil
	}

	seenTables := map[string]bool{}
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if tn, ok := node.(sqlparser.TableName); ok && !tn.Name.IsEmpty() {
			name := tn.Name.String()
			if !seenTables[name] {
				seenTables[name] = true
				result.TablesReferenced = append(result.TablesReferenced, name)
			}
		}
		return true, nil
	}, sel.From)

	seenColumns := map[string]bool{}
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		if col, ok := node.(*sqlparser.ColName); ok {
			name := sqlparser.String(col)
			if !seenColumns[name] {
				seenColumns[name] = true
				result.ColumnsReferenced = append(result.ColumnsReferenced, name)
			}
		}
		return true, nil
	}, sel)

	var equalities []equality
	if sel.Where != nil {
		_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
			cmp, ok := node.(*sqlparser.ComparisonExpr)
			if !ok || cmp.Operator != sqlparser.EqualStr {
				return true, nil
			}
			col, ok := cmp.Left.(*sqlparser.ColName)
			if !ok {
				return true, nil
			}
			val, ok := cmp.Right.(*sqlparser.SQLVal)
			if !ok || val.Type != sqlparser.ValArg {
				return true, nil
			}
			equalities = append(equalities, equality{
				column: col.Name.String(),
				style:  string(val.Val),
			})
			return true, nil
		}, sel.Where)
	}

	return equalities
}

// lexicalPass scans the raw text for the four placeholder styles. It is
// intentionally more permissive than the structural pass and may match
// placeholder-shaped text inside string literals or comments.
func lexicalPass(query string, result *Analysis) {
	for i, loc := 0, positionalPattern.FindAllStringIndex(query, -1); i < len(loc); i++ {
		position := i + 1
		result.Parameters = append(result.Parameters, BindParameter{
			Kind:     "positional",
			Position: &position,
			Style:    "?",
		})
	}

	named := []struct {
		pattern *regexp.Regexp
		prefix  string
	}{
		{namedColonPattern, ":"},
		{namedAtPattern, "@"},
		{namedDollarPattern, "$"},
	}
	for _, style := range named {
		for _, m := range style.pattern.FindAllStringSubmatch(query, -1) {
			name := m[1]
			result.Parameters = append(result.Parameters, BindParameter{
				Kind:  "named",
				Name:  &name,
				Style: style.prefix + name,
			})
		}
	}
}

// suggestPass fetches live columns for every referenced table and
// attaches a type suggestion to each named parameter used in a WHERE
// equality. A failed table lookup becomes an error marker for that
// table and the rest of the pass proceeds.
func suggestPass(ctx context.Context, lookup ColumnLookup, equalities []equality, result *Analysis) {
	result.SchemaInfo = map[string]TableInfo{}
	for _, table := range result.TablesReferenced {
		cols, err := lookup(ctx, table)
		if err != nil || len(cols) == 0 {
			result.SchemaInfo[table] = TableInfo{Error: "Table not found or not accessible"}
			continue
		}
		result.SchemaInfo[table] = TableInfo{Columns: cols}
	}

	for _, eq := range equalities {
		if !hasParameterStyle(result.Parameters, eq.style) {
			continue
		}
		for _, table := range result.TablesReferenced {
			info := result.SchemaInfo[table]
			found := false
			for _, col := range info.Columns {
				if col.Name == eq.column {
					result.ParameterSuggestions[eq.style] = Suggestion{
						SuggestedColumn: eq.column,
						SuggestedTable:  table,
						DataType:        col.Type,
						IsPrimaryKey:    col.PrimaryKey,
						NotNull:         col.NotNull,
					}
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
}

func hasParameterStyle(params []BindParameter, style string) bool {
	for _, p := range params {
		if p.Style == style {
			return true
		}
	}
	return false
}
