package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// catalog is the per-backend surface the shared introspection algorithm
// drives: table enumeration, column metadata, declared foreign keys and
// identifier quoting. Everything above it is backend-agnostic.
type catalog interface {
	listTables(ctx context.Context, db *sql.DB) ([]string, error)
	tableColumns(ctx context.Context, db *sql.DB, table string) ([]ColumnDescriptor, error)
	tableForeignKeys(ctx context.Context, db *sql.DB, table string) ([]ForeignKey, error)
	quoteIdent(name string) string
}

const (
	sampleRowLimit = 5
	enumScanLimit  = 20
	enumValueLimit = 15
)

// businessKeywords is the ordered first-match keyword table for
// classifying a table's business purpose from its name.
var businessKeywords = []struct {
	words   []string
	purpose string
}{
	{[]string{"user", "customer", "person", "account"}, "user_management"},
	{[]string{"order", "purchase", "transaction", "payment"}, "transaction_management"},
	{[]string{"product", "item", "inventory", "catalog"}, "product_management"},
	{[]string{"loan", "credit", "debit", "bank"}, "financial_services"},
	{[]string{"employee", "staff", "department", "branch"}, "organizational_management"},
}

// introspect builds the enriched schema document. It fails only when
// table enumeration itself fails; every per-table enrichment step
// degrades independently to a safe default so a partially broken
// database stays introspectable.
func introspect(ctx context.Context, db *sql.DB, cat catalog, doc *SchemaDocument) error {
	tables, err := cat.listTables(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	slog.Debug("enumerated tables", "count", len(tables))

	doc.Tables = make(TableList, 0, len(tables))
	doc.Relationships = []RelationshipEdge{}

	for _, name := range tables {
		td := &TableDescriptor{
			Name:            name,
			Columns:         []ColumnDescriptor{},
			PrimaryKeys:     []string{},
			ForeignKeys:     []ForeignKey{},
			SampleData:      []map[string]any{},
			DetectedEnums:   map[string][]string{},
			BusinessPurpose: "unknown",
		}

		cols, err := cat.tableColumns(ctx, db, name)
		if err != nil {
			slog.Debug("failed to read columns", "table", name, "error", err)
		} else {
			td.Columns = cols
			for _, c := range cols {
				if c.IsPrimaryKey {
					td.PrimaryKeys = append(td.PrimaryKeys, c.Name)
				}
			}
		}

		fks, err := cat.tableForeignKeys(ctx, db, name)
		if err != nil {
			slog.Debug("failed to read foreign keys", "table", name, "error", err)
		} else {
			td.ForeignKeys = fks
			for _, fk := range fks {
				doc.Relationships = append(doc.Relationships, RelationshipEdge{
					FromTable:        name,
					FromColumn:       fk.Column,
					ToTable:          fk.ReferencedTable,
					ToColumn:         fk.ReferencedColumn,
					RelationshipType: "one_to_many",
				})
			}
		}

		td.RowCount = rowCount(ctx, db, cat, name)
		td.SampleData = sampleRows(ctx, db, cat, name)

		for _, c := range td.Columns {
			if !isTextType(c.DataType) {
				continue
			}
			values, err := distinctValues(ctx, db, cat, name, c.Name)
			if err != nil {
				continue
			}
			if len(values) >= 1 && len(values) <= enumValueLimit {
				td.DetectedEnums[c.Name] = values
			}
		}

		td.BusinessPurpose = classifyTable(name)
		doc.Tables = append(doc.Tables, td)
	}

	doc.Summary = summarize(doc)
	slog.Debug("schema introspection completed", "tables", len(doc.Tables), "relationships", len(doc.Relationships))
	return nil
}

// rowCount is best-effort; it defaults to 0 when the count query fails.
func rowCount(ctx context.Context, db *sql.DB, cat catalog, table string) int64 {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", cat.quoteIdent(table))
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0
	}
	return n
}

// sampleRows fetches up to sampleRowLimit rows, defaulting to an empty
// list on failure.
func sampleRows(ctx context.Context, db *sql.DB, cat catalog, table string) []map[string]any {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", cat.quoteIdent(table), sampleRowLimit)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return []map[string]any{}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return []map[string]any{}
	}

	samples := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return []map[string]any{}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		samples = append(samples, row)
	}
	if rows.Err() != nil {
		return []map[string]any{}
	}
	return samples
}

// distinctValues samples up to enumScanLimit distinct non-null values
// of one column. Sampling is capped, not exhaustive: true cardinality
// may exceed what is seen here.
func distinctValues(ctx context.Context, db *sql.DB, cat catalog, table, column string) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL LIMIT %d",
		cat.quoteIdent(column), cat.quoteIdent(table), cat.quoteIdent(column), enumScanLimit)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, fmt.Sprintf("%v", normalizeValue(v)))
	}
	return values, rows.Err()
}

func isTextType(dataType string) bool {
	upper := strings.ToUpper(dataType)
	return strings.Contains(upper, "CHAR") || strings.Contains(upper, "TEXT")
}

// classifyTable tags a table's business purpose by case-insensitive
// substring match of its name against the ordered keyword table.
func classifyTable(table string) string {
	lower := strings.ToLower(table)
	for _, entry := range businessKeywords {
		for _, word := range entry.words {
			if strings.Contains(lower, word) {
				return entry.purpose
			}
		}
	}
	return "unknown"
}

// summarize aggregates the per-table classifications and column name
// patterns into the document summary. The estimated domain is the most
// frequent non-unknown purpose, ties broken by enumeration order.
func summarize(doc *SchemaDocument) DatabaseSummary {
	counts := map[string]int{}
	for _, t := range doc.Tables {
		if t.BusinessPurpose != "unknown" {
			counts[t.BusinessPurpose]++
		}
	}

	// Walking tables in enumeration order means the first purpose to
	// reach the winning count takes ties.
	domain := "unknown"
	best := 0
	for _, t := range doc.Tables {
		p := t.BusinessPurpose
		if p != "unknown" && counts[p] > best {
			domain = p
			best = counts[p]
		}
	}

	var usesID, temporal, status bool
	for _, t := range doc.Tables {
		for _, c := range t.Columns {
			lower := strings.ToLower(c.Name)
			if strings.Contains(c.Name, "ID") {
				usesID = true
			}
			if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
				temporal = true
			}
			if strings.Contains(lower, "status") || strings.Contains(lower, "state") {
				status = true
			}
		}
	}

	patterns := []string{}
	if usesID {
		patterns = append(patterns, "uses_id_pattern")
	}
	if temporal {
		patterns = append(patterns, "includes_temporal_data")
	}
	if status {
		patterns = append(patterns, "uses_status_fields")
	}
	if len(doc.Relationships) > 0 {
		patterns = append(patterns, "has_relationships")
	}

	return DatabaseSummary{
		TotalTables:     len(doc.Tables),
		EstimatedDomain: domain,
		KeyPatterns:     patterns,
	}
}

// executeQuery runs an already-validated SELECT and shapes the result
// as projection-ordered columns with positional row tuples.
func executeQuery(ctx context.Context, db *sql.DB, query string, params map[string]any) (*QueryResult, error) {
	args := make([]any, 0, len(params))
	for name, value := range params {
		args = append(args, sql.Named(name, value))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	result := &QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Err: err}
		}
		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Err: err}
	}
	return result, nil
}

// normalizeValue converts driver byte slices to strings so results
// serialize as text rather than base64.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
