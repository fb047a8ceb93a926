package adapters

import (
	"context"
	"fmt"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_adapters.go -package=mocks

// Adapter is the capability set every backend implements. An adapter is
// immutable after construction: it holds only connection parameters and
// opens a fresh physical connection for each operation, closing it on
// every exit path.
type Adapter interface {
	// Kind returns the backend kind this adapter was built for.
	Kind() Kind
	// IntrospectSchema walks the catalog and builds the enriched schema
	// document. The document is recomputed fresh on every call.
	IntrospectSchema(ctx context.Context) (*SchemaDocument, error)
	// ExecuteQuery runs a SELECT statement already validated by the
	// gateway, optionally with named bind parameters.
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (*QueryResult, error)
	// TableColumns returns reduced column metadata for one table, used
	// by the bind parameter analyzer to cross-reference live schema.
	TableColumns(ctx context.Context, table string) ([]ColumnRef, error)
}

// New builds the adapter for the configured backend kind.
func New(cfg Config) (Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindSQLite:
		return &SQLiteAdapter{cfg: cfg}, nil
	case KindMySQL:
		return &MySQLAdapter{cfg: cfg}, nil
	case KindPostgres:
		return &PostgresAdapter{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unsupported database kind")
	}
}
