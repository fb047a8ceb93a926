package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
)

// PostgresAdapter connects through lib/pq and introspects the public
// schema via information_schema.
type PostgresAdapter struct {
	cfg Config
}

func (a *PostgresAdapter) Kind() Kind { return KindPostgres }

func (a *PostgresAdapter) dsn() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.PathEscape(a.cfg.User), url.PathEscape(a.cfg.Password),
		a.cfg.Host, a.cfg.Port, a.cfg.Database)
	if a.cfg.SSLCert != "" {
		return dsn + "?sslmode=require&sslrootcert=" + url.QueryEscape(a.cfg.SSLCert)
	}
	return dsn + "?sslmode=disable"
}

func (a *PostgresAdapter) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", a.dsn())
	if err != nil {
		return nil, &ConnectionError{Kind: KindPostgres, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Kind: KindPostgres, Err: err}
	}
	return db, nil
}

func (a *PostgresAdapter) IntrospectSchema(ctx context.Context) (*SchemaDocument, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	doc := &SchemaDocument{
		DatabaseType: "postgresql",
		DatabaseName: a.cfg.Database,
	}
	if err := introspect(ctx, db, postgresCatalog{}, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *PostgresAdapter) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*QueryResult, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return executeQuery(ctx, db, query, params)
}

func (a *PostgresAdapter) TableColumns(ctx context.Context, table string) ([]ColumnRef, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cols, err := postgresCatalog{}.tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	return toColumnRefs(cols), nil
}

type postgresCatalog struct{}

func (postgresCatalog) listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (postgresCatalog) tableColumns(ctx context.Context, db *sql.DB, table string) ([]ColumnDescriptor, error) {
	// PK membership is resolved with EXISTS rather than a join: a column
	// in several constraints would otherwise yield one row per
	// constraint and break ordinal uniqueness. Ordinals are shifted to
	// the document's 0-based convention.
	rows, err := db.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES',
			c.column_default,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON kcu.constraint_name = tc.constraint_name
					AND kcu.table_schema = tc.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
					AND tc.table_schema = 'public'
					AND kcu.table_name = c.table_name
					AND kcu.column_name = c.column_name
			),
			c.ordinal_position - 1
		FROM information_schema.columns c
		WHERE c.table_name = $1 AND c.table_schema = 'public'
		ORDER BY c.ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var col ColumnDescriptor
		var dflt sql.NullString
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &dflt, &col.IsPrimaryKey, &col.OrdinalPosition); err != nil {
			return nil, err
		}
		if dflt.Valid {
			col.Default = &dflt.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (postgresCatalog) tableForeignKeys(ctx context.Context, db *sql.DB, table string) ([]ForeignKey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			kcu.column_name,
			ccu.table_name AS referenced_table,
			ccu.column_name AS referenced_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = 'public'
			AND tc.table_name = $1
		ORDER BY kcu.ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (postgresCatalog) quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
