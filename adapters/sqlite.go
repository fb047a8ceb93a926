package adapters

import (
	"context"
	"database/sql"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteAdapter is the reference backend. It holds only the database
// path and opens the file once per operation.
type SQLiteAdapter struct {
	cfg Config
}

func (a *SQLiteAdapter) Kind() Kind { return KindSQLite }

// open checks file existence before any connection attempt, then opens
// and pings. Callers must close the returned handle.
func (a *SQLiteAdapter) open(ctx context.Context) (*sql.DB, error) {
	if _, err := os.Stat(a.cfg.Path); os.IsNotExist(err) {
		return nil, &NotFoundError{Path: a.cfg.Path}
	}

	db, err := sql.Open("sqlite3", a.cfg.Path)
	if err != nil {
		return nil, &ConnectionError{Kind: KindSQLite, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Kind: KindSQLite, Err: err}
	}
	return db, nil
}

func (a *SQLiteAdapter) IntrospectSchema(ctx context.Context) (*SchemaDocument, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	doc := &SchemaDocument{
		DatabaseType: "sqlite",
		DatabasePath: a.cfg.Path,
	}
	if err := introspect(ctx, db, sqliteCatalog{}, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *SQLiteAdapter) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*QueryResult, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return executeQuery(ctx, db, query, params)
}

func (a *SQLiteAdapter) TableColumns(ctx context.Context, table string) ([]ColumnRef, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cols, err := sqliteCatalog{}.tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	return toColumnRefs(cols), nil
}

type sqliteCatalog struct{}

func (sqliteCatalog) listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
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

func (c sqliteCatalog) tableColumns(ctx context.Context, db *sql.DB, table string) ([]ColumnDescriptor, error) {
	// PRAGMA arguments cannot use placeholders; the table name comes
	// from the catalog itself or is escaped here.
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+c.quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		col := ColumnDescriptor{
			Name:            name,
			DataType:        dataType,
			IsNullable:      notNull == 0,
			IsPrimaryKey:    pk > 0,
			OrdinalPosition: cid,
		}
		if dflt.Valid {
			col.Default = &dflt.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (c sqliteCatalog) tableForeignKeys(ctx context.Context, db *sql.DB, table string) ([]ForeignKey, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+c.quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to, onUpdate, onDelete, match sql.NullString
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		fks = append(fks, ForeignKey{
			Column:           from,
			ReferencedTable:  refTable,
			ReferencedColumn: to.String,
		})
	}
	return fks, rows.Err()
}

func (sqliteCatalog) quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func toColumnRefs(cols []ColumnDescriptor) []ColumnRef {
	refs := make([]ColumnRef, 0, len(cols))
	for _, c := range cols {
		refs = append(refs, ColumnRef{
			Name:         c.Name,
			DataType:     c.DataType,
			NotNull:      !c.IsNullable,
			IsPrimaryKey: c.IsPrimaryKey,
		})
	}
	return refs
}
