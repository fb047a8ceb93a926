package adapters

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
)

// MySQLAdapter connects through go-sql-driver/mysql and introspects via
// information_schema.
type MySQLAdapter struct {
	cfg     Config
	tlsOnce sync.Once
	tlsErr  error
}

func (a *MySQLAdapter) Kind() Kind { return KindMySQL }

func (a *MySQLAdapter) dsn() (string, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", a.cfg.User, a.cfg.Password, a.cfg.Host, a.cfg.Port, a.cfg.Database)
	if a.cfg.SSLCert == "" {
		return dsn, nil
	}

	a.tlsOnce.Do(func() {
		pem, err := os.ReadFile(a.cfg.SSLCert)
		if err != nil {
			a.tlsErr = fmt.Errorf("failed to read ssl certificate: %w", err)
			return
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			a.tlsErr = fmt.Errorf("failed to parse ssl certificate: %s", a.cfg.SSLCert)
			return
		}
		a.tlsErr = mysql.RegisterTLSConfig("sqlgate", &tls.Config{RootCAs: pool})
	})
	if a.tlsErr != nil {
		return "", a.tlsErr
	}
	return dsn + "?tls=sqlgate", nil
}

func (a *MySQLAdapter) open(ctx context.Context) (*sql.DB, error) {
	dsn, err := a.dsn()
	if err != nil {
		return nil, &ConnectionError{Kind: KindMySQL, Err: err}
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, &ConnectionError{Kind: KindMySQL, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Kind: KindMySQL, Err: err}
	}
	return db, nil
}

func (a *MySQLAdapter) IntrospectSchema(ctx context.Context) (*SchemaDocument, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	doc := &SchemaDocument{
		DatabaseType: "mysql",
		DatabaseName: a.cfg.Database,
	}
	if err := introspect(ctx, db, mysqlCatalog{schema: a.cfg.Database}, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *MySQLAdapter) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*QueryResult, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return executeQuery(ctx, db, query, params)
}

func (a *MySQLAdapter) TableColumns(ctx context.Context, table string) ([]ColumnRef, error) {
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cols, err := mysqlCatalog{schema: a.cfg.Database}.tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	return toColumnRefs(cols), nil
}

type mysqlCatalog struct {
	schema string
}

func (c mysqlCatalog) listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, c.schema)
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

func (c mysqlCatalog) tableColumns(ctx context.Context, db *sql.DB, table string) ([]ColumnDescriptor, error) {
	// Ordinals are shifted to the document's 0-based convention.
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable, column_default, column_key, ordinal_position - 1
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`, c.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var name, dataType, isNullable, columnKey string
		var dflt sql.NullString
		var ordinal int
		if err := rows.Scan(&name, &dataType, &isNullable, &dflt, &columnKey, &ordinal); err != nil {
			return nil, err
		}
		col := ColumnDescriptor{
			Name:            name,
			DataType:        dataType,
			IsNullable:      isNullable == "YES",
			IsPrimaryKey:    columnKey == "PRI",
			OrdinalPosition: ordinal,
		}
		if dflt.Valid {
			col.Default = &dflt.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (c mysqlCatalog) tableForeignKeys(ctx context.Context, db *sql.DB, table string) ([]ForeignKey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL
		ORDER BY ordinal_position
	`, c.schema, table)
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

func (mysqlCatalog) quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
