package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBankDatabase creates a small banking-shaped SQLite database in a
// temp directory and returns its path.
func newBankDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bank.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	ddl := []string{
		`CREATE TABLE Customer (
			CustomerID INTEGER PRIMARY KEY,
			FullName TEXT NOT NULL,
			CustomerSince TEXT
		)`,
		`CREATE TABLE Account (
			AccountID INTEGER PRIMARY KEY,
			CustomerID INTEGER NOT NULL REFERENCES Customer(CustomerID),
			AccountNumber TEXT NOT NULL,
			AccountStatus TEXT DEFAULT 'ACTIVE',
			CurrentBalance REAL
		)`,
		`CREATE TABLE BankTransaction (
			TransactionID INTEGER PRIMARY KEY,
			AccountID INTEGER REFERENCES Account(AccountID),
			TransactionType TEXT,
			Amount REAL,
			TransactionDate TEXT
		)`,
		`CREATE TABLE AuditLog (
			EntryID INTEGER PRIMARY KEY,
			Payload TEXT
		)`,
	}
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err = db.Exec(`INSERT INTO Customer VALUES
		(1, 'Ada Byron', '2019-03-01'),
		(2, 'Grace Hopper', '2020-07-15')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO Account VALUES
		(10, 1, 'ACC-0010', 'ACTIVE', 1200.50),
		(11, 1, 'ACC-0011', 'FROZEN', 0),
		(12, 2, 'ACC-0012', 'CLOSED', 31.07)`)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		kind := "DEPOSIT"
		if i%2 == 1 {
			kind = "WITHDRAWAL"
		}
		_, err = db.Exec(
			`INSERT INTO BankTransaction VALUES (?, 10, ?, ?, ?)`,
			100+i, kind, float64(i)*9.99, fmt.Sprintf("2024-01-%02d", i+1))
		require.NoError(t, err)
	}

	// 16 distinct values, one past the detection cutoff.
	for i := 0; i < 16; i++ {
		_, err = db.Exec(`INSERT INTO AuditLog VALUES (?, ?)`, i, fmt.Sprintf("event-%d", i))
		require.NoError(t, err)
	}

	return path
}

func newBankAdapter(t *testing.T) Adapter {
	t.Helper()
	adapter, err := New(Config{Kind: KindSQLite, Path: newBankDatabase(t)})
	require.NoError(t, err)
	return adapter
}

func TestIntrospectSchema(t *testing.T) {
	ctx := context.Background()
	adapter := newBankAdapter(t)

	doc, err := adapter.IntrospectSchema(ctx)
	require.NoError(t, err)

	t.Run("document_shape", func(t *testing.T) {
		assert.Equal(t, "sqlite", doc.DatabaseType)
		assert.NotEmpty(t, doc.DatabasePath)
		assert.Equal(t, 4, doc.Summary.TotalTables)
		assert.Len(t, doc.Tables, 4)
	})

	t.Run("tables_preserve_enumeration_order", func(t *testing.T) {
		names := make([]string, 0, len(doc.Tables))
		for _, td := range doc.Tables {
			names = append(names, td.Name)
		}
		assert.Equal(t, []string{"Customer", "Account", "BankTransaction", "AuditLog"}, names)
	})

	t.Run("columns_and_primary_keys", func(t *testing.T) {
		account := findTable(t, doc, "Account")
		require.Len(t, account.Columns, 5)
		assert.Equal(t, []string{"AccountID"}, account.PrimaryKeys)

		for i, col := range account.Columns {
			assert.Equal(t, i, col.OrdinalPosition, col.Name)
		}

		customerID := account.Columns[1]
		assert.Equal(t, "CustomerID", customerID.Name)
		assert.False(t, customerID.IsNullable)

		status := account.Columns[3]
		assert.Equal(t, "AccountStatus", status.Name)
		require.NotNil(t, status.Default)
		assert.Contains(t, *status.Default, "ACTIVE")
	})

	t.Run("relationships_mirror_foreign_keys", func(t *testing.T) {
		require.Len(t, doc.Relationships, 2)
		for _, rel := range doc.Relationships {
			assert.Equal(t, "one_to_many", rel.RelationshipType)
		}

		account := findTable(t, doc, "Account")
		require.Len(t, account.ForeignKeys, 1)
		assert.Equal(t, "CustomerID", account.ForeignKeys[0].Column)
		assert.Equal(t, "Customer", account.ForeignKeys[0].ReferencedTable)
		assert.Equal(t, "CustomerID", account.ForeignKeys[0].ReferencedColumn)
	})

	t.Run("row_counts_and_sample_data", func(t *testing.T) {
		tx := findTable(t, doc, "BankTransaction")
		assert.Equal(t, int64(7), tx.RowCount)
		assert.LessOrEqual(t, len(tx.SampleData), 5)
		require.NotEmpty(t, tx.SampleData)
		assert.IsType(t, "", tx.SampleData[0]["TransactionType"])

		customer := findTable(t, doc, "Customer")
		assert.Equal(t, int64(2), customer.RowCount)
		assert.Len(t, customer.SampleData, 2)
	})

	t.Run("enum_detection_bounds", func(t *testing.T) {
		account := findTable(t, doc, "Account")
		assert.ElementsMatch(t,
			[]string{"ACTIVE", "FROZEN", "CLOSED"},
			account.DetectedEnums["AccountStatus"])

		tx := findTable(t, doc, "BankTransaction")
		assert.ElementsMatch(t,
			[]string{"DEPOSIT", "WITHDRAWAL"},
			tx.DetectedEnums["TransactionType"])

		// 16 distinct values exceed the cutoff.
		audit := findTable(t, doc, "AuditLog")
		assert.NotContains(t, audit.DetectedEnums, "Payload")

		// Numeric columns are never scanned.
		assert.NotContains(t, account.DetectedEnums, "CurrentBalance")
	})

	t.Run("business_classification", func(t *testing.T) {
		assert.Equal(t, "user_management", findTable(t, doc, "Customer").BusinessPurpose)
		assert.Equal(t, "user_management", findTable(t, doc, "Account").BusinessPurpose)
		// "transaction" outranks "bank" in keyword order.
		assert.Equal(t, "transaction_management", findTable(t, doc, "BankTransaction").BusinessPurpose)
		assert.Equal(t, "unknown", findTable(t, doc, "AuditLog").BusinessPurpose)

		assert.Equal(t, "user_management", doc.Summary.EstimatedDomain)
	})

	t.Run("key_patterns", func(t *testing.T) {
		assert.ElementsMatch(t, []string{
			"uses_id_pattern",
			"includes_temporal_data",
			"uses_status_fields",
			"has_relationships",
		}, doc.Summary.KeyPatterns)
	})

	t.Run("idempotent", func(t *testing.T) {
		again, err := adapter.IntrospectSchema(ctx)
		require.NoError(t, err)

		first, err := json.Marshal(doc)
		require.NoError(t, err)
		second, err := json.Marshal(again)
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(second))
	})
}

func TestIntrospectSchemaEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, db.Close())

	adapter, err := New(Config{Kind: KindSQLite, Path: path})
	require.NoError(t, err)

	doc, err := adapter.IntrospectSchema(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Tables)
	assert.Empty(t, doc.Relationships)
	assert.Equal(t, 0, doc.Summary.TotalTables)
	assert.Equal(t, "unknown", doc.Summary.EstimatedDomain)
	assert.Empty(t, doc.Summary.KeyPatterns)
}

func TestSchemaDocumentJSONOrdering(t *testing.T) {
	adapter := newBankAdapter(t)
	doc, err := adapter.IntrospectSchema(context.Background())
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	// Table keys appear in enumeration order in the serialized object.
	s := string(out)
	customer := strings.Index(s, `"Customer"`)
	account := strings.Index(s, `"Account"`)
	tx := strings.Index(s, `"BankTransaction"`)
	require.GreaterOrEqual(t, customer, 0)
	require.GreaterOrEqual(t, tx, 0)
	assert.Less(t, customer, account)
	assert.Less(t, account, tx)
}

func TestFlatten(t *testing.T) {
	adapter := newBankAdapter(t)
	doc, err := adapter.IntrospectSchema(context.Background())
	require.NoError(t, err)

	flat := doc.Flatten()
	require.Len(t, flat, 4)
	assert.Equal(t, "Customer", flat[0].Name)
	require.Len(t, flat[0].Columns, 3)
	assert.Equal(t, "CustomerID", flat[0].Columns[0].Name)

	out, err := json.Marshal(flat)
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Contains(t, decoded, "Account")

	// The flat projection drops the enrichment fields.
	col := decoded["Account"][0]
	assert.Contains(t, col, "data_type")
	assert.NotContains(t, col, "is_primary_key")
	assert.NotContains(t, string(out), "business_purpose")
}

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		table string
		want  string
	}{
		{"users", "user_management"},
		{"CustomerProfile", "user_management"},
		{"purchase_orders", "transaction_management"},
		{"ProductCatalog", "product_management"},
		{"loan_applications", "financial_services"},
		{"department", "organizational_management"},
		{"telemetry", "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyTable(tc.table), tc.table)
	}
}

func TestIsTextType(t *testing.T) {
	assert.True(t, isTextType("TEXT"))
	assert.True(t, isTextType("varchar(255)"))
	assert.True(t, isTextType("character varying"))
	assert.False(t, isTextType("INTEGER"))
	assert.False(t, isTextType("REAL"))
	assert.False(t, isTextType("timestamp"))
}

func findTable(t *testing.T, doc *SchemaDocument, name string) *TableDescriptor {
	t.Helper()
	for _, td := range doc.Tables {
		if td.Name == name {
			return td
		}
	}
	t.Fatalf("table %s not found in document", name)
	return nil
}
