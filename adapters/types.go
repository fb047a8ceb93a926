package adapters

import (
	"bytes"
	"encoding/json"
)

// SchemaDocument is the enriched introspection result for a database.
// Tables preserve catalog enumeration order; Relationships is exactly
// the union of declared foreign keys across tables.
type SchemaDocument struct {
	DatabaseType  string             `json:"database_type"`
	DatabasePath  string             `json:"database_path,omitempty"`
	DatabaseName  string             `json:"database_name,omitempty"`
	Tables        TableList          `json:"tables"`
	Relationships []RelationshipEdge `json:"relationships"`
	Summary       DatabaseSummary    `json:"database_summary"`
}

// TableList marshals as a JSON object keyed by table name while
// preserving enumeration order, which encoding/json maps would not.
type TableList []*TableDescriptor

func (l TableList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		body, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TableDescriptor describes one table, including best-effort enrichment
// fields that individually degrade to safe defaults on failure.
type TableDescriptor struct {
	Name            string              `json:"-"`
	Columns         []ColumnDescriptor  `json:"columns"`
	PrimaryKeys     []string            `json:"primary_keys"`
	ForeignKeys     []ForeignKey        `json:"foreign_keys"`
	SampleData      []map[string]any    `json:"sample_data"`
	RowCount        int64               `json:"row_count"`
	DetectedEnums   map[string][]string `json:"detected_enums"`
	BusinessPurpose string              `json:"business_purpose"`
}

// ColumnDescriptor is one column's catalog metadata. Ordinal positions
// are 0-based, contiguous and unique within a table on every backend.
type ColumnDescriptor struct {
	Name            string  `json:"name"`
	DataType        string  `json:"data_type"`
	IsNullable      bool    `json:"is_nullable"`
	Default         *string `json:"default"`
	IsPrimaryKey    bool    `json:"is_primary_key"`
	OrdinalPosition int     `json:"ordinal_position"`
}

// ForeignKey is a declared foreign key on a table.
type ForeignKey struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// RelationshipEdge is a document-level view of a foreign key. The
// relationship type is derived 1:1 from the declaration and is always
// one_to_many.
type RelationshipEdge struct {
	FromTable        string `json:"from_table"`
	FromColumn       string `json:"from_column"`
	ToTable          string `json:"to_table"`
	ToColumn         string `json:"to_column"`
	RelationshipType string `json:"relationship_type"`
}

// DatabaseSummary aggregates heuristics over the whole document.
type DatabaseSummary struct {
	TotalTables     int      `json:"total_tables"`
	EstimatedDomain string   `json:"estimated_domain"`
	KeyPatterns     []string `json:"key_patterns"`
}

// QueryResult holds query output with columns in SELECT projection
// order and each row as a positional tuple aligned to Columns.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ColumnRef is the reduced per-column metadata handed to the bind
// parameter analyzer for type suggestions.
type ColumnRef struct {
	Name         string
	DataType     string
	NotNull      bool
	IsPrimaryKey bool
}

// FlatTable is one table in the flat catalog projection served by the
// get_schema tool.
type FlatTable struct {
	Name    string
	Columns []FlatColumn
}

// FlatColumn is the reduced column shape of the flat projection.
type FlatColumn struct {
	Name            string  `json:"name"`
	DataType        string  `json:"data_type"`
	IsNullable      bool    `json:"is_nullable"`
	Default         *string `json:"default"`
	OrdinalPosition int     `json:"ordinal_position"`
}

// FlatSchema marshals as table name -> column list, in table order.
type FlatSchema []FlatTable

func (s FlatSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		cols, err := json.Marshal(t.Columns)
		if err != nil {
			return nil, err
		}
		buf.Write(cols)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Flatten projects the enriched document down to the flat catalog shape.
func (d *SchemaDocument) Flatten() FlatSchema {
	flat := make(FlatSchema, 0, len(d.Tables))
	for _, t := range d.Tables {
		ft := FlatTable{Name: t.Name, Columns: make([]FlatColumn, 0, len(t.Columns))}
		for _, c := range t.Columns {
			ft.Columns = append(ft.Columns, FlatColumn{
				Name:            c.Name,
				DataType:        c.DataType,
				IsNullable:      c.IsNullable,
				Default:         c.Default,
				OrdinalPosition: c.OrdinalPosition,
			})
		}
		flat = append(flat, ft)
	}
	return flat
}
