package warehouse

import (
	"fmt"
	"strings"
)

// Dialect renders the DDL and catalogue queries of one SQL engine
type Dialect interface {
	Name() string
	// CreateTable renders an idempotent CREATE TABLE statement
	CreateTable(t Table) string
	// ColumnsQuery lists the column names of the table bound to its single placeholder
	ColumnsQuery() string
	// AssignsIDs reports whether the loader has to supply row identifiers
	AssignsIDs() bool
}

// SQLite is the dialect of the default file-backed warehouse
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) CreateTable(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)
	b.WriteString("\tid INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	for _, col := range t.Columns {
		var typ string
		switch col.Type {
		case TypeText:
			typ = "TEXT"
		case TypeInteger:
			typ = "INTEGER"
		case TypeReal:
			typ = "REAL"
		}
		if col.Required {
			typ += " NOT NULL"
		}
		fmt.Fprintf(&b, "\t%s %s,\n", col.Name, typ)
	}
	b.WriteString("\tcreated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP\n)")
	return b.String()
}

func (SQLite) ColumnsQuery() string {
	return "SELECT name FROM pragma_table_info(?)"
}

func (SQLite) AssignsIDs() bool { return false }

// ClickHouse has no auto-increment; ids are assigned by the single writer
type ClickHouse struct{}

func (ClickHouse) Name() string { return "clickhouse" }

func (ClickHouse) CreateTable(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)
	b.WriteString("\tid UInt64,\n")
	for _, col := range t.Columns {
		var typ string
		switch col.Type {
		case TypeText:
			typ = "String"
		case TypeInteger:
			typ = "Int64"
		case TypeReal:
			typ = "Float64"
		}
		fmt.Fprintf(&b, "\t%s %s,\n", col.Name, typ)
	}
	b.WriteString("\tcreated_at DateTime DEFAULT now()\n")
	fmt.Fprintf(&b, ") ENGINE = MergeTree\nORDER BY (tenant_id, id)")
	return b.String()
}

func (ClickHouse) ColumnsQuery() string {
	return "SELECT name FROM system.columns WHERE database = currentDatabase() AND table = ?"
}

func (ClickHouse) AssignsIDs() bool { return true }
