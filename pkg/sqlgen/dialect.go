// Package sqlgen renders CREATE TABLE and INSERT statements for generated rows.
//
// The generic dialect keeps the historical output format: every column in CREATE TABLE is followed by
// a comma, and INSERT always targets the "users" table with quoted column names. Database dialects
// (sqlite, postgres, mysql) produce statements which can be executed as is. Values are never escaped.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/umputun/wordsql/pkg/schema"
)

// Dialect renders sql statements for a table
type Dialect interface {
	Name() string
	CreateTable(table string, cols []schema.Column) string
	Insert(table string, cols []schema.Column, values []string) string
}

// supported dialect names
const (
	GenericName  = "generic"
	SQLiteName   = "sqlite"
	PostgresName = "postgres"
	MySQLName    = "mysql"
)

// ByName returns dialect for name, empty name means generic
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", GenericName:
		return Generic{}, nil
	case SQLiteName:
		return Database{name: SQLiteName, quote: `"`}, nil
	case PostgresName:
		return Database{name: PostgresName, quote: `"`}, nil
	case MySQLName:
		return Database{name: MySQLName, quote: "`"}, nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// Generic renders statements in the original wordsql format
type Generic struct{}

// Name returns dialect name
func (Generic) Name() string { return GenericName }

// CreateTable renders "create table" with a trailing comma after every column, constraints are not rendered
func (Generic) CreateTable(table string, cols []schema.Column) string {
	var sb strings.Builder
	sb.WriteString("create table " + table + "(\n")
	for _, c := range cols {
		sb.WriteString("    " + c.Name + " " + c.DataType + ",\n")
	}
	sb.WriteString(");\n\n")
	return sb.String()
}

// Insert renders insert statement. Table name is always "users" and column names go as quoted strings.
func (Generic) Insert(_ string, cols []schema.Column, values []string) string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return "insert into users values(" + quoteValues(names) + ") values(" + quoteValues(values) + ");\n"
}

// Database renders statements executable by a real database
type Database struct {
	name  string
	quote string // identifier quote character
}

// Name returns dialect name
func (d Database) Name() string { return d.name }

// CreateTable renders "create table" with quoted identifiers and column constraints
func (d Database) CreateTable(table string, cols []schema.Column) string {
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		def := "    " + d.ident(c.Name) + " " + c.DataType
		if c.Constraint != schema.ConstraintNone {
			def += " " + c.Constraint.String()
		}
		defs = append(defs, def)
	}
	return "create table " + d.ident(table) + "(\n" + strings.Join(defs, ",\n") + "\n);\n\n"
}

// Insert renders insert statement with explicit column list
func (d Database) Insert(table string, cols []schema.Column, values []string) string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, d.ident(c.Name))
	}
	return "insert into " + d.ident(table) + "(" + strings.Join(names, ",") + ") values(" + quoteValues(values) + ");\n"
}

func (d Database) ident(s string) string {
	return d.quote + s + d.quote
}

// quoteValues wraps each value in single quotes as is and joins with commas
func quoteValues(vals []string) string {
	res := make([]string, 0, len(vals))
	for _, v := range vals {
		res = append(res, "'"+v+"'")
	}
	return strings.Join(res, ",")
}
