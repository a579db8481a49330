// -----------------------------------------------------------------------------
// MySQL Grammar for Migration System
// -----------------------------------------------------------------------------
// Blueprint tanımlarından InnoDB/utf8mb4 DDL üretir.
// -----------------------------------------------------------------------------

package migration

import (
	"fmt"
	"strings"
)

type MySQLGrammar struct{}

func NewMySQLGrammar() *MySQLGrammar {
	return &MySQLGrammar{}
}

// CompileCreateTable, CREATE TABLE üretir. Kolonlar, index'ler ve foreign
// key'ler tek bir tanım listesinde virgülle ayrılır.
func (g *MySQLGrammar) CompileCreateTable(table string, columns []Column, indexes []Index, foreignKeys []ForeignKey) string {
	defs := make([]string, 0, len(columns)+len(indexes)+len(foreignKeys))
	for _, column := range columns {
		defs = append(defs, g.compileColumn(column))
	}
	for _, index := range indexes {
		defs = append(defs, g.compileIndex(index))
	}
	for _, fk := range foreignKeys {
		defs = append(defs, g.compileForeignKey(fk))
	}

	return fmt.Sprintf("CREATE TABLE `%s` (\n  %s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci",
		table, strings.Join(defs, ",\n  "))
}

func (g *MySQLGrammar) CompileDropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)
}

func (g *MySQLGrammar) CompileAddColumn(table string, column Column) string {
	return fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN %s", table, g.compileColumn(column))
}

func (g *MySQLGrammar) CompileDropColumn(table string, columnName string) string {
	return fmt.Sprintf("ALTER TABLE `%s` DROP COLUMN `%s`", table, columnName)
}

func (g *MySQLGrammar) CompileAddIndex(table string, index Index) string {
	return fmt.Sprintf("ALTER TABLE `%s` ADD %s", table, g.compileIndex(index))
}

func (g *MySQLGrammar) CompileDropIndex(table string, indexName string) string {
	return fmt.Sprintf("ALTER TABLE `%s` DROP INDEX `%s`", table, indexName)
}

func (g *MySQLGrammar) compileColumn(column Column) string {
	parts := []string{fmt.Sprintf("`%s`", column.Name)}

	switch {
	case column.Type == ColumnTypeString && column.Length > 0:
		parts = append(parts, fmt.Sprintf("%s(%d)", column.Type, column.Length))
	case column.Type == ColumnTypeDecimal && column.Precision > 0:
		parts = append(parts, fmt.Sprintf("%s(%d,%d)", column.Type, column.Precision, column.Scale))
	default:
		parts = append(parts, string(column.Type))
	}

	if column.IsUnsigned {
		parts = append(parts, "UNSIGNED")
	}

	if column.IsNullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}

	if column.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if column.DefaultValue != nil {
		switch v := column.DefaultValue.(type) {
		case string:
			parts = append(parts, fmt.Sprintf("DEFAULT '%s'", strings.ReplaceAll(v, "'", "''")))
		case bool:
			if v {
				parts = append(parts, "DEFAULT 1")
			} else {
				parts = append(parts, "DEFAULT 0")
			}
		default:
			parts = append(parts, fmt.Sprintf("DEFAULT %v", v))
		}
	}

	if column.Primary {
		parts = append(parts, "PRIMARY KEY")
	}

	return strings.Join(parts, " ")
}

func (g *MySQLGrammar) compileIndex(index Index) string {
	columns := quoteAll(index.Columns)

	switch index.Type {
	case IndexTypePrimary:
		return fmt.Sprintf("PRIMARY KEY (%s)", columns)
	case IndexTypeUnique:
		return fmt.Sprintf("UNIQUE KEY `%s` (%s)", index.Name, columns)
	default:
		return fmt.Sprintf("INDEX `%s` (%s)", index.Name, columns)
	}
}

func (g *MySQLGrammar) compileForeignKey(fk ForeignKey) string {
	sql := fmt.Sprintf("CONSTRAINT `%s` FOREIGN KEY (`%s`) REFERENCES `%s` (`%s`)",
		fk.Name, fk.Column, fk.ReferencedTable, fk.ReferencedColumn)
	if fk.OnDeleteAction != "" {
		sql += " ON DELETE " + fk.OnDeleteAction
	}
	if fk.OnUpdateAction != "" {
		sql += " ON UPDATE " + fk.OnUpdateAction
	}
	return sql
}

func quoteAll(columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = fmt.Sprintf("`%s`", col)
	}
	return strings.Join(quoted, ", ")
}
