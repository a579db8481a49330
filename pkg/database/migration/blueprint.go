package migration

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Blueprint - Table Schema Builder
// -----------------------------------------------------------------------------

// Blueprint, bir tablonun kolon, index ve foreign key tanımlarını toplar.
type Blueprint struct {
	table       string
	columnRefs  []*Column
	indexes     []Index
	foreignKeys []*ForeignKey
}

func NewBlueprint(table string) *Blueprint {
	return &Blueprint{table: table}
}

// ID, auto-increment BIGINT UNSIGNED primary key ekler.
func (b *Blueprint) ID() *Column {
	return b.addColumn(Column{Name: "id", Type: ColumnTypeBigInt, IsUnsigned: true, AutoIncrement: true, Primary: true})
}

// ForeignID, başka bir tablonun ID'sine işaret eden BIGINT UNSIGNED kolon.
func (b *Blueprint) ForeignID(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeBigInt, IsUnsigned: true})
}

func (b *Blueprint) String(name string, length int) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeString, Length: length})
}

func (b *Blueprint) Text(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeText})
}

func (b *Blueprint) Integer(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeInteger})
}

func (b *Blueprint) BigInteger(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeBigInt})
}

// Boolean, TINYINT(1) kolon.
func (b *Blueprint) Boolean(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeBoolean})
}

// Decimal, para gibi kesin değerler için DECIMAL(precision, scale).
func (b *Blueprint) Decimal(name string, precision, scale int) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeDecimal, Precision: precision, Scale: scale})
}

func (b *Blueprint) Timestamp(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeTimestamp})
}

func (b *Blueprint) DateTime(name string) *Column {
	return b.addColumn(Column{Name: name, Type: ColumnTypeDateTime})
}

// Timestamps, created_at ve updated_at ekler. Değerleri uygulama yazar;
// repository'ler bunları time.Time olarak okuduğundan NOT NULL'dır.
func (b *Blueprint) Timestamps() {
	b.DateTime("created_at")
	b.DateTime("updated_at")
}

func (b *Blueprint) addColumn(column Column) *Column {
	c := &column
	b.columnRefs = append(b.columnRefs, c)
	return c
}

// Primary, birleşik primary key ekler (pivot tablolar için).
func (b *Blueprint) Primary(columns ...string) {
	b.indexes = append(b.indexes, Index{Columns: columns, Type: IndexTypePrimary})
}

func (b *Blueprint) Unique(columns ...string) {
	b.indexes = append(b.indexes, Index{
		Name:    fmt.Sprintf("%s_%s_unique", b.table, strings.Join(columns, "_")),
		Columns: columns,
		Type:    IndexTypeUnique,
	})
}

func (b *Blueprint) Index(columns ...string) {
	b.indexes = append(b.indexes, Index{
		Name:    fmt.Sprintf("%s_%s_index", b.table, strings.Join(columns, "_")),
		Columns: columns,
		Type:    IndexTypeIndex,
	})
}

// Foreign, kolona foreign key kısıtı ekler.
//
//	t.Foreign("event_id").References("id").On("events").Cascade()
func (b *Blueprint) Foreign(column string) *ForeignKey {
	fk := &ForeignKey{
		Name:             fmt.Sprintf("%s_%s_foreign", b.table, column),
		Column:           column,
		ReferencedColumn: "id",
	}
	b.foreignKeys = append(b.foreignKeys, fk)
	return fk
}

// Columns, kolon tanımlarını ekleme sırasıyla döndürür.
func (b *Blueprint) Columns() []Column {
	columns := make([]Column, len(b.columnRefs))
	for i, c := range b.columnRefs {
		columns[i] = *c
	}
	return columns
}

func (b *Blueprint) ForeignKeys() []ForeignKey {
	keys := make([]ForeignKey, len(b.foreignKeys))
	for i, fk := range b.foreignKeys {
		keys[i] = *fk
	}
	return keys
}

// -----------------------------------------------------------------------------
// Column Definition
// -----------------------------------------------------------------------------

type ColumnType string

const (
	ColumnTypeString    ColumnType = "VARCHAR"
	ColumnTypeText      ColumnType = "TEXT"
	ColumnTypeInteger   ColumnType = "INT"
	ColumnTypeBigInt    ColumnType = "BIGINT"
	ColumnTypeBoolean   ColumnType = "TINYINT(1)"
	ColumnTypeTimestamp ColumnType = "TIMESTAMP"
	ColumnTypeDateTime  ColumnType = "DATETIME"
	ColumnTypeDecimal   ColumnType = "DECIMAL"
)

type Column struct {
	Name          string
	Type          ColumnType
	Length        int
	Precision     int
	Scale         int
	IsNullable    bool
	DefaultValue  interface{}
	IsUnsigned    bool
	AutoIncrement bool
	Primary       bool
}

func (c *Column) Nullable() *Column {
	c.IsNullable = true
	return c
}

func (c *Column) Default(value interface{}) *Column {
	c.DefaultValue = value
	return c
}

func (c *Column) Unsigned() *Column {
	c.IsUnsigned = true
	return c
}

// -----------------------------------------------------------------------------
// Index / Foreign Key Definition
// -----------------------------------------------------------------------------

type IndexType string

const (
	IndexTypeIndex   IndexType = "INDEX"
	IndexTypeUnique  IndexType = "UNIQUE"
	IndexTypePrimary IndexType = "PRIMARY KEY"
)

type Index struct {
	Name    string
	Columns []string
	Type    IndexType
}

type ForeignKey struct {
	Name             string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	OnDeleteAction   string
	OnUpdateAction   string
}

func (fk *ForeignKey) References(column string) *ForeignKey {
	fk.ReferencedColumn = column
	return fk
}

func (fk *ForeignKey) On(table string) *ForeignKey {
	fk.ReferencedTable = table
	return fk
}

func (fk *ForeignKey) OnDelete(action string) *ForeignKey {
	fk.OnDeleteAction = action
	return fk
}

func (fk *ForeignKey) OnUpdate(action string) *ForeignKey {
	fk.OnUpdateAction = action
	return fk
}

// Cascade, ON DELETE ve ON UPDATE için CASCADE ayarlar.
func (fk *ForeignKey) Cascade() *ForeignKey {
	fk.OnDeleteAction = "CASCADE"
	fk.OnUpdateAction = "CASCADE"
	return fk
}
