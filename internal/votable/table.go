// Package votable holds an in-memory tabular structure and its VOTable
// file codec.
//
// The persisted format is VOTable 1.4 XML with TABLEDATA serialization,
// the same layout the SVO Filter Profile Service emits. Only a single
// RESOURCE/TABLE per file is supported, which is all the cache ever
// stores.
package votable

import "errors"

// ErrDecode reports a persisted table file whose contents cannot be
// parsed back into a Table.
var ErrDecode = errors.New("cannot decode votable")

// Field describes one column of a table.
type Field struct {
	Name     string
	Datatype string // VOTable datatype: "char", "float", "double", ...
	Unit     string
	UCD      string
}

// Table is an ordered table: a fixed list of fields and rows of string
// cells. Cell values keep their VOTable text representation; char-typed
// cells are normalized to literal text on read.
type Table struct {
	Fields []Field
	Rows   [][]string
}

// ColumnNames returns the field names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}

	return names
}

// Column returns all cell values of the named column in row order.
// The second return is false when no such field exists.
func (t Table) Column(name string) ([]string, bool) {
	col := -1

	for i, f := range t.Fields {
		if f.Name == name {
			col = i
			break
		}
	}

	if col == -1 {
		return nil, false
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if col < len(row) {
			values[i] = row[col]
		}
	}

	return values, true
}

// NumRows returns the row count.
func (t Table) NumRows() int {
	return len(t.Rows)
}
