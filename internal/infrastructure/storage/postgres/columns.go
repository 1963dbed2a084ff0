package postgres

import (
	"reflect"
	"sync"
)

// columnIndex maps a struct type to the field index paths of its db tags.
var columnIndex sync.Map // map[reflect.Type][]columnField

type columnField struct {
	name  string
	index []int
}

func fieldsOf(t reflect.Type) []columnField {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := columnIndex.Load(t); ok {
		return cached.([]columnField)
	}

	var fields []columnField
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if f.Anonymous {
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			fields = append(fields, columnField{name: tag, index: f.Index})
		}
	}
	columnIndex.Store(t, fields)
	return fields
}

// ExtractDBColumns returns the column names of T's "db" tags in field
// order, including promoted fields of embedded structs.
func ExtractDBColumns[T any]() []string {
	fields := fieldsOf(reflect.TypeFor[T]())
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.name
	}
	return cols
}

// RowValues returns the db-tagged field values of v in ExtractDBColumns order.
func RowValues(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	fields := fieldsOf(rv.Type())
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = rv.FieldByIndex(f.index).Interface()
	}
	return out
}

// CopyRows converts items into COPY rows.
func CopyRows[T any](items []T) [][]any {
	rows := make([][]any, len(items))
	for i, item := range items {
		rows[i] = RowValues(item)
	}
	return rows
}
