package scanner

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

type Queryer interface {
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

// Scanner converts pgx.Rows into a slice of T.
//
// # example
//
//	type control struct {
//		Seq    int    `sql:"seq"`
//		CRQ    string `sql:"sequencia"`
//		Status string
//	}
//
//	ctrls, err := scanner.New[control]().QueryAll(
//		ctx, conn, `select "seq", "sequencia", "status" from "activity_control"`,
//	)
//
// # mapping rule
//
// A column is mapped into a field of T
//
//  1. with the tag `sql:"column_name"`,
//  2. or named as the column,
//  3. or named as CamelCase of the column ("excel_data_id" -> "ExcelDataId").
//
// When T is a primitive (or time.Time), the query should have exactly one column.
type Scanner[T any] interface {
	// ScanAll scans all rows. It does not close rows.
	ScanAll(pgx.Rows) ([]T, error)

	// QueryAll sends the query and scans all result rows.
	QueryAll(context.Context, Queryer, string, ...interface{}) ([]T, error)
}

func New[T any]() Scanner[T] {
	tval := reflect.TypeOf(*new(T))

	if tval.AssignableTo(reflect.TypeOf(time.Time{})) {
		return &singleColumnScanner[T]{}
	}

	switch tval.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return &singleColumnScanner[T]{}
	}

	byTag := map[string]string{}
	byName := map[string]string{}
	for i := 0; i < tval.NumField(); i++ {
		f := tval.Field(i)
		byName[f.Name] = f.Name
		if tag, ok := f.Tag.Lookup("sql"); ok {
			byTag[tag] = f.Name
		}
	}
	return &structScanner[T]{byTag: byTag, byName: byName}
}

func camel(s string) string {
	b := &strings.Builder{}
	for _, ss := range strings.Split(s, "_") {
		if len(ss) == 0 {
			b.WriteString("_")
			continue
		}
		b.WriteString(strings.ToUpper(ss[0:1]))
		b.WriteString(ss[1:])
	}
	return b.String()
}

type structScanner[T any] struct {
	byTag  map[string]string
	byName map[string]string
}

func (s *structScanner[T]) fieldFor(col string) (string, error) {
	if f, ok := s.byTag[col]; ok {
		return f, nil
	}
	if f, ok := s.byName[col]; ok {
		return f, nil
	}
	if f, ok := s.byName[camel(col)]; ok {
		return f, nil
	}
	return "", fmt.Errorf(`field for column "%s" is not found in type "%T"`, col, *new(T))
}

func (s *structScanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	fields := []string{}
	for _, fd := range rows.FieldDescriptions() {
		f, err := s.fieldFor(string(fd.Name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		re := reflect.ValueOf(elem).Elem()

		dest := make([]interface{}, len(fields))
		for nth, f := range fields {
			dest[nth] = re.FieldByName(f).Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ret = append(ret, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *structScanner[T]) QueryAll(ctx context.Context, conn Queryer, q string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}

type singleColumnScanner[T any] struct{}

func (s *singleColumnScanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	cols := rows.FieldDescriptions()
	if len(cols) != 1 {
		return nil, fmt.Errorf(`%d columns are given for %T, but it takes one`, len(cols), *new(T))
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		field := reflect.ValueOf(elem).Elem()

		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		v := reflect.ValueOf(values[0])
		if !v.IsValid() || !v.CanConvert(field.Type()) {
			return nil, fmt.Errorf(
				`column "%s" (type: %s in sql, %T in golang) can not be converted to %T`,
				cols[0].Name, oidName(cols[0].DataTypeOID), values[0], *elem,
			)
		}
		field.Set(v.Convert(field.Type()))
		ret = append(ret, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *singleColumnScanner[T]) QueryAll(ctx context.Context, conn Queryer, q string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}

// oidName names types used in the activity store, for error messages.
func oidName(oid uint32) string {
	switch oid {
	case pgtype.BoolOID:
		return "bool"
	case pgtype.Int2OID:
		return "int2"
	case pgtype.Int4OID:
		return "int4"
	case pgtype.Int8OID:
		return "int8"
	case pgtype.TextOID:
		return "text"
	case pgtype.VarcharOID:
		return "varchar"
	case pgtype.Float8OID:
		return "float8"
	case pgtype.NumericOID:
		return "numeric"
	case pgtype.TimestampOID:
		return "timestamp"
	case pgtype.TimestamptzOID:
		return "timestamptz"
	case pgtype.UnknownOID:
		return "unknown"
	}
	return fmt.Sprintf("undefined oid(%d)", oid)
}
