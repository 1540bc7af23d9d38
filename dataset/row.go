/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package dataset defines the positional rows exchanged between functions.
package dataset

import (
	"fmt"
	"reflect"
	"strings"
)

// RowKind is the change kind carried by a row in a changelog stream.
type RowKind int8

const (
	// Insert a new row
	Insert RowKind = iota
	// UpdateBefore retracts the previous version of an updated row
	UpdateBefore
	// UpdateAfter is the new version of an updated row
	UpdateAfter
	// Delete retracts a row
	Delete
)

// ShortString returns the changelog notation, e.g. "+I" or "-D".
func (k RowKind) ShortString() string {
	switch k {
	case Insert:
		return "+I"
	case UpdateBefore:
		return "-U"
	case UpdateAfter:
		return "+U"
	case Delete:
		return "-D"
	default:
		return "?"
	}
}

func (k RowKind) String() string {
	switch k {
	case Insert:
		return "INSERT"
	case UpdateBefore:
		return "UPDATE_BEFORE"
	case UpdateAfter:
		return "UPDATE_AFTER"
	case Delete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// IsRetraction reports whether rows of this kind withdraw an earlier contribution.
func (k RowKind) IsRetraction() bool {
	return k == UpdateBefore || k == Delete
}

// ParseRowKind parses "+I", "-U", "+U", "-D" or the long names. Empty input is Insert.
func ParseRowKind(s string) (RowKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "+I", "INSERT":
		return Insert, nil
	case "-U", "UPDATE_BEFORE":
		return UpdateBefore, nil
	case "+U", "UPDATE_AFTER":
		return UpdateAfter, nil
	case "-D", "DELETE":
		return Delete, nil
	default:
		return Insert, fmt.Errorf("unknown row kind %q", s)
	}
}

// Row is an ordered list of field values with a change kind.
type Row struct {
	Kind   RowKind
	Fields []interface{}
}

// Of creates an insert row holding a copy of values.
func Of(values ...interface{}) *Row {
	return OfKind(Insert, values...)
}

// OfKind creates a row of the given kind holding a copy of values.
func OfKind(kind RowKind, values ...interface{}) *Row {
	fields := make([]interface{}, len(values))
	copy(fields, values)
	return &Row{Kind: kind, Fields: fields}
}

// Arity returns the number of fields.
func (r *Row) Arity() int {
	if r == nil {
		return 0
	}
	return len(r.Fields)
}

// Field returns the value at pos, or nil when pos is out of range.
func (r *Row) Field(pos int) interface{} {
	if r == nil || pos < 0 || pos >= len(r.Fields) {
		return nil
	}
	return r.Fields[pos]
}

// StringField returns the string at pos. A nil value yields ("", false, nil).
func (r *Row) StringField(pos int) (string, bool, error) {
	switch v := r.Field(pos).(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	default:
		return "", false, fmt.Errorf("field %d: expected string, got %T", pos, v)
	}
}

// BoolField returns the bool at pos. A nil value yields (false, false, nil).
func (r *Row) BoolField(pos int) (bool, bool, error) {
	switch v := r.Field(pos).(type) {
	case nil:
		return false, false, nil
	case bool:
		return v, true, nil
	case *bool:
		if v == nil {
			return false, false, nil
		}
		return *v, true, nil
	default:
		return false, false, fmt.Errorf("field %d: expected bool, got %T", pos, v)
	}
}

// RowField returns the nested row at pos. Both *Row and []interface{} are accepted.
func (r *Row) RowField(pos int) (*Row, error) {
	switch v := r.Field(pos).(type) {
	case nil:
		return nil, nil
	case *Row:
		return v, nil
	case Row:
		return &v, nil
	case []interface{}:
		return Of(v...), nil
	default:
		return nil, fmt.Errorf("field %d: expected row, got %T", pos, v)
	}
}

// Equal compares kind and field values.
func (r *Row) Equal(other *Row) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Kind == other.Kind && reflect.DeepEqual(r.Fields, other.Fields)
}

func (r *Row) String() string {
	if r == nil {
		return "<nil>"
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%v", f)
	}
	return r.Kind.ShortString() + "[" + strings.Join(parts, ", ") + "]"
}

// Column is a named, typed field of a RowType.
type Column struct {
	Name string
	Type string
}

// RowType describes the rows produced by a table function.
type RowType []Column

// Names returns the column names in order.
func (t RowType) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// ToMap maps row fields onto the column names. Missing fields map to nil.
func (t RowType) ToMap(row *Row) map[string]interface{} {
	result := make(map[string]interface{}, len(t))
	for i, c := range t {
		result[c.Name] = row.Field(i)
	}
	return result
}

func (t RowType) String() string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = c.Name + " " + c.Type
	}
	return "ROW<" + strings.Join(parts, ", ") + ">"
}
