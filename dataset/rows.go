// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package dataset

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// mapRow is the Row implementation shared by every local load path.
type mapRow struct {
	names  []string
	values map[string]any
}

// NewRow builds a Row from field names in schema order and their values.
func NewRow(names []string, values map[string]any) Row {
	return &mapRow{names: names, values: values}
}

func (r *mapRow) FieldNames() []string { return r.names }

func (r *mapRow) Value(name string) any { return r.values[name] }

// colValue extracts a column's value at the given row index as a plain
// Go value.
func colValue(col arrow.Array, row int) any {
	if col.IsNull(row) {
		return nil
	}

	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(row)
	case *array.Int8:
		return int64(arr.Value(row))
	case *array.Int16:
		return int64(arr.Value(row))
	case *array.Int32:
		return int64(arr.Value(row))
	case *array.Int64:
		return arr.Value(row)
	case *array.Float32:
		return float64(arr.Value(row))
	case *array.Float64:
		return arr.Value(row)
	case *array.String:
		return arr.Value(row)
	case *array.LargeString:
		return arr.Value(row)
	case *array.Binary:
		return arr.Value(row)
	case *array.Date32:
		return arr.Value(row).ToTime()
	case *array.Timestamp:
		return arr.Value(row).ToTime(arr.DataType().(*arrow.TimestampType).Unit)
	default:
		return col.GetOneForMarshal(row)
	}
}

// TableRows converts an arrow table into column names and rows.
func TableRows(tbl arrow.Table) ([]string, []Row) {
	names := make([]string, tbl.NumCols())
	for i, field := range tbl.Schema().Fields() {
		names[i] = field.Name
	}

	rows := make([]Row, tbl.NumRows())
	for i := range rows {
		rows[i] = &mapRow{names: names, values: make(map[string]any, len(names))}
	}

	// Chunked columns flatten by walking each chunk in order.
	for c := 0; c < int(tbl.NumCols()); c++ {
		rowIdx := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				rows[rowIdx].(*mapRow).values[names[c]] = colValue(chunk, j)
				rowIdx++
			}
		}
	}

	return names, rows
}

// RowsTable builds an arrow table from rows, inferring each column's
// type from its first non-nil value.
func RowsTable(mem memory.Allocator, names []string, rows []Row) (arrow.Table, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		dt, err := inferType(name, rows)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()

	for _, row := range rows {
		for i, name := range names {
			if err := appendValue(bldr.Field(i), row.Value(name)); err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
		}
	}

	rec := bldr.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func inferType(name string, rows []Row) (arrow.DataType, error) {
	for _, row := range rows {
		switch v := row.Value(name); v.(type) {
		case nil:
			continue
		case bool:
			return arrow.FixedWidthTypes.Boolean, nil
		case int, int8, int16, int32, int64:
			return arrow.PrimitiveTypes.Int64, nil
		case float32, float64:
			return arrow.PrimitiveTypes.Float64, nil
		case string:
			return arrow.BinaryTypes.String, nil
		case []byte:
			return arrow.BinaryTypes.Binary, nil
		case time.Time:
			return arrow.FixedWidthTypes.Timestamp_ms, nil
		default:
			return nil, fmt.Errorf("column %s: cannot map value of type %T to an arrow type", name, v)
		}
	}

	// All null (or no rows): string is the safe fallback.
	return arrow.BinaryTypes.String, nil
}

func appendValue(bldr array.Builder, v any) error {
	if v == nil {
		bldr.AppendNull()

		return nil
	}

	switch b := bldr.(type) {
	case *array.BooleanBuilder:
		val, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		b.Append(val)
	case *array.Int64Builder:
		val, err := toInt64(v)
		if err != nil {
			return err
		}
		b.Append(val)
	case *array.Float64Builder:
		switch val := v.(type) {
		case float32:
			b.Append(float64(val))
		case float64:
			b.Append(val)
		default:
			return fmt.Errorf("expected float, got %T", v)
		}
	case *array.StringBuilder:
		val, ok := v.(string)
		if !ok {
			val = fmt.Sprint(v)
		}
		b.Append(val)
	case *array.BinaryBuilder:
		val, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("expected bytes, got %T", v)
		}
		b.Append(val)
	case *array.TimestampBuilder:
		val, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time, got %T", v)
		}
		b.Append(arrow.Timestamp(val.UnixMilli()))
	default:
		return fmt.Errorf("unsupported builder type %T", bldr)
	}

	return nil
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
