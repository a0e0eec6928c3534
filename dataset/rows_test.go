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
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRow(t *testing.T) {
	row := NewRow([]string{"id", "name"}, map[string]any{"id": int64(1), "name": "a"})

	assert.Equal(t, []string{"id", "name"}, row.FieldNames())
	assert.Equal(t, int64(1), row.Value("id"))
	assert.Equal(t, "a", row.Value("name"))
	assert.Nil(t, row.Value("missing"))
}

func TestRowsTableRoundTrip(t *testing.T) {
	names := []string{"id", "small", "name", "score", "ok", "raw", "ts"}
	ts := time.UnixMilli(1700000000000).UTC()

	in := []Row{
		NewRow(names, map[string]any{
			"id": int64(1), "small": int32(7), "name": "a", "score": 1.5,
			"ok": true, "raw": []byte{0x01}, "ts": ts,
		}),
		NewRow(names, map[string]any{
			"id": int64(2), "small": int32(8), "name": "b", "score": 2.5,
			"ok": false, "raw": []byte{0x02}, "ts": ts.Add(time.Second),
		}),
	}

	tbl, err := RowsTable(memory.DefaultAllocator, names, in)
	require.NoError(t, err)
	defer tbl.Release()

	require.EqualValues(t, 2, tbl.NumRows())
	require.EqualValues(t, 7, tbl.NumCols())

	outNames, outRows := TableRows(tbl)
	assert.Equal(t, names, outNames)
	require.Len(t, outRows, 2)

	assert.Equal(t, int64(1), outRows[0].Value("id"))
	assert.Equal(t, int64(8), outRows[1].Value("small"))
	assert.Equal(t, "b", outRows[1].Value("name"))
	assert.Equal(t, 2.5, outRows[1].Value("score"))
	assert.Equal(t, true, outRows[0].Value("ok"))
	assert.Equal(t, []byte{0x02}, outRows[1].Value("raw"))

	gotTS, ok := outRows[0].Value("ts").(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(gotTS))
}

func TestRowsTableNulls(t *testing.T) {
	names := []string{"id", "note"}
	in := []Row{
		NewRow(names, map[string]any{"id": int64(1), "note": nil}),
		NewRow(names, map[string]any{"id": int64(2), "note": "x"}),
	}

	tbl, err := RowsTable(memory.DefaultAllocator, names, in)
	require.NoError(t, err)
	defer tbl.Release()

	_, outRows := TableRows(tbl)
	require.Len(t, outRows, 2)
	assert.Nil(t, outRows[0].Value("note"))
	assert.Equal(t, "x", outRows[1].Value("note"))
}

func TestRowsTableAllNullColumn(t *testing.T) {
	names := []string{"id", "gone"}
	in := []Row{
		NewRow(names, map[string]any{"id": int64(1), "gone": nil}),
	}

	tbl, err := RowsTable(memory.DefaultAllocator, names, in)
	require.NoError(t, err)
	defer tbl.Release()

	assert.True(t, tbl.Schema().Field(1).Type.ID() == arrow.STRING)

	_, outRows := TableRows(tbl)
	require.Len(t, outRows, 1)
	assert.Nil(t, outRows[0].Value("gone"))
}

func TestRowsTableUnsupportedType(t *testing.T) {
	names := []string{"bad"}
	in := []Row{NewRow(names, map[string]any{"bad": make(chan int)})}

	_, err := RowsTable(memory.DefaultAllocator, names, in)
	assert.ErrorContains(t, err, "cannot map value of type")
}

func TestTableRowsChunked(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	bldr := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bldr.Release()

	bldr.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
	rec1 := bldr.NewRecord()
	defer rec1.Release()

	bldr.Field(0).(*array.Int64Builder).AppendValues([]int64{3}, nil)
	rec2 := bldr.NewRecord()
	defer rec2.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec1, rec2})
	defer tbl.Release()

	names, rows := TableRows(tbl)
	assert.Equal(t, []string{"id"}, names)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1), rows[0].Value("id"))
	assert.Equal(t, int64(3), rows[2].Value("id"))
}
