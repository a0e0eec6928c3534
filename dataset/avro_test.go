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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakecheck/lakecheck-go/fsio"
)

func TestAvroCodec(t *testing.T) {
	for in, want := range map[string]ocf.CodecName{
		"":             ocf.Deflate,
		"deflate":      ocf.Deflate,
		"null":         ocf.Null,
		"uncompressed": ocf.Null,
		"snappy":       ocf.Snappy,
		"zstandard":    ocf.ZStandard,
	} {
		got, err := avroCodec(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := avroCodec("lzo")
	assert.ErrorContains(t, err, "unsupported avro codec")
}

func TestInferAvroSchema(t *testing.T) {
	names := []string{"id", "name", "score", "ok", "raw", "ts"}
	rows := []Row{
		NewRow(names, map[string]any{
			"id": int64(1), "name": "a", "score": 1.5,
			"ok": true, "raw": []byte{0x01}, "ts": time.Now(),
		}),
	}

	schema, err := inferAvroSchema(names, rows)
	require.NoError(t, err)

	rec, ok := schema.(*avro.RecordSchema)
	require.True(t, ok)
	assert.Equal(t, avroRecordName, rec.Name())

	fields := rec.Fields()
	require.Len(t, fields, 6)
	assert.Equal(t, avro.Long, fields[0].Type().Type())
	assert.Equal(t, avro.String, fields[1].Type().Type())
	assert.Equal(t, avro.Double, fields[2].Type().Type())
	assert.Equal(t, avro.Boolean, fields[3].Type().Type())
	assert.Equal(t, avro.Bytes, fields[4].Type().Type())

	tsType, ok := fields[5].Type().(*avro.PrimitiveSchema)
	require.True(t, ok)
	assert.Equal(t, avro.Long, tsType.Type())
	require.NotNil(t, tsType.Logical())
	assert.Equal(t, avro.TimestampMillis, tsType.Logical().Type())
}

func TestInferAvroSchemaAllNull(t *testing.T) {
	names := []string{"gone"}
	rows := []Row{NewRow(names, map[string]any{"gone": nil})}

	_, err := inferAvroSchema(names, rows)
	assert.ErrorContains(t, err, "no non-null values")
}

func TestInferAvroSchemaUnsupportedType(t *testing.T) {
	names := []string{"bad"}
	rows := []Row{NewRow(names, map[string]any{"bad": map[string]int{}})}

	_, err := inferAvroSchema(names, rows)
	assert.ErrorContains(t, err, "cannot infer avro type")
}

func TestWriteReadAvroRoundTrip(t *testing.T) {
	fsys := fsio.NewMemFS()
	names, rows := testRows()

	schema, err := inferAvroSchema(names, rows)
	require.NoError(t, err)

	require.NoError(t, WriteAvro(fsys, "rows.avro", schema, rows, "snappy"))

	f, err := fsys.Open("rows.avro")
	require.NoError(t, err)
	defer f.Close()

	outNames, outRows, outSchema, err := ReadAvro(f)
	require.NoError(t, err)
	assert.Equal(t, names, outNames)
	require.Len(t, outRows, 3)
	assert.Equal(t, int64(2), outRows[1].Value("id"))
	assert.Equal(t, "c", outRows[2].Value("name"))
	assert.Equal(t, 1.5, outRows[0].Value("amount"))

	rec, ok := outSchema.(*avro.RecordSchema)
	require.True(t, ok)
	require.Len(t, rec.Fields(), 3)
	assert.Equal(t, avro.Long, rec.Fields()[0].Type().Type())
	assert.Equal(t, avro.Double, rec.Fields()[2].Type().Type())
}

func TestAvroTimestampRoundTrip(t *testing.T) {
	names := []string{"ts"}
	ts := time.UnixMilli(1700000000123).UTC()
	rows := []Row{NewRow(names, map[string]any{"ts": ts})}

	schema, err := inferAvroSchema(names, rows)
	require.NoError(t, err)

	fsys := fsio.NewMemFS()
	require.NoError(t, WriteAvro(fsys, "t.avro", schema, rows, ""))

	f, err := fsys.Open("t.avro")
	require.NoError(t, err)
	defer f.Close()

	_, outRows, _, err := ReadAvro(f)
	require.NoError(t, err)
	require.Len(t, outRows, 1)

	got, ok := outRows[0].Value("ts").(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
}

func TestReadAvroNonRecordSchema(t *testing.T) {
	var buf bytes.Buffer
	enc, err := ocf.NewEncoderWithSchema(avro.MustParse(`"string"`), &buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode("x"))
	require.NoError(t, enc.Close())

	_, _, _, err = ReadAvro(bytes.NewReader(buf.Bytes()))
	assert.ErrorContains(t, err, "expected a record")
}

func TestLocalAvroResaveReusesSchema(t *testing.T) {
	ctx := context.Background()
	fsys := fsio.NewMemFS()
	sess := NewLocalSession(fsys)
	names, rows := testRows()

	require.NoError(t, sess.NewDataset(names, rows).Write().Format(FormatAvro).Save(ctx, "a"))

	ds, err := sess.Read().Format(FormatAvro).Load(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, ds.Write().Format(FormatAvro).Save(ctx, "b"))

	back, err := sess.Read().Format(FormatAvro).Load(ctx, "b")
	require.NoError(t, err)

	got, err := back.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[2].Value("id"))
	assert.Equal(t, "a", got[0].Value("name"))
}
