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
	"io"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// avroRecordName matches the top-level record name Spark's avro writer
// emits, so round trips through Spark resolve against the same schema.
const avroRecordName = "topLevelRecord"

// ReadAvro decodes an object container file into rows. Column order
// follows the writer schema's field order, and the writer schema is
// returned so a later avro save can reuse it unchanged.
func ReadAvro(r io.Reader) ([]string, []Row, avro.Schema, error) {
	dec, err := ocf.NewDecoder(r, ocf.WithDecoderSchemaCache(&avro.SchemaCache{}))
	if err != nil {
		return nil, nil, nil, err
	}

	rec, ok := dec.Schema().(*avro.RecordSchema)
	if !ok {
		return nil, nil, nil, fmt.Errorf("avro writer schema is a %s, expected a record", dec.Schema().Type())
	}

	names := make([]string, len(rec.Fields()))
	for i, f := range rec.Fields() {
		names[i] = f.Name()
	}

	var rows []Row
	for dec.HasNext() {
		var values map[string]any
		if err := dec.Decode(&values); err != nil {
			return nil, nil, nil, err
		}
		rows = append(rows, &mapRow{names: names, values: values})
	}
	if err := dec.Error(); err != nil {
		return nil, nil, nil, err
	}

	return names, rows, rec, nil
}

// WriteAvro creates name on fsys and encodes rows as an object
// container file with the given writer schema.
func WriteAvro(fsys fsio.FS, name string, schema avro.Schema, rows []Row, codec string) error {
	cname, err := avroCodec(codec)
	if err != nil {
		return err
	}

	w, err := fsys.Create(name, true)
	if err != nil {
		return err
	}

	enc, err := ocf.NewEncoderWithSchema(schema, w,
		ocf.WithSchemaMarshaler(ocf.FullSchemaMarshaler),
		ocf.WithEncoderSchemaCache(&avro.SchemaCache{}),
		ocf.WithCodec(cname))
	if err != nil {
		w.Close()

		return err
	}

	for _, row := range rows {
		if err := enc.Encode(rowValues(row)); err != nil {
			enc.Close()
			w.Close()

			return err
		}
	}

	if err := enc.Close(); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}

func avroCodec(name string) (ocf.CodecName, error) {
	switch name {
	case "", "deflate":
		return ocf.Deflate, nil
	case "null", "uncompressed":
		return ocf.Null, nil
	case "snappy":
		return ocf.Snappy, nil
	case "zstandard":
		return ocf.ZStandard, nil
	}

	return "", fmt.Errorf("unsupported avro codec %q", name)
}

func rowValues(r Row) map[string]any {
	if mr, ok := r.(*mapRow); ok {
		return mr.values
	}

	names := r.FieldNames()
	values := make(map[string]any, len(names))
	for _, n := range names {
		values[n] = r.Value(n)
	}

	return values
}

// inferAvroSchema derives a writer schema from the first non-null value
// in each column. Columns holding only nulls cannot be typed and fail.
func inferAvroSchema(names []string, rows []Row) (avro.Schema, error) {
	fields := make([]*avro.Field, 0, len(names))
	for _, name := range names {
		var sample any
		for _, row := range rows {
			if v := row.Value(name); v != nil {
				sample = v

				break
			}
		}

		var fschema avro.Schema
		switch sample.(type) {
		case bool:
			fschema = avro.NewPrimitiveSchema(avro.Boolean, nil)
		case int, int8, int16, int32, int64:
			fschema = avro.NewPrimitiveSchema(avro.Long, nil)
		case float32, float64:
			fschema = avro.NewPrimitiveSchema(avro.Double, nil)
		case string:
			fschema = avro.NewPrimitiveSchema(avro.String, nil)
		case []byte:
			fschema = avro.NewPrimitiveSchema(avro.Bytes, nil)
		case time.Time:
			fschema = avro.NewPrimitiveSchema(avro.Long,
				avro.NewPrimitiveLogicalSchema(avro.TimestampMillis))
		case nil:
			return nil, fmt.Errorf("cannot infer avro type for column %q: no non-null values", name)
		default:
			return nil, fmt.Errorf("cannot infer avro type for column %q from value of type %T", name, sample)
		}

		field, err := avro.NewField(name, fschema)
		if err != nil {
			return nil, fmt.Errorf("invalid avro field %q: %w", name, err)
		}
		fields = append(fields, field)
	}

	return avro.NewRecordSchema(avroRecordName, "", fields)
}
