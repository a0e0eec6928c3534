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
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// CSVOptions configures csv reads and writes.
type CSVOptions struct {
	// Header marks the first line as column names on read, and emits a
	// header line on write.
	Header bool
	// Delimiter defaults to a comma.
	Delimiter rune
}

func (o CSVOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}

	return o.Delimiter
}

// ReadCSV reads an entire csv stream into an arrow table, inferring
// column types from the data. The caller owns the returned table.
func ReadCSV(r io.Reader, opts CSVOptions) (arrow.Table, error) {
	rdr := csv.NewInferringReader(r,
		csv.WithHeader(opts.Header),
		csv.WithComma(opts.delimiter()),
		csv.WithChunk(1024))
	defer rdr.Release()

	var recs []arrow.Record
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()

	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	// A bare EOF only means the input held no data rows.
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if len(recs) == 0 {
		schema := rdr.Schema()
		if schema == nil {
			schema = arrow.NewSchema(nil, nil)
		}

		return array.NewTableFromRecords(schema, nil), nil
	}

	return array.NewTableFromRecords(recs[0].Schema(), recs), nil
}

func writeCSV(w io.Writer, tbl arrow.Table, opts CSVOptions) error {
	cw := csv.NewWriter(w, tbl.Schema(),
		csv.WithHeader(opts.Header),
		csv.WithComma(opts.delimiter()))

	rdr := array.NewTableReader(tbl, 1024)
	defer rdr.Release()

	for rdr.Next() {
		if err := cw.Write(rdr.Record()); err != nil {
			return err
		}
	}
	if err := rdr.Err(); err != nil {
		return err
	}

	return cw.Flush()
}

// WriteCSV writes an arrow table as a single csv file on fsys,
// replacing any previous content at name.
func WriteCSV(fsys fsio.FS, name string, tbl arrow.Table, opts CSVOptions) error {
	w, err := fsys.Create(name, true)
	if err != nil {
		return err
	}
	if err := writeCSV(w, tbl, opts); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}
