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
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// ReadParquet reads an entire parquet stream into an arrow table. The
// caller owns the returned table and must Release it.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (arrow.Table, error) {
	rdr, err := file.NewParquetReader(r)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	arrRdr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}

	return arrRdr.ReadTable(ctx)
}

func writeParquet(w io.Writer, tbl arrow.Table) error {
	chunkSize := tbl.NumRows()
	if chunkSize < 1 {
		chunkSize = 1
	}

	return pqarrow.WriteTable(tbl, w, chunkSize, nil, pqarrow.DefaultWriterProps())
}

// WriteParquet writes an arrow table as a single parquet file on fsys,
// replacing any previous content at name.
func WriteParquet(fsys fsio.FS, name string, tbl arrow.Table) error {
	w, err := fsys.Create(name, true)
	if err != nil {
		return err
	}
	if err := writeParquet(w, tbl); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}
