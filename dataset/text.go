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
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// TextColumn is the single column name of datasets loaded from the text
// format, matching what Spark's text source produces.
const TextColumn = "value"

// ReadText loads each line of r as a single-column row. Line
// terminators are dropped and an empty input yields no rows.
func ReadText(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	names := []string{TextColumn}
	var rows []Row
	for sc.Scan() {
		rows = append(rows, &mapRow{
			names:  names,
			values: map[string]any{TextColumn: sc.Text()},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// WriteText saves elems under dir in the part-file layout, one line per
// element. The mapper renders each element; there is no implicit
// serialization of arbitrary types, callers state the conversion.
func WriteText[T any](ctx context.Context, fsys fsio.FS, dir string, elems []T, mapper func(T) string) error {
	if mapper == nil {
		return errors.New("text save requires an element-to-string mapper")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeTextLines(fsys, partFileName(dir, FormatText), elems, mapper); err != nil {
		return err
	}

	return writeSuccessMarker(fsys, dir)
}

func writeTextLines[T any](fsys fsio.FS, name string, elems []T, mapper func(T) string) error {
	w, err := fsys.Create(name, true)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, elem := range elems {
		if _, err := bw.WriteString(mapper(elem)); err != nil {
			w.Close()

			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			w.Close()

			return err
		}
	}

	if err := bw.Flush(); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}
