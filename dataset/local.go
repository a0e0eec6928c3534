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
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"github.com/hamba/avro/v2"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// LocalSession is a Session backed by an fsio filesystem instead of a
// compute cluster. It reads and writes the same directory layouts a
// Spark job would, which makes it the reference engine for tests and
// for validating cluster output.
type LocalSession struct {
	fsys fsio.FS
}

var (
	_ Session = (*LocalSession)(nil)
	_ Reader  = (*localReader)(nil)
	_ Dataset = (*localDataset)(nil)
	_ Writer  = (*localWriter)(nil)
)

// NewLocalSession returns a session over fsys.
func NewLocalSession(fsys fsio.FS) *LocalSession {
	return &LocalSession{fsys: fsys}
}

// FS returns the filesystem this session operates on.
func (s *LocalSession) FS() fsio.FS { return s.fsys }

func (s *LocalSession) Read() Reader {
	return &localReader{sess: s, format: FormatParquet, opts: map[string]string{}}
}

func (s *LocalSession) Close() error { return nil }

// NewDataset wraps in-memory rows as a dataset bound to this session,
// ready to be written out.
func (s *LocalSession) NewDataset(names []string, rows []Row) Dataset {
	return &localDataset{sess: s, names: names, rows: rows}
}

type localReader struct {
	sess   *LocalSession
	format string
	opts   map[string]string
}

func (r *localReader) Format(format string) Reader {
	r.format = format

	return r
}

func (r *localReader) Option(key, value string) Reader {
	r.opts[key] = value

	return r
}

func (r *localReader) Load(ctx context.Context, p string) (Dataset, error) {
	if err := validFormat(r.format); err != nil {
		return nil, err
	}

	fsys := r.sess.fsys
	st, err := fsys.Stat(p)
	if err != nil {
		return nil, err
	}

	var files []fsio.FileStatus
	if st.IsDir {
		infos, err := fsys.List(p)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if info.IsDir || IsHidden(info.Name()) {
				continue
			}
			files = append(files, info)
		}
		slices.SortFunc(files, func(a, b fsio.FileStatus) int {
			return strings.Compare(a.Path, b.Path)
		})
	} else {
		files = []fsio.FileStatus{st}
	}

	ds := &localDataset{sess: r.sess}
	for _, f := range files {
		names, rows, schema, err := r.loadFile(ctx, f)
		if err != nil {
			return nil, err
		}

		if ds.names == nil {
			ds.names, ds.avroSchema = names, schema
		} else if !slices.Equal(ds.names, names) {
			return nil, fmt.Errorf("schema mismatch: %s has columns %v, want %v",
				f.Path, names, ds.names)
		}
		ds.rows = append(ds.rows, rows...)
	}

	return ds, nil
}

func (r *localReader) loadFile(ctx context.Context, info fsio.FileStatus) ([]string, []Row, avro.Schema, error) {
	// The structured formats all need at least a footer or header, so a
	// zero-length file is reported before any parser sees it.
	if r.format != FormatText && info.Size == 0 {
		return nil, nil, nil, fmt.Errorf("%s: %w", info.Path, ErrEmptyFile)
	}

	f, err := r.sess.fsys.Open(info.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	switch r.format {
	case FormatParquet:
		tbl, err := ReadParquet(ctx, f)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read parquet %s: %w", info.Path, err)
		}
		defer tbl.Release()
		names, rows := TableRows(tbl)

		return names, rows, nil, nil
	case FormatCSV:
		copts, err := csvOptionsFrom(r.opts)
		if err != nil {
			return nil, nil, nil, err
		}
		tbl, err := ReadCSV(f, copts)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read csv %s: %w", info.Path, err)
		}
		defer tbl.Release()
		names, rows := TableRows(tbl)

		return names, rows, nil, nil
	case FormatAvro:
		names, rows, schema, err := ReadAvro(f)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read avro %s: %w", info.Path, err)
		}

		return names, rows, schema, nil
	case FormatText:
		rows, err := ReadText(f)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read text %s: %w", info.Path, err)
		}

		return []string{TextColumn}, rows, nil, nil
	}

	return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, r.format)
}

type localDataset struct {
	sess  *LocalSession
	names []string
	rows  []Row

	// avroSchema carries the writer schema of an avro load so a later
	// avro save reuses it instead of re-inferring types.
	avroSchema avro.Schema
}

func (d *localDataset) Count(ctx context.Context) (int64, error) {
	return int64(len(d.rows)), nil
}

func (d *localDataset) Collect(ctx context.Context) ([]Row, error) {
	return slices.Clone(d.rows), nil
}

func (d *localDataset) Write() Writer {
	return &localWriter{
		ds:     d,
		format: FormatParquet,
		mode:   SaveModeErrorIfExists,
		opts:   map[string]string{},
	}
}

type localWriter struct {
	ds     *localDataset
	format string
	mode   SaveMode
	opts   map[string]string
}

func (w *localWriter) Format(format string) Writer {
	w.format = format

	return w
}

func (w *localWriter) Option(key, value string) Writer {
	w.opts[key] = value

	return w
}

func (w *localWriter) Mode(mode SaveMode) Writer {
	w.mode = mode

	return w
}

func (w *localWriter) Save(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validFormat(w.format); err != nil {
		return err
	}

	switch w.mode {
	case SaveModeErrorIfExists, SaveModeOverwrite, SaveModeAppend, SaveModeIgnore:
	default:
		return fmt.Errorf("unknown save mode %q", w.mode)
	}

	fsys := w.ds.sess.fsys
	st, err := fsys.Stat(dir)
	switch {
	case err == nil:
		switch w.mode {
		case SaveModeErrorIfExists:
			return fmt.Errorf("%w: %s", ErrPathExists, dir)
		case SaveModeIgnore:
			return nil
		case SaveModeOverwrite:
			if err := fsys.RemoveAll(dir); err != nil {
				return err
			}
		case SaveModeAppend:
			if !st.IsDir {
				return fmt.Errorf("cannot append to %s: not a directory", dir)
			}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	if err := w.writePart(partFileName(dir, w.format)); err != nil {
		return err
	}

	// The marker commits the save, so it goes last.
	return writeSuccessMarker(fsys, dir)
}

func (w *localWriter) writePart(name string) error {
	d, fsys := w.ds, w.ds.sess.fsys

	switch w.format {
	case FormatParquet:
		tbl, err := RowsTable(memory.DefaultAllocator, d.names, d.rows)
		if err != nil {
			return err
		}
		defer tbl.Release()

		return WriteParquet(fsys, name, tbl)
	case FormatCSV:
		copts, err := csvOptionsFrom(w.opts)
		if err != nil {
			return err
		}
		tbl, err := RowsTable(memory.DefaultAllocator, d.names, d.rows)
		if err != nil {
			return err
		}
		defer tbl.Release()

		return WriteCSV(fsys, name, tbl, copts)
	case FormatAvro:
		schema := d.avroSchema
		if schema == nil {
			var err error
			if schema, err = inferAvroSchema(d.names, d.rows); err != nil {
				return err
			}
		}

		return WriteAvro(fsys, name, schema, d.rows, w.opts[OptCompression])
	case FormatText:
		if len(d.names) != 1 {
			return fmt.Errorf("text save requires exactly one column, dataset has %d", len(d.names))
		}
		col := d.names[0]

		return writeTextLines(fsys, name, d.rows, func(r Row) string {
			return fmt.Sprint(r.Value(col))
		})
	}

	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, w.format)
}

func validFormat(format string) error {
	switch format {
	case FormatParquet, FormatCSV, FormatAvro, FormatText:
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func csvOptionsFrom(opts map[string]string) (CSVOptions, error) {
	copts := CSVOptions{Header: true}
	if v, ok := opts[OptHeader]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return copts, fmt.Errorf("invalid csv header option %q", v)
		}
		copts.Header = b
	}
	if v, ok := opts[OptDelimiter]; ok {
		runes := []rune(v)
		if len(runes) != 1 {
			return copts, fmt.Errorf("csv delimiter must be a single character, got %q", v)
		}
		copts.Delimiter = runes[0]
	}

	return copts, nil
}

func partFileName(dir, format string) string {
	return path.Join(dir, "part-00000-"+uuid.NewString()+formatExt(format))
}

func formatExt(format string) string {
	switch format {
	case FormatParquet:
		return ".parquet"
	case FormatCSV:
		return ".csv"
	case FormatAvro:
		return ".avro"
	case FormatText:
		return ".txt"
	}

	return ""
}

func writeSuccessMarker(fsys fsio.FS, dir string) error {
	f, err := fsys.Create(path.Join(dir, SuccessFileName), true)
	if err != nil {
		return err
	}

	return f.Close()
}
