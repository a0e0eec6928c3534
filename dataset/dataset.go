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

// Package dataset defines the compute-session surface used to save and
// load structured data on any fsio backend, plus a local engine that
// implements it without a cluster. Directory layouts follow the lake
// convention: part files plus a _SUCCESS marker, hidden entries
// prefixed with "." or "_".
package dataset

import (
	"context"
	"errors"
	"strings"
)

// Data formats understood by readers and writers.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
	FormatAvro    = "avro"
	FormatText    = "text"
)

// SaveMode controls how Save treats an existing target path.
type SaveMode string

const (
	// SaveModeErrorIfExists fails the save when the target exists.
	SaveModeErrorIfExists SaveMode = "error"
	// SaveModeOverwrite removes the target before writing.
	SaveModeOverwrite SaveMode = "overwrite"
	// SaveModeAppend adds new part files to an existing target.
	SaveModeAppend SaveMode = "append"
	// SaveModeIgnore silently skips the save when the target exists.
	SaveModeIgnore SaveMode = "ignore"
)

// Reader and writer option keys.
const (
	OptHeader      = "header"
	OptDelimiter   = "delimiter"
	OptCompression = "compression"
)

// SuccessFileName is the marker written after all part files of a save
// have been committed.
const SuccessFileName = "_SUCCESS"

var (
	// ErrEmptyFile reports a zero-length file where structured data was
	// expected. It is returned before any parser sees the file.
	ErrEmptyFile = errors.New("empty file, no data to load")

	// ErrUnsupportedFormat reports a format name outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// ErrPathExists reports a save target that already exists under
	// SaveModeErrorIfExists.
	ErrPathExists = errors.New("path already exists")
)

// IsHidden reports whether a file's base name marks it as hidden or
// temporary in the lake directory convention.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Session is a handle to a compute engine that can read datasets.
type Session interface {
	// Read begins building a load operation.
	Read() Reader
	// Close releases the session and any remote resources behind it.
	Close() error
}

// Reader is a builder for load operations. Format and Option return the
// receiver so calls chain; configuration errors surface at Load.
type Reader interface {
	Format(format string) Reader
	Option(key, value string) Reader
	Load(ctx context.Context, path string) (Dataset, error)
}

// Dataset is loaded structured data.
type Dataset interface {
	// Count returns the number of rows.
	Count(ctx context.Context) (int64, error)
	// Collect materializes every row.
	Collect(ctx context.Context) ([]Row, error)
	// Write begins building a save operation for this dataset.
	Write() Writer
}

// Writer is a builder for save operations, mirroring Reader.
type Writer interface {
	Format(format string) Writer
	Option(key, value string) Writer
	Mode(mode SaveMode) Writer
	Save(ctx context.Context, path string) error
}

// Row is a single record with named fields.
type Row interface {
	// FieldNames returns the field names in schema order.
	FieldNames() []string
	// Value returns the named field's value, or nil when absent.
	Value(name string) any
}
