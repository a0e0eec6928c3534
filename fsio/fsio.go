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

// Package fsio provides a pluggable filesystem abstraction over local
// disk, HDFS, and object stores (S3, GCS, Azure, in-memory) behind a
// URI scheme registry.
package fsio

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"time"
)

// DefaultBlockSize is the block size reported for backends that have no
// native notion of one. Completeness checks treat a zero block size as
// a corrupt file, so every status carries a positive value.
const DefaultBlockSize int64 = 32 * 1024 * 1024

// ErrFSNotFound is returned when none of the registered schemes match
// the requested location.
var ErrFSNotFound = errors.New("filesystem not found for scheme")

// File is the interface for readable files. ReadAt allows the dataset
// readers to do positioned reads without reopening the file.
type File interface {
	fs.File
	io.ReadSeekCloser
	io.ReaderAt
}

// FileWriter is the interface for writable files. The write is not
// guaranteed durable until Close returns nil.
type FileWriter interface {
	io.WriteCloser
}

// FileStatus is a point-in-time snapshot of a single entry in a
// filesystem namespace. It is never cached or refreshed.
type FileStatus struct {
	Path      string
	Size      int64
	BlockSize int64
	ModTime   time.Time
	IsDir     bool
}

// Name returns the base name of the entry.
func (st FileStatus) Name() string { return path.Base(st.Path) }

// FileIterator pages through a (possibly remote) listing one entry at a
// time. Next returns io.EOF once the listing is exhausted.
type FileIterator interface {
	Next() (FileStatus, error)
}

// CollectFiles drains an iterator into a slice.
func CollectFiles(it FileIterator) ([]FileStatus, error) {
	var out []FileStatus
	for {
		st, err := it.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
}

// FS is the filesystem abstraction used throughout this module. Names
// may be full URIs ("s3://bucket/key") or backend-native paths;
// implementations strip the scheme and bucket they were opened with.
type FS interface {
	// Open opens the named file for reading.
	Open(name string) (File, error)
	// Create opens the named file for writing, creating parent
	// directories where the backend has them. With overwrite false an
	// existing file yields fs.ErrExist.
	Create(name string, overwrite bool) (FileWriter, error)
	// Remove removes the named file or empty directory.
	Remove(name string) error
	// RemoveAll removes the named path and any children it has.
	RemoveAll(name string) error
	// Stat returns the status of the named path. Missing paths yield an
	// error matching fs.ErrNotExist.
	Stat(name string) (FileStatus, error)
	// List returns the immediate children of the named directory. On a
	// plain file it returns that file's status alone.
	List(name string) ([]FileStatus, error)
	// Files returns a recursive iterator over the plain files below the
	// named path.
	Files(name string) FileIterator
}

// ReadFull reads the entire named file.
func ReadFull(fsys FS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFull writes p to the named file, replacing any previous content.
func WriteFull(fsys FS, name string, p []byte) error {
	w, err := fsys.Create(name, true)
	if err != nil {
		return err
	}
	if _, err := w.Write(p); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}

type sliceIterator struct {
	entries []FileStatus
	err     error
}

func (it *sliceIterator) Next() (FileStatus, error) {
	if it.err != nil {
		return FileStatus{}, it.err
	}
	if len(it.entries) == 0 {
		return FileStatus{}, io.EOF
	}
	st := it.entries[0]
	it.entries = it.entries[1:]

	return st, nil
}

func errIterator(err error) FileIterator { return &sliceIterator{err: err} }
