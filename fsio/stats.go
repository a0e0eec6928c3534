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

package fsio

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Named counters exposed by StorageStats.Map.
const (
	StatBytesRead    = "bytesRead"
	StatBytesWritten = "bytesWritten"
	StatReadOps      = "readOps"
	StatWriteOps     = "writeOps"
	StatListOps      = "listOps"
	StatDeleteOps    = "deleteOps"
	StatStatOps      = "statOps"
)

// StorageStats is a point-in-time snapshot of the I/O activity seen by a
// CountingFS.
type StorageStats struct {
	BytesRead    int64
	BytesWritten int64
	ReadOps      int64
	WriteOps     int64
	ListOps      int64
	DeleteOps    int64
	StatOps      int64
}

// Map returns the snapshot as named counters.
func (s StorageStats) Map() map[string]int64 {
	return map[string]int64{
		StatBytesRead:    s.BytesRead,
		StatBytesWritten: s.BytesWritten,
		StatReadOps:      s.ReadOps,
		StatWriteOps:     s.WriteOps,
		StatListOps:      s.ListOps,
		StatDeleteOps:    s.DeleteOps,
		StatStatOps:      s.StatOps,
	}
}

// Sub returns the counter deltas between this snapshot and an earlier one.
func (s StorageStats) Sub(earlier StorageStats) StorageStats {
	return StorageStats{
		BytesRead:    s.BytesRead - earlier.BytesRead,
		BytesWritten: s.BytesWritten - earlier.BytesWritten,
		ReadOps:      s.ReadOps - earlier.ReadOps,
		WriteOps:     s.WriteOps - earlier.WriteOps,
		ListOps:      s.ListOps - earlier.ListOps,
		DeleteOps:    s.DeleteOps - earlier.DeleteOps,
		StatOps:      s.StatOps - earlier.StatOps,
	}
}

func (s StorageStats) String() string {
	return fmt.Sprintf("read %d ops / %s, wrote %d ops / %s, list %d, delete %d, stat %d",
		s.ReadOps, humanize.Bytes(uint64(max(s.BytesRead, 0))),
		s.WriteOps, humanize.Bytes(uint64(max(s.BytesWritten, 0))),
		s.ListOps, s.DeleteOps, s.StatOps)
}

// CountingFS decorates another FS with per-operation and per-byte
// counters. All methods are safe for concurrent use as long as the
// underlying FS is.
type CountingFS struct {
	fs FS

	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
	readOps      atomic.Int64
	writeOps     atomic.Int64
	listOps      atomic.Int64
	deleteOps    atomic.Int64
	statOps      atomic.Int64
}

// NewCountingFS wraps fsys with zeroed counters.
func NewCountingFS(fsys FS) *CountingFS {
	return &CountingFS{fs: fsys}
}

// Unwrap returns the decorated FS.
func (c *CountingFS) Unwrap() FS { return c.fs }

// Stats returns a snapshot of the counters.
func (c *CountingFS) Stats() StorageStats {
	return StorageStats{
		BytesRead:    c.bytesRead.Load(),
		BytesWritten: c.bytesWritten.Load(),
		ReadOps:      c.readOps.Load(),
		WriteOps:     c.writeOps.Load(),
		ListOps:      c.listOps.Load(),
		DeleteOps:    c.deleteOps.Load(),
		StatOps:      c.statOps.Load(),
	}
}

// Reset zeroes all counters.
func (c *CountingFS) Reset() {
	c.bytesRead.Store(0)
	c.bytesWritten.Store(0)
	c.readOps.Store(0)
	c.writeOps.Store(0)
	c.listOps.Store(0)
	c.deleteOps.Store(0)
	c.statOps.Store(0)
}

func (c *CountingFS) Open(name string) (File, error) {
	c.readOps.Add(1)
	f, err := c.fs.Open(name)
	if err != nil {
		return nil, err
	}

	return countingFile{File: f, n: &c.bytesRead}, nil
}

func (c *CountingFS) Create(name string, overwrite bool) (FileWriter, error) {
	c.writeOps.Add(1)
	w, err := c.fs.Create(name, overwrite)
	if err != nil {
		return nil, err
	}

	return countingWriter{FileWriter: w, n: &c.bytesWritten}, nil
}

func (c *CountingFS) Remove(name string) error {
	c.deleteOps.Add(1)

	return c.fs.Remove(name)
}

func (c *CountingFS) RemoveAll(name string) error {
	c.deleteOps.Add(1)

	return c.fs.RemoveAll(name)
}

func (c *CountingFS) Stat(name string) (FileStatus, error) {
	c.statOps.Add(1)

	return c.fs.Stat(name)
}

func (c *CountingFS) List(name string) ([]FileStatus, error) {
	c.listOps.Add(1)

	return c.fs.List(name)
}

func (c *CountingFS) Files(name string) FileIterator {
	c.listOps.Add(1)

	return c.fs.Files(name)
}

type countingFile struct {
	File
	n *atomic.Int64
}

func (f countingFile) Read(p []byte) (int, error) {
	n, err := f.File.Read(p)
	f.n.Add(int64(n))

	return n, err
}

func (f countingFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.File.ReadAt(p, off)
	f.n.Add(int64(n))

	return n, err
}

type countingWriter struct {
	FileWriter
	n *atomic.Int64
}

func (w countingWriter) Write(p []byte) (int, error) {
	n, err := w.FileWriter.Write(p)
	w.n.Add(int64(n))

	return n, err
}
