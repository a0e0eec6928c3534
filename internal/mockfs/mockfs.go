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

// Package mockfs provides testify mocks of the fsio interfaces for
// failure-sequence tests.
package mockfs

import (
	"bytes"
	"errors"
	"io/fs"

	"github.com/stretchr/testify/mock"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// MockFS is a testify mock of fsio.FS. Expectations drive every call,
// so tests can script exact failure sequences.
type MockFS struct {
	mock.Mock
}

var _ fsio.FS = (*MockFS)(nil)

func (m *MockFS) Open(name string) (fsio.File, error) {
	args := m.Called(name)
	f, _ := args.Get(0).(fsio.File)

	return f, args.Error(1)
}

func (m *MockFS) Create(name string, overwrite bool) (fsio.FileWriter, error) {
	args := m.Called(name, overwrite)
	w, _ := args.Get(0).(fsio.FileWriter)

	return w, args.Error(1)
}

func (m *MockFS) Remove(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockFS) RemoveAll(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockFS) Stat(name string) (fsio.FileStatus, error) {
	args := m.Called(name)
	st, _ := args.Get(0).(fsio.FileStatus)

	return st, args.Error(1)
}

func (m *MockFS) List(name string) ([]fsio.FileStatus, error) {
	args := m.Called(name)
	entries, _ := args.Get(0).([]fsio.FileStatus)

	return entries, args.Error(1)
}

func (m *MockFS) Files(name string) fsio.FileIterator {
	args := m.Called(name)
	it, _ := args.Get(0).(fsio.FileIterator)

	return it
}

// MockFile is an in-memory file usable on both sides: reads come from
// Contents, writes collect in Written. Close failures and double
// closes are observable.
type MockFile struct {
	Contents   *bytes.Reader
	Written    bytes.Buffer
	ErrOnWrite bool
	ErrOnClose bool

	closed bool
}

var (
	_ fsio.File       = (*MockFile)(nil)
	_ fsio.FileWriter = (*MockFile)(nil)
)

func (m *MockFile) Stat() (fs.FileInfo, error) {
	return nil, nil
}

func (m *MockFile) Read(p []byte) (int, error) {
	return m.Contents.Read(p)
}

func (m *MockFile) ReadAt(p []byte, off int64) (int, error) {
	if m.closed {
		return 0, errors.New("already closed")
	}

	return m.Contents.ReadAt(p, off)
}

func (m *MockFile) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, errors.New("already closed")
	}

	return m.Contents.Seek(offset, whence)
}

func (m *MockFile) Write(p []byte) (int, error) {
	if m.ErrOnWrite {
		return 0, errors.New("write failed")
	}

	return m.Written.Write(p)
}

func (m *MockFile) Close() error {
	if m.ErrOnClose {
		return errors.New("error on close")
	}
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true

	return nil
}

// Closed reports whether Close completed successfully at least once.
func (m *MockFile) Closed() bool { return m.closed }
