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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalFS is an implementation of FS for the local file system.
type LocalFS struct{}

func (LocalFS) path(name string) string {
	return strings.TrimPrefix(name, "file://")
}

func (l LocalFS) Open(name string) (File, error) {
	return os.Open(l.path(name))
}

func (l LocalFS) Create(name string, overwrite bool) (FileWriter, error) {
	name = l.path(name)
	if err := os.MkdirAll(filepath.Dir(name), 0o777); err != nil {
		return nil, err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	return os.OpenFile(name, flags, 0o666)
}

func (l LocalFS) Remove(name string) error {
	return os.Remove(l.path(name))
}

func (l LocalFS) RemoveAll(name string) error {
	return os.RemoveAll(l.path(name))
}

func (l LocalFS) Stat(name string) (FileStatus, error) {
	name = l.path(name)
	info, err := os.Stat(name)
	if err != nil {
		return FileStatus{}, err
	}

	return localStatus(name, info), nil
}

func (l LocalFS) List(name string) ([]FileStatus, error) {
	name = l.path(name)
	st, err := l.Stat(name)
	if err != nil {
		return nil, err
	}
	if !st.IsDir {
		return []FileStatus{st}, nil
	}

	entries, err := os.ReadDir(name)
	if err != nil {
		return nil, err
	}
	out := make([]FileStatus, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, localStatus(filepath.Join(name, entry.Name()), info))
	}

	return out, nil
}

func (l LocalFS) Files(name string) FileIterator {
	name = l.path(name)
	var entries []FileStatus
	err := filepath.WalkDir(name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, localStatus(p, info))

		return nil
	})
	if err != nil {
		return errIterator(err)
	}

	return &sliceIterator{entries: entries}
}

func localStatus(p string, info fs.FileInfo) FileStatus {
	return FileStatus{
		Path:      p,
		Size:      info.Size(),
		BlockSize: DefaultBlockSize,
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
	}
}
