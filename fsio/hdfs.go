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
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	hdfs "github.com/colinmarc/hdfs/v2"
)

// Constants for HDFS configuration options
const (
	HDFSNameNode            = "hdfs.namenode"
	HDFSUser                = "hdfs.user"
	HDFSUseDatanodeHostname = "hdfs.use-datanode-hostname"
)

// DefaultHDFSBlockSize is reported for files when the namenode does not
// expose a per-file value through the client API.
const DefaultHDFSBlockSize int64 = 128 * 1024 * 1024

// HdfsFS is an implementation of FS backed by an HDFS cluster.
type HdfsFS struct{ client *hdfs.Client }

func (h *HdfsFS) preprocess(name string) string {
	if strings.HasPrefix(name, "hdfs://") {
		if u, err := url.Parse(name); err == nil {
			if u.Path != "" {
				return u.Path
			}
		}
		name = strings.TrimPrefix(name, "hdfs://")
		if idx := strings.IndexByte(name, '/'); idx >= 0 {
			name = name[idx:]
		}
	}

	return name
}

// Open opens the named file for reading from HDFS.
func (h *HdfsFS) Open(name string) (File, error) {
	name = h.preprocess(name)
	f, err := h.client.Open(name)
	if err != nil {
		return nil, err
	}

	return hdfsFile{f}, nil
}

// Create opens the named file for writing, creating parent directories
// as needed. Without overwrite an existing file is an error.
func (h *HdfsFS) Create(name string, overwrite bool) (FileWriter, error) {
	name = h.preprocess(name)

	if _, err := h.client.Stat(name); err == nil {
		if !overwrite {
			return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
		}
		if err := h.client.Remove(name); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if dir := path.Dir(name); dir != "" && dir != "/" && dir != "." {
		if err := h.client.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return h.client.Create(name)
}

// Remove removes the named file or (empty) directory from HDFS.
func (h *HdfsFS) Remove(name string) error {
	name = h.preprocess(name)

	return h.client.Remove(name)
}

// RemoveAll removes the named path and everything below it.
func (h *HdfsFS) RemoveAll(name string) error {
	name = h.preprocess(name)

	return h.client.RemoveAll(name)
}

// Stat returns status for the named file or directory.
func (h *HdfsFS) Stat(name string) (FileStatus, error) {
	name = h.preprocess(name)
	info, err := h.client.Stat(name)
	if err != nil {
		return FileStatus{}, err
	}

	return hdfsStatus(name, info), nil
}

// List returns the direct children of the named directory, or the entry
// itself when name refers to a file.
func (h *HdfsFS) List(name string) ([]FileStatus, error) {
	name = h.preprocess(name)
	info, err := h.client.Stat(name)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []FileStatus{hdfsStatus(name, info)}, nil
	}

	entries, err := h.client.ReadDir(name)
	if err != nil {
		return nil, err
	}

	statuses := make([]FileStatus, 0, len(entries))
	for _, entry := range entries {
		statuses = append(statuses, hdfsStatus(path.Join(name, entry.Name()), entry))
	}

	return statuses, nil
}

// Files iterates over every file below the named path, recursively.
func (h *HdfsFS) Files(name string) FileIterator {
	name = h.preprocess(name)

	var entries []FileStatus
	err := h.client.Walk(name, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			entries = append(entries, hdfsStatus(p, info))
		}

		return nil
	})
	if err != nil {
		return errIterator(err)
	}

	return &sliceIterator{entries: entries}
}

func hdfsStatus(p string, info os.FileInfo) FileStatus {
	st := FileStatus{
		Path:    p,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
	if !st.IsDir {
		st.BlockSize = DefaultHDFSBlockSize
	}

	return st
}

// hdfsFile wraps a FileReader to implement fs.File, io.ReadSeekCloser, and io.ReaderAt.
type hdfsFile struct{ *hdfs.FileReader }

func (f hdfsFile) Stat() (fs.FileInfo, error) { return f.FileReader.Stat(), nil }

// createHDFSFS constructs an HDFS-backed FS from a parsed URL and configuration properties.
func createHDFSFS(_ context.Context, parsed *url.URL, props map[string]string) (FS, error) {
	addresses := []string{}
	if nn := props[HDFSNameNode]; nn != "" {
		addresses = append(addresses, nn)
	} else if parsed != nil && parsed.Host != "" {
		addresses = append(addresses, parsed.Host)
	}
	if len(addresses) == 0 {
		return nil, errors.New("hdfs namenode not specified")
	}
	opts := hdfs.ClientOptions{Addresses: addresses}
	if user := props[HDFSUser]; user != "" {
		opts.User = user
	}
	if v, ok := props[HDFSUseDatanodeHostname]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.UseDatanodeHostname = b
		}
	}
	client, err := hdfs.NewClient(opts)
	if err != nil {
		return nil, err
	}

	return &HdfsFS{client: client}, nil
}

func init() {
	Register("hdfs", SchemeFactory(createHDFSFS))
}
