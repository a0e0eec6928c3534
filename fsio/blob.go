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
	"io"
	"io/fs"
	"path"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// blobFS is a file system backed by a bucket in an object store.
type blobFS struct {
	bucket *blob.Bucket
	ctx    context.Context
	opts   *blob.ReaderOptions
	prefix string
}

// OpenBlob wraps an already-open bucket as an FS. The prefix (typically
// the bucket name, or bucket name plus a base path) is stripped from
// incoming names so that full URIs and bucket-relative keys both work.
//
// The returned FS stores ctx for use in every subsequent call.
func OpenBlob(ctx context.Context, bucket *blob.Bucket, prefix string) FS {
	return &blobFS{bucket: bucket, ctx: ctx, opts: &blob.ReaderOptions{}, prefix: prefix}
}

func (b *blobFS) preprocess(n string) string {
	_, after, found := strings.Cut(n, "://")
	if found {
		n = after
	}

	out := strings.TrimPrefix(n, b.prefix)

	return strings.Trim(out, "/")
}

func blobError(op, name string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		err = fs.ErrNotExist
	}

	return &fs.PathError{Op: op, Path: name, Err: err}
}

func (b *blobFS) Open(name string) (File, error) {
	key := b.preprocess(name)
	r, err := b.bucket.NewReader(b.ctx, key, b.opts)
	if err != nil {
		return nil, blobError("open", name, err)
	}

	return &blobOpenFile{Reader: r, name: path.Base(key)}, nil
}

func (b *blobFS) Create(name string, overwrite bool) (FileWriter, error) {
	key := b.preprocess(name)
	if !overwrite {
		exists, err := b.bucket.Exists(b.ctx, key)
		if err != nil {
			return nil, blobError("create", name, err)
		}
		if exists {
			return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
		}
	}
	w, err := b.bucket.NewWriter(b.ctx, key, nil)
	if err != nil {
		return nil, blobError("create", name, err)
	}

	return &blobWriteFile{Writer: w, name: key}, nil
}

func (b *blobFS) Remove(name string) error {
	key := b.preprocess(name)
	if err := b.bucket.Delete(b.ctx, key); err != nil {
		return blobError("remove", name, err)
	}

	return nil
}

func (b *blobFS) RemoveAll(name string) error {
	key := b.preprocess(name)
	iter := b.bucket.List(&blob.ListOptions{Prefix: childPrefix(key)})
	for {
		item, err := iter.Next(b.ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return blobError("removeall", name, err)
		}
		if err := b.bucket.Delete(b.ctx, item.Key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return blobError("removeall", name, err)
		}
	}
	// The path itself may be a plain object rather than a prefix.
	if key != "" {
		if err := b.bucket.Delete(b.ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return blobError("removeall", name, err)
		}
	}

	return nil
}

func (b *blobFS) Stat(name string) (FileStatus, error) {
	key := b.preprocess(name)
	if key == "" {
		return FileStatus{Path: "", IsDir: true}, nil
	}

	attrs, err := b.bucket.Attributes(b.ctx, key)
	if err == nil {
		return FileStatus{
			Path:      key,
			Size:      attrs.Size,
			BlockSize: DefaultBlockSize,
			ModTime:   attrs.ModTime,
		}, nil
	}
	if gcerrors.Code(err) != gcerrors.NotFound {
		return FileStatus{}, blobError("stat", name, err)
	}

	// Object stores have no real directories; a "directory" exists when
	// at least one object lives under its prefix.
	iter := b.bucket.List(&blob.ListOptions{Prefix: key + "/"})
	if _, err := iter.Next(b.ctx); err == nil {
		return FileStatus{Path: key, IsDir: true}, nil
	} else if err != io.EOF {
		return FileStatus{}, blobError("stat", name, err)
	}

	return FileStatus{}, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (b *blobFS) List(name string) ([]FileStatus, error) {
	key := b.preprocess(name)
	iter := b.bucket.List(&blob.ListOptions{Prefix: childPrefix(key), Delimiter: "/"})
	var out []FileStatus
	for {
		item, err := iter.Next(b.ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, blobError("list", name, err)
		}
		out = append(out, blobStatus(item))
	}
	if len(out) > 0 || key == "" {
		return out, nil
	}

	// Nothing under the prefix: the path is either a plain object, in
	// which case listing it returns its own status, or it is missing.
	st, err := b.Stat(name)
	if err != nil {
		return nil, err
	}
	if st.IsDir {
		return nil, &fs.PathError{Op: "list", Path: name, Err: fs.ErrNotExist}
	}

	return []FileStatus{st}, nil
}

func (b *blobFS) Files(name string) FileIterator {
	key := b.preprocess(name)

	return &blobIterator{
		ctx:  b.ctx,
		name: name,
		iter: b.bucket.List(&blob.ListOptions{Prefix: childPrefix(key)}),
	}
}

// childPrefix converts a key to the prefix its children share. Buckets
// expect directory prefixes to end in the delimiter, except at the root.
func childPrefix(key string) string {
	if key == "" {
		return ""
	}

	return key + "/"
}

func blobStatus(item *blob.ListObject) FileStatus {
	if item.IsDir {
		return FileStatus{Path: strings.TrimSuffix(item.Key, "/"), IsDir: true}
	}

	return FileStatus{
		Path:      item.Key,
		Size:      item.Size,
		BlockSize: DefaultBlockSize,
		ModTime:   item.ModTime,
	}
}

type blobIterator struct {
	ctx  context.Context
	name string
	iter *blob.ListIterator
}

func (it *blobIterator) Next() (FileStatus, error) {
	for {
		item, err := it.iter.Next(it.ctx)
		if err == io.EOF {
			return FileStatus{}, io.EOF
		}
		if err != nil {
			return FileStatus{}, blobError("list", it.name, err)
		}
		if item.IsDir {
			continue
		}

		return blobStatus(item), nil
	}
}

// blobOpenFile is a single open blob as a File. The embedded reader
// does not support io.ReaderAt on its own, so ReadAt seeks explicitly.
type blobOpenFile struct {
	*blob.Reader
	name string
}

func (f *blobOpenFile) ReadAt(p []byte, off int64) (int, error) {
	finalOff, err := f.Reader.Seek(off, io.SeekStart)
	if err != nil {
		return -1, err
	} else if finalOff != off {
		return -1, io.ErrUnexpectedEOF
	}

	return f.Read(p)
}

func (f *blobOpenFile) Name() string               { return f.name }
func (f *blobOpenFile) Mode() fs.FileMode          { return fs.ModeIrregular }
func (f *blobOpenFile) Sys() interface{}           { return f.Reader }
func (f *blobOpenFile) IsDir() bool                { return false }
func (f *blobOpenFile) Stat() (fs.FileInfo, error) { return f, nil }

type blobWriteFile struct {
	*blob.Writer
	name string
}

func (f *blobWriteFile) Name() string { return f.name }
