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

package cloudtest

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakecheck/lakecheck-go/fsio"
	"github.com/lakecheck/lakecheck-go/internal/mockfs"
)

func TestPutGetRoundTrip(t *testing.T) {
	in := New(fsio.NewMemFS())

	content := "line one\nline two with unicode é世界\n"
	require.NoError(t, in.PutFileContent("bucket/notes.txt", content))

	got, err := in.GetFileContent("bucket/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Put replaces rather than appends.
	require.NoError(t, in.PutFileContent("bucket/notes.txt", "shorter"))
	got, err = in.GetFileContent("bucket/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "shorter", got)
}

func TestGetFileContentMissing(t *testing.T) {
	in := New(fsio.NewMemFS())

	_, err := in.GetFileContent("bucket/absent.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDelete(t *testing.T) {
	in := New(fsio.NewMemFS())

	require.NoError(t, in.PutFileContent("bucket/tree/a.txt", "a"))
	require.NoError(t, in.PutFileContent("bucket/tree/sub/b.txt", "b"))

	require.NoError(t, in.Delete("bucket/tree"))

	_, err := in.GetFileContent("bucket/tree/a.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = in.GetFileContent("bucket/tree/sub/b.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDeleteWrapsFailure(t *testing.T) {
	mfs := &mockfs.MockFS{}
	mfs.On("RemoveAll", "bucket/stuck").Return(errors.New("permission denied"))

	in := New(mfs)
	err := in.Delete("bucket/stuck")

	require.Error(t, err)
	assert.ErrorContains(t, err, "cannot delete bucket/stuck")
	assert.ErrorContains(t, err, "mockfs.MockFS")
	assert.ErrorContains(t, err, "permission denied")
	mfs.AssertExpectations(t)
}
