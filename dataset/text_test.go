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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakecheck/lakecheck-go/fsio"
)

func TestReadTextLines(t *testing.T) {
	rows, err := ReadText(strings.NewReader("a\nb\nc\n"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{TextColumn}, rows[0].FieldNames())
	assert.Equal(t, "a", rows[0].Value(TextColumn))
	assert.Equal(t, "c", rows[2].Value(TextColumn))
}

func TestReadTextNoTrailingNewline(t *testing.T) {
	rows, err := ReadText(strings.NewReader("a\nb"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[1].Value(TextColumn))
}

func TestReadTextEmpty(t *testing.T) {
	rows, err := ReadText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteText(t *testing.T) {
	ctx := context.Background()
	fsys := fsio.NewMemFS()

	err := WriteText(ctx, fsys, "nums", []int{1, 2, 3}, func(n int) string {
		return fmt.Sprintf("n=%d", n)
	})
	require.NoError(t, err)

	_, err = fsys.Stat("nums/" + SuccessFileName)
	require.NoError(t, err)

	sess := NewLocalSession(fsys)
	ds, err := sess.Read().Format(FormatText).Load(ctx, "nums")
	require.NoError(t, err)

	got, err := ds.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "n=1", got[0].Value(TextColumn))
	assert.Equal(t, "n=3", got[2].Value(TextColumn))
}

func TestWriteTextNilMapper(t *testing.T) {
	err := WriteText[string](context.Background(), fsio.NewMemFS(), "out", nil, nil)
	assert.ErrorContains(t, err, "mapper")
}

func TestWriteTextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteText(ctx, fsio.NewMemFS(), "out", []string{"a"}, func(s string) string { return s })
	assert.ErrorIs(t, err, context.Canceled)
}
