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

package main

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakecheck/lakecheck-go/cloudtest"
	"github.com/lakecheck/lakecheck-go/fsio"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	// redirect os.Stdout to test the output of the function
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	return buf.String()
}

func Test_textOutput_Statuses(t *testing.T) {
	var buf bytes.Buffer
	pterm.SetDefaultOutput(&buf)
	pterm.DisableColor()
	buf.Reset()

	textOutput{}.Statuses([]fsio.FileStatus{
		{Path: "s3://bucket/data/part-0.parquet", Size: 1500,
			ModTime: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{Path: "s3://bucket/data/sub", IsDir: true},
	})

	out := buf.String()
	for _, want := range []string{
		"Path", "Size", "Modified", "Kind",
		"s3://bucket/data/part-0.parquet", "1.5 kB", "2024-05-01T10:30:00Z", "file",
		"s3://bucket/data/sub", "0 B", "-", "dir",
	} {
		assert.Contains(t, out, want)
	}
}

func Test_textOutput_Status(t *testing.T) {
	var buf bytes.Buffer
	pterm.SetDefaultOutput(&buf)
	pterm.DisableColor()
	buf.Reset()

	textOutput{}.Status(fsio.FileStatus{
		Path:      "s3://bucket/data/part-0.parquet",
		Size:      18,
		BlockSize: 4194304,
		ModTime:   time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	})

	out := buf.String()
	for _, want := range []string{
		"s3://bucket/data/part-0.parquet", "part-0.parquet",
		"18 B", "4.2 MB", "2024-05-01T10:30:00Z", "file",
	} {
		assert.Contains(t, out, want)
	}
}

func Test_textOutput_Report(t *testing.T) {
	tests := []struct {
		name     string
		rep      cloudtest.CopyReport
		expected string
	}{
		{
			name:     "with checksum",
			rep:      cloudtest.CopyReport{Bytes: 1024, Elapsed: time.Second, Checksum: "deadbeef"},
			expected: "1.0 kB in 1s (1.0 kB/s)\nblake3: deadbeef\n",
		},
		{
			name:     "without checksum",
			rep:      cloudtest.CopyReport{Bytes: 1024, Elapsed: time.Second},
			expected: "1.0 kB in 1s (1.0 kB/s)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t, func() {
				textOutput{}.Report(tt.rep)
			})

			assert.Equal(t, tt.expected, out)
		})
	}
}

func Test_textOutput_Text(t *testing.T) {
	out := captureStdout(t, func() {
		textOutput{}.Text("Removed s3://bucket/data")
	})

	assert.Equal(t, "Removed s3://bucket/data\n", out)
}

func Test_jsonOutput_Statuses(t *testing.T) {
	out := captureStdout(t, func() {
		jsonOutput{}.Statuses([]fsio.FileStatus{
			{Path: "s3://bucket/data/part-0.parquet", Size: 18, BlockSize: 4194304,
				ModTime: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
			{Path: "s3://bucket/data/sub", IsDir: true},
		})
	})

	assert.JSONEq(t, `{"entries":[
		{"path":"s3://bucket/data/part-0.parquet","size":18,"block-size":4194304,
			"modified":"2024-05-01T10:30:00Z","dir":false},
		{"path":"s3://bucket/data/sub","size":0,"block-size":0,"dir":true}
	]}`, out)
}

func Test_jsonOutput_Status(t *testing.T) {
	out := captureStdout(t, func() {
		jsonOutput{}.Status(fsio.FileStatus{
			Path:      "s3://bucket/data/part-0.parquet",
			Size:      18,
			BlockSize: 4194304,
			ModTime:   time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		})
	})

	assert.JSONEq(t,
		`{"path":"s3://bucket/data/part-0.parquet","size":18,"block-size":4194304,
			"modified":"2024-05-01T10:30:00Z","dir":false}`, out)
}

func Test_jsonOutput_Report(t *testing.T) {
	out := captureStdout(t, func() {
		jsonOutput{}.Report(cloudtest.CopyReport{
			Bytes:    1048576,
			Elapsed:  2 * time.Second,
			Checksum: "deadbeef",
		})
	})

	assert.JSONEq(t,
		`{"bytes":1048576,"elapsed-ms":2000,"bytes-per-second":524288,"checksum":"deadbeef"}`, out)
}

func Test_jsonOutput_Text(t *testing.T) {
	out := captureStdout(t, func() {
		jsonOutput{}.Text("Validated 120 parquet rows at s3://bucket/data")
	})

	assert.JSONEq(t, `{"message":"Validated 120 parquet rows at s3://bucket/data"}`, out)
}
