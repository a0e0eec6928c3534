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
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/lakecheck/lakecheck-go/cloudtest"
	"github.com/lakecheck/lakecheck-go/fsio"
)

type Output interface {
	Statuses(entries []fsio.FileStatus)
	Status(st fsio.FileStatus)
	Report(rep cloudtest.CopyReport)
	Text(val string)
	Error(err error)
}

func statusKind(st fsio.FileStatus) string {
	if st.IsDir {
		return "dir"
	}

	return "file"
}

func statusModified(st fsio.FileStatus) string {
	if st.ModTime.IsZero() {
		return "-"
	}

	return st.ModTime.UTC().Format(time.RFC3339)
}

type textOutput struct{}

func (textOutput) Statuses(entries []fsio.FileStatus) {
	data := pterm.TableData{{"Path", "Size", "Modified", "Kind"}}
	for _, e := range entries {
		data = append(data, []string{
			e.Path, humanize.Bytes(uint64(e.Size)), statusModified(e), statusKind(e),
		})
	}

	pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()
}

func (textOutput) Status(st fsio.FileStatus) {
	pterm.DefaultTable.
		WithData(pterm.TableData{
			{"Path", st.Path},
			{"Name", st.Name()},
			{"Size", humanize.Bytes(uint64(st.Size))},
			{"Block size", humanize.Bytes(uint64(st.BlockSize))},
			{"Modified", statusModified(st)},
			{"Kind", statusKind(st)},
		}).Render()
}

func (textOutput) Report(rep cloudtest.CopyReport) {
	fmt.Println(rep.String())
	if rep.Checksum != "" {
		fmt.Println("blake3: " + rep.Checksum)
	}
}

func (textOutput) Text(val string) {
	fmt.Println(val)
}

func (textOutput) Error(err error) {
	log.Fatal(err)
}

type statusJSON struct {
	Path      string     `json:"path"`
	Size      int64      `json:"size"`
	BlockSize int64      `json:"block-size"`
	Modified  *time.Time `json:"modified,omitempty"`
	Dir       bool       `json:"dir"`
}

func toStatusJSON(st fsio.FileStatus) statusJSON {
	out := statusJSON{
		Path:      st.Path,
		Size:      st.Size,
		BlockSize: st.BlockSize,
		Dir:       st.IsDir,
	}
	if !st.ModTime.IsZero() {
		mod := st.ModTime.UTC()
		out.Modified = &mod
	}

	return out
}

type jsonOutput struct{}

func (jsonOutput) write(v any) {
	if err := json.NewEncoder(os.Stdout).Encode(v); err != nil {
		log.Fatal(err)
	}
}

func (j jsonOutput) Statuses(entries []fsio.FileStatus) {
	out := make([]statusJSON, len(entries))
	for i, e := range entries {
		out[i] = toStatusJSON(e)
	}

	j.write(struct {
		Entries []statusJSON `json:"entries"`
	}{out})
}

func (j jsonOutput) Status(st fsio.FileStatus) {
	j.write(toStatusJSON(st))
}

func (j jsonOutput) Report(rep cloudtest.CopyReport) {
	j.write(struct {
		Bytes          int64   `json:"bytes"`
		ElapsedMS      int64   `json:"elapsed-ms"`
		BytesPerSecond float64 `json:"bytes-per-second"`
		Checksum       string  `json:"checksum,omitempty"`
	}{rep.Bytes, rep.Elapsed.Milliseconds(), rep.Throughput(), rep.Checksum})
}

func (j jsonOutput) Text(val string) {
	j.write(struct {
		Message string `json:"message"`
	}{val})
}

func (j jsonOutput) Error(err error) {
	json.NewEncoder(os.Stderr).Encode(struct {
		Error string `json:"error"`
	}{err.Error()})
	os.Exit(1)
}
