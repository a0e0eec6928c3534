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
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/lakecheck/lakecheck-go/dataset"
	"github.com/lakecheck/lakecheck-go/ledger"
)

// Validation failures. Each one identifies which completeness condition
// the written dataset missed.
var (
	// ErrCorruptSuccessFile reports a success marker that is neither a
	// directory nor a file with a positive block size.
	ErrCorruptSuccessFile = errors.New("success marker is corrupt")

	// ErrNoDataFiles reports a committed directory with no visible data
	// files after hidden and temporary entries are filtered out.
	ErrNoDataFiles = errors.New("no data files found")

	// ErrRowCountMismatch reports a loaded row count different from the
	// expected one.
	ErrRowCountMismatch = errors.New("row count mismatch")
)

// ValidateRowCount confirms that the dataset under dir is complete and
// holds exactly expected rows. The sequence runs once; only the marker
// status and directory listing probes inside it are retried:
//
//  1. sleep for the configured consistency delay,
//  2. poll for the success marker and check it is not corrupt,
//  3. poll for the directory listing and require at least one
//     non-hidden data file,
//  4. load the dataset, count rows, and compare against expected.
//
// Loads go through the configured session, or the local engine over the
// Integration's filesystem when no session is set. When a ledger is
// configured the outcome of every completed load is recorded.
func (in *Integration) ValidateRowCount(ctx context.Context, dir, format string, expected int64) error {
	if delay := in.props.GetDuration(ConsistencyDelayKey, 0); delay > 0 {
		in.clock.Sleep(delay)
	}

	marker := path.Join(dir, dataset.SuccessFileName)
	st, err := in.EventuallyStat(ctx, marker)
	if err != nil {
		return err
	}
	if !st.IsDir && st.BlockSize <= 0 {
		return fmt.Errorf("%w: %s has block size %d", ErrCorruptSuccessFile, marker, st.BlockSize)
	}

	entries, err := in.EventuallyList(ctx, dir)
	if err != nil {
		return err
	}
	var (
		dataFiles int
		dataBytes int64
	)
	for _, e := range entries {
		if !e.IsDir && !dataset.IsHidden(e.Name()) {
			dataFiles++
			dataBytes += e.Size
		}
	}
	if dataFiles == 0 {
		return fmt.Errorf("%w under %s", ErrNoDataFiles, dir)
	}

	sess := in.sess
	if sess == nil {
		sess = dataset.NewLocalSession(in.fs)
	}

	start := in.clock.Now()
	ds, err := sess.Read().Format(format).Load(ctx, dir)
	if err != nil {
		return err
	}
	cnt, err := ds.Count(ctx)
	if err != nil {
		return err
	}
	elapsed := in.clock.Since(start)
	in.log.Infow("dataset loaded",
		"path", dir, "format", format, "rows", cnt, "elapsed", elapsed)

	outcome, detail := "ok", ""
	if cnt != expected {
		outcome = "mismatch"
		detail = fmt.Sprintf("%d rows, expected %d", cnt, expected)
	}
	in.recordRun(ctx, &ledger.RunRecord{
		Kind:      ledger.KindValidate,
		Path:      dir,
		Format:    format,
		Rows:      cnt,
		Bytes:     dataBytes,
		ElapsedMS: elapsed.Milliseconds(),
		Outcome:   outcome,
		Detail:    detail,
	})

	if cnt != expected {
		return fmt.Errorf("%w: %s has %d rows, expected %d", ErrRowCountMismatch, dir, cnt, expected)
	}

	return nil
}

// recordRun writes a run record when a ledger is configured. Recording
// is best effort and never fails the validation itself.
func (in *Integration) recordRun(ctx context.Context, rec *ledger.RunRecord) {
	if in.runs == nil {
		return
	}
	if err := in.runs.Record(ctx, rec); err != nil {
		in.log.Warnw("run not recorded", "kind", rec.Kind, "path", rec.Path, "error", err)
	}
}
