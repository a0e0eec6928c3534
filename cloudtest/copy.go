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
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// copyConcurrency bounds how many files CopyTree keeps in flight.
const copyConcurrency = 4

// ErrChecksumMismatch reports a destination whose written bytes hash
// differently from the source stream.
var ErrChecksumMismatch = errors.New("checksum mismatch after copy")

// CopyReport describes one completed copy.
type CopyReport struct {
	Bytes   int64
	Elapsed time.Duration
	// Checksum is the hex blake3 digest of the copied bytes. Tree
	// copies leave it empty; each file is verified individually.
	Checksum string
}

// Throughput returns bytes per second, zero when no time elapsed.
func (r CopyReport) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}

	return float64(r.Bytes) / r.Elapsed.Seconds()
}

func (r CopyReport) String() string {
	return fmt.Sprintf("%s in %s (%s/s)",
		humanize.Bytes(uint64(r.Bytes)), r.Elapsed, humanize.Bytes(uint64(r.Throughput())))
}

type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
		return cr.reader.Read(p)
	}
}

// CopyFile copies src on srcFS to dst on dstFS. Both streams are hashed
// while the bytes move and the copy fails when the digests differ, so a
// destination that silently drops writes cannot pass.
func CopyFile(ctx context.Context, srcFS fsio.FS, src string, dstFS fsio.FS, dst string) (CopyReport, error) {
	start := time.Now()

	srcFile, err := srcFS.Open(src)
	if err != nil {
		return CopyReport{}, err
	}
	defer srcFile.Close()

	dstFile, err := dstFS.Create(dst, true)
	if err != nil {
		return CopyReport{}, err
	}

	srcHasher := blake3.New()
	dstHasher := blake3.New()

	cr := &contextReader{ctx: ctx, reader: io.TeeReader(srcFile, srcHasher)}
	n, err := io.Copy(io.MultiWriter(dstFile, dstHasher), cr)
	if err != nil {
		dstFile.Close()

		return CopyReport{}, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return CopyReport{}, fmt.Errorf("close %s: %w", dst, err)
	}

	srcSum := hex.EncodeToString(srcHasher.Sum(nil))
	dstSum := hex.EncodeToString(dstHasher.Sum(nil))
	if srcSum != dstSum {
		return CopyReport{}, fmt.Errorf("%w: %s (src) != %s (dst)", ErrChecksumMismatch, srcSum, dstSum)
	}

	return CopyReport{Bytes: n, Elapsed: max(time.Since(start), 0), Checksum: srcSum}, nil
}

// CopyTree copies every file below srcDir into the same relative layout
// below dstDir, with at most copyConcurrency copies in flight.
func CopyTree(ctx context.Context, srcFS fsio.FS, srcDir string, dstFS fsio.FS, dstDir string) (CopyReport, error) {
	start := time.Now()

	files, err := fsio.CollectFiles(srcFS.Files(srcDir))
	if err != nil {
		return CopyReport{}, fmt.Errorf("list %s: %w", srcDir, err)
	}

	var copied atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, st := range files {
		g.Go(func() error {
			rel := strings.TrimPrefix(strings.TrimPrefix(st.Path, srcDir), "/")
			rep, err := CopyFile(gctx, srcFS, st.Path, dstFS, path.Join(dstDir, rel))
			if err != nil {
				return err
			}
			copied.Add(rep.Bytes)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CopyReport{}, err
	}

	return CopyReport{Bytes: copied.Load(), Elapsed: max(time.Since(start), 0)}, nil
}
