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

//go:build integration

package cloudtest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	compose "github.com/testcontainers/testcontainers-go/modules/compose"
	"go.uber.org/zap/zaptest"

	"github.com/lakecheck/lakecheck-go"
	"github.com/lakecheck/lakecheck-go/config"
	"github.com/lakecheck/lakecheck-go/dataset"
	"github.com/lakecheck/lakecheck-go/dataset/sparkconn"
	"github.com/lakecheck/lakecheck-go/datagen"
	"github.com/lakecheck/lakecheck-go/fsio"
	"github.com/lakecheck/lakecheck-go/internal/recipe"
)

// To run these tests manually:
//
//	go test -tags=integration ./cloudtest
//
// Set AWS_S3_ENDPOINT (plus AWS credentials and SPARK_REMOTE) to target
// an existing stack instead of the compose one.

// startStack brings up or discovers the object store and reports
// whether it came from the environment rather than compose.
func startStack(t *testing.T) (lakecheck.Properties, bool) {
	t.Helper()

	// A .env next to the test can carry store credentials and endpoints.
	if err := config.LoadEnv(); err != nil {
		t.Fatalf("load .env: %v", err)
	}

	stack, err := recipe.Start(t)
	if stack != nil {
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := stack.Down(ctx, compose.RemoveOrphans(true), compose.RemoveImagesLocal); err != nil {
				t.Logf("compose down: %v", err)
			}
		})
	}
	if err != nil {
		t.Skipf("local stack not available: %v", err)
	}

	return lakecheck.Properties{
		fsio.S3EndpointURL: os.Getenv("AWS_S3_ENDPOINT"),
		fsio.S3Region:      os.Getenv("AWS_REGION"),
	}, stack == nil
}

// testRoot returns a unique s3a prefix so runs never collide.
func testRoot(t *testing.T, props lakecheck.Properties) (string, fsio.FS) {
	t.Helper()

	root := fmt.Sprintf("s3a://%s/it-%s", recipe.Bucket, uuid.NewString()[:8])
	fsys, err := fsio.LoadFS(context.Background(), props, root)
	require.NoError(t, err)

	return root, fsys
}

func connectSpark(t *testing.T, props lakecheck.Properties, external bool) *sparkconn.Session {
	t.Helper()

	remote := os.Getenv("SPARK_REMOTE")
	if remote == "" {
		t.Skip("SPARK_REMOTE not set")
	}

	// The compose server is already configured for its own network;
	// only an externally provided stack needs the s3a conf pushed in.
	var opts []sparkconn.Option
	if external {
		opts = append(opts, sparkconn.WithConf(sparkconn.HadoopConf(S3AOptions(props))))
	}

	sess, err := sparkconn.Connect(context.Background(), remote, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := sess.Close(); err != nil {
			t.Logf("close spark session: %v", err)
		}
	})

	return sess
}

func TestIntegrationValidateAgainstSpark(t *testing.T) {
	props, external := startStack(t)
	ctx := context.Background()
	root, fsys := testRoot(t, props)
	sess := connectSpark(t, props, external)

	dir := root + "/events"
	names, rows, err := datagen.EventRows(120, 4, 7)
	require.NoError(t, err)
	require.NoError(t, dataset.NewLocalSession(fsys).NewDataset(names, rows).
		Write().Format(dataset.FormatParquet).Save(ctx, dir))

	in := New(fsys,
		WithSession(sess),
		WithProperties(props),
		WithLogger(zaptest.NewLogger(t).Sugar()),
	)

	require.NoError(t, in.ValidateRowCount(ctx, dir, dataset.FormatParquet, 120))

	err = in.ValidateRowCount(ctx, dir, dataset.FormatParquet, 121)
	require.ErrorIs(t, err, ErrRowCountMismatch)

	require.NoError(t, in.Delete(root))
}

func TestIntegrationContentOps(t *testing.T) {
	props, _ := startStack(t)
	ctx := context.Background()
	root, fsys := testRoot(t, props)

	counting := fsio.NewCountingFS(fsys)
	in := New(counting,
		WithProperties(props),
		WithLogger(zaptest.NewLogger(t).Sugar()),
	)
	diff := in.DiffStats(counting)

	name := root + "/notes/greeting.txt"
	require.NoError(t, in.PutFileContent(name, "hello object store"))

	got, err := in.GetFileContent(name)
	require.NoError(t, err)
	assert.Equal(t, "hello object store", got)

	st, err := in.EventuallyStat(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, len("hello object store"), st.Size)

	stats := diff()
	assert.GreaterOrEqual(t, stats.WriteOps, int64(1))
	assert.GreaterOrEqual(t, stats.ReadOps, int64(1))
	assert.EqualValues(t, len("hello object store"), stats.BytesWritten)

	require.NoError(t, in.Delete(root))
	_, err = in.GetFileContent(name)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestIntegrationCopyTree(t *testing.T) {
	props, _ := startStack(t)
	ctx := context.Background()
	root, fsys := testRoot(t, props)

	in := New(fsys, WithProperties(props), WithLogger(zaptest.NewLogger(t).Sugar()))

	files := map[string]string{
		"/src/a.txt":          "alpha",
		"/src/b.txt":          "bravo",
		"/src/nested/c.json":  `{"k":"charlie"}`,
		"/src/nested/d/e.csv": "f,g\n1,2\n",
	}
	var total int64
	for name, content := range files {
		require.NoError(t, in.PutFileContent(root+name, content))
		total += int64(len(content))
	}

	rep, err := CopyTree(ctx, fsys, root+"/src", fsys, root+"/mirror")
	require.NoError(t, err)
	assert.Equal(t, total, rep.Bytes)

	entries, err := fsio.CollectFiles(fsys.Files(root + "/mirror"))
	require.NoError(t, err)
	assert.Len(t, entries, len(files))

	got, err := in.GetFileContent(root + "/mirror/nested/d/e.csv")
	require.NoError(t, err)
	assert.Equal(t, "f,g\n1,2\n", got)

	require.NoError(t, in.Delete(root))
}

func TestIntegrationCopyAcrossBuckets(t *testing.T) {
	props, _ := startStack(t)
	ctx := context.Background()
	root, fsys := testRoot(t, props)

	if _, err := recipe.ExecMC(t, "mc mb --ignore-existing minio/backup"); err != nil {
		t.Skipf("cannot provision backup bucket: %v", err)
	}

	backupRoot := fmt.Sprintf("s3a://backup/it-%s", uuid.NewString()[:8])
	backupFS, err := fsio.LoadFS(ctx, props, backupRoot)
	require.NoError(t, err)

	in := New(fsys, WithProperties(props), WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, in.PutFileContent(root+"/data.bin", "payload across buckets"))

	rep, err := CopyFile(ctx, fsys, root+"/data.bin", backupFS, backupRoot+"/data.bin")
	require.NoError(t, err)
	assert.EqualValues(t, len("payload across buckets"), rep.Bytes)
	assert.Len(t, rep.Checksum, 64)

	got, err := New(backupFS).GetFileContent(backupRoot + "/data.bin")
	require.NoError(t, err)
	assert.Equal(t, "payload across buckets", got)

	require.NoError(t, in.Delete(root))
	require.NoError(t, New(backupFS).Delete(backupRoot))
}
