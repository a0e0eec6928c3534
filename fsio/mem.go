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
	"net/url"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

var (
	memMutex   sync.Mutex
	memBuckets = map[string]*blob.Bucket{}
)

// NewMemFS returns a file system over a fresh in-memory bucket. Handy
// for tests that need object-store semantics without a store.
func NewMemFS() FS {
	return OpenBlob(context.Background(), memblob.OpenBucket(nil), "")
}

// memBucket returns the process-wide bucket for the given name so that
// separate LoadFS calls against the same mem:// location share state.
func memBucket(name string) *blob.Bucket {
	memMutex.Lock()
	defer memMutex.Unlock()
	if b, ok := memBuckets[name]; ok {
		return b
	}
	b := memblob.OpenBucket(nil)
	memBuckets[name] = b

	return b
}

func init() {
	Register("mem", func(ctx context.Context, parsed *url.URL, props map[string]string) (FS, error) {
		return OpenBlob(ctx, memBucket(parsed.Host), parsed.Host), nil
	})
}
