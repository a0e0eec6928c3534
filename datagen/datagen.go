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

// Package datagen produces deterministic synthetic event data for
// exercising save, load and validation paths against real storage.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"github.com/hamba/avro/v2"
	"github.com/twmb/murmur3"

	"github.com/lakecheck/lakecheck-go/dataset"
)

// eventEpoch anchors every generated timestamp so runs with the same
// seed produce identical data regardless of wall clock.
var eventEpoch = time.UnixMilli(1_700_000_000_000).UTC()

var eventNames = []string{"id", "user", "bucket", "ts", "amount"}

// EventArrowSchema describes the synthetic events table produced by
// Events.
var EventArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "user", Type: arrow.BinaryTypes.String},
	{Name: "bucket", Type: arrow.PrimitiveTypes.Int32},
	{Name: "ts", Type: arrow.FixedWidthTypes.Timestamp_ms},
	{Name: "amount", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// EventAvroSchema is the avro writer schema matching EventArrowSchema
// field for field, for saves that bypass arrow.
var EventAvroSchema avro.Schema = must(avro.NewRecordSchema("event", "lakecheck", []*avro.Field{
	must(avro.NewField("id", avro.NewPrimitiveSchema(avro.Long, nil))),
	must(avro.NewField("user", avro.NewPrimitiveSchema(avro.String, nil))),
	must(avro.NewField("bucket", avro.NewPrimitiveSchema(avro.Int, nil))),
	must(avro.NewField("ts", avro.NewPrimitiveSchema(avro.Long,
		avro.NewPrimitiveLogicalSchema(avro.TimestampMillis)))),
	must(avro.NewField("amount", avro.NewPrimitiveSchema(avro.Double, nil))),
}))

type event struct {
	id     int64
	user   string
	bucket int32
	ts     time.Time
	amount float64
}

type eventGen struct {
	rng *rand.Rand
}

func newEventGen(seed int64) *eventGen {
	return &eventGen{rng: rand.New(rand.NewSource(seed))}
}

// next derives the i-th event. The user id is a seeded random uuid and
// its murmur3 hash modulo the bucket count assigns the bucket, the way
// a bucket-partitioned write would.
func (g *eventGen) next(i, buckets int) event {
	user := must(uuid.NewRandomFromReader(g.rng)).String()

	return event{
		id:     int64(i),
		user:   user,
		bucket: int32(murmur3.Sum32([]byte(user)) % uint32(buckets)),
		ts:     eventEpoch.Add(time.Duration(i) * time.Second),
		amount: math.Round(g.rng.Float64()*10_000) / 100,
	}
}

// Events builds n synthetic events as an arrow table with the
// EventArrowSchema columns. The same seed yields identical data on
// every call.
func Events(mem memory.Allocator, n, buckets int, seed int64) (arrow.Table, error) {
	if buckets < 1 {
		return nil, fmt.Errorf("bucket count must be at least 1, got %d", buckets)
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	bldr := array.NewRecordBuilder(mem, EventArrowSchema)
	defer bldr.Release()

	gen := newEventGen(seed)
	for i := 0; i < n; i++ {
		ev := gen.next(i, buckets)
		bldr.Field(0).(*array.Int64Builder).Append(ev.id)
		bldr.Field(1).(*array.StringBuilder).Append(ev.user)
		bldr.Field(2).(*array.Int32Builder).Append(ev.bucket)
		bldr.Field(3).(*array.TimestampBuilder).Append(arrow.Timestamp(ev.ts.UnixMilli()))
		bldr.Field(4).(*array.Float64Builder).Append(ev.amount)
	}

	rec := bldr.NewRecord()
	defer rec.Release()

	return array.NewTableFromRecords(EventArrowSchema, []arrow.Record{rec}), nil
}

// EventRows generates the same events as Events in row form, ready to
// save with EventAvroSchema as the writer schema.
func EventRows(n, buckets int, seed int64) ([]string, []dataset.Row, error) {
	if buckets < 1 {
		return nil, nil, fmt.Errorf("bucket count must be at least 1, got %d", buckets)
	}

	rows := make([]dataset.Row, 0, n)
	gen := newEventGen(seed)
	for i := 0; i < n; i++ {
		ev := gen.next(i, buckets)
		rows = append(rows, dataset.NewRow(eventNames, map[string]any{
			"id":     ev.id,
			"user":   ev.user,
			"bucket": ev.bucket,
			"ts":     ev.ts,
			"amount": ev.amount,
		}))
	}

	return eventNames, rows, nil
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}

	return val
}
