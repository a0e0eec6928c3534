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

// Package sparkconn adapts a Spark Connect session to the dataset
// interfaces, so validations can run the same flow against a real
// cluster that they run against the local engine.
package sparkconn

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/apache/spark-connect-go/v35/spark/sql"

	"github.com/lakecheck/lakecheck-go"
	"github.com/lakecheck/lakecheck-go/dataset"
)

// HadoopConfPrefix carries filesystem configuration through a Spark
// session: property key k becomes spark.hadoop.k and Spark hands it to
// the Hadoop filesystem layer on the executors.
const HadoopConfPrefix = "spark.hadoop."

// Session wraps a Spark Connect session as a dataset.Session.
type Session struct {
	spark sql.SparkSession
}

var _ dataset.Session = (*Session)(nil)

// Option configures Connect.
type Option func(*connectConfig)

type connectConfig struct {
	conf lakecheck.Properties
}

// WithConf applies session configuration right after connecting, as if
// ApplyConf had been called with props.
func WithConf(props lakecheck.Properties) Option {
	return func(cfg *connectConfig) {
		if cfg.conf == nil {
			cfg.conf = lakecheck.Properties{}
		}
		for k, v := range props {
			cfg.conf[k] = v
		}
	}
}

// Connect dials a Spark Connect endpoint, e.g. "sc://localhost:15002".
func Connect(ctx context.Context, remote string, opts ...Option) (*Session, error) {
	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	spark, err := sql.NewSessionBuilder().Remote(remote).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", remote, err)
	}

	sess := &Session{spark: spark}
	if len(cfg.conf) > 0 {
		if err := sess.ApplyConf(ctx, cfg.conf); err != nil {
			sess.Close()

			return nil, err
		}
	}

	return sess, nil
}

func (s *Session) Read() dataset.Reader {
	return &connReader{sess: s, format: dataset.FormatParquet, opts: map[string]string{}}
}

// Close stops the remote session.
func (s *Session) Close() error { return s.spark.Stop() }

// SQL runs a query and collects its result rows.
func (s *Session) SQL(ctx context.Context, query string) ([]dataset.Row, error) {
	df, err := s.spark.Sql(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sql %q: %w", query, err)
	}

	collected, err := df.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect %q: %w", query, err)
	}

	rows := make([]dataset.Row, len(collected))
	for i, row := range collected {
		rows[i] = row
	}

	return rows, nil
}

// ApplyConf issues a SET statement per property. Keys are applied in
// sorted order so failures are deterministic.
func (s *Session) ApplyConf(ctx context.Context, props lakecheck.Properties) error {
	for _, k := range slices.Sorted(maps.Keys(props)) {
		if _, err := s.spark.Sql(ctx, fmt.Sprintf("SET %s=%s", k, props[k])); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	return nil
}

// HadoopConf prefixes every property key with HadoopConfPrefix.
func HadoopConf(props lakecheck.Properties) lakecheck.Properties {
	out := make(lakecheck.Properties, len(props))
	for k, v := range props {
		out[HadoopConfPrefix+k] = v
	}

	return out
}
