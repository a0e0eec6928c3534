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

// Package ledger persists the outcome of validation and copy runs to a
// relational database so repeated runs against the same store can be
// compared over time. Any database/sql driver works; the dialect only
// has to be one bun supports.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mssqldialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/oracledialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"

	"github.com/lakecheck/lakecheck-go"
)

// SupportedDialect names a SQL dialect bun can generate queries for.
type SupportedDialect string

const (
	Postgres SupportedDialect = "postgres"
	MySQL    SupportedDialect = "mysql"
	SQLite   SupportedDialect = "sqlite"
	MSSQL    SupportedDialect = "mssql"
	Oracle   SupportedDialect = "oracle"
)

// Properties understood by Open.
const (
	DriverKey     = "ledger.driver"
	DSNKey        = "ledger.dsn"
	DialectKey    = "ledger.dialect"
	initTablesKey = "ledger.init-tables"
)

// Run kinds recorded by this module.
const (
	KindValidate = "validate"
	KindCopy     = "copy"
	KindGenerate = "generate"
)

// RunRecord is one persisted run outcome.
type RunRecord struct {
	bun.BaseModel `bun:"table:lakecheck_runs"`

	ID        int64  `bun:",pk,autoincrement"`
	RunID     string `bun:",notnull"`
	Kind      string `bun:",notnull"`
	Path      string
	Format    string
	Rows      int64
	Bytes     int64
	ElapsedMS int64  `bun:"elapsed_ms"`
	Outcome   string `bun:",notnull"`
	Detail    string
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func dialectFor(d SupportedDialect) (schema.Dialect, error) {
	switch d {
	case Postgres:
		return pgdialect.New(), nil
	case MySQL:
		return mysqldialect.New(), nil
	case SQLite:
		return sqlitedialect.New(), nil
	case MSSQL:
		return mssqldialect.New(), nil
	case Oracle:
		return oracledialect.New(), nil
	default:
		return nil, fmt.Errorf("unsupported ledger dialect %q", d)
	}
}

// Ledger is a handle on the run history table.
type Ledger struct {
	db *bun.DB
}

// Open connects to the database named by the ledger.* properties. The
// driver defaults to the sqlite shim and the dialect to sqlite, so a
// bare DSN like "file:runs.db" is enough for local use. Unless
// ledger.init-tables is set to false the run table is created when
// missing.
//
// The environment variable LAKECHECK_SQL_DEBUG enables query logging:
// LAKECHECK_SQL_DEBUG=1 logs only failed queries, =2 logs all queries.
func Open(ctx context.Context, props lakecheck.Properties) (*Ledger, error) {
	dsn := props.Get(DSNKey, "")
	if dsn == "" {
		return nil, errors.New("must provide ledger.dsn to open the run ledger")
	}

	driver := props.Get(DriverKey, sqliteshim.ShimName)
	dialect, err := dialectFor(SupportedDialect(strings.ToLower(props.Get(DialectKey, string(SQLite)))))
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	db := bun.NewDB(sqldb, dialect)
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("LAKECHECK_SQL_DEBUG")))

	l := &Ledger{db: db}
	if props.GetBool(initTablesKey, true) {
		if err := l.CreateTables(ctx); err != nil {
			l.Close()

			return nil, err
		}
	}

	return l, nil
}

// CreateTables creates the run table if it does not already exist.
func (l *Ledger) CreateTables(ctx context.Context) error {
	_, err := l.db.NewCreateTable().Model((*RunRecord)(nil)).
		IfNotExists().Exec(ctx)

	return err
}

// Record inserts one run outcome. A missing run id or timestamp is
// filled in before the insert.
func (l *Ledger) Record(ctx context.Context, rec *RunRecord) error {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if _, err := l.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("record %s run: %w", rec.Kind, err)
	}

	return nil
}

// Runs returns recorded runs newest first. An empty kind matches every
// kind and a non-positive limit returns all rows.
func (l *Ledger) Runs(ctx context.Context, kind string, limit int) ([]RunRecord, error) {
	var recs []RunRecord
	q := l.db.NewSelect().Model(&recs).
		OrderExpr("created_at DESC").OrderExpr("id DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list %q runs: %w", kind, err)
	}

	return recs, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
