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
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/docopt/docopt-go"

	"github.com/lakecheck/lakecheck-go"
	"github.com/lakecheck/lakecheck-go/cloudtest"
	"github.com/lakecheck/lakecheck-go/config"
	"github.com/lakecheck/lakecheck-go/dataset"
	"github.com/lakecheck/lakecheck-go/dataset/sparkconn"
	"github.com/lakecheck/lakecheck-go/datagen"
	"github.com/lakecheck/lakecheck-go/fsio"
	"github.com/lakecheck/lakecheck-go/ledger"
)

const usage = `lakecheck.

Usage:
  lakecheck ls [options] [-R] LOCATION
  lakecheck stat [options] LOCATION
  lakecheck cat [options] LOCATION
  lakecheck put [options] LOCATION CONTENT
  lakecheck rm [options] [-R] LOCATION
  lakecheck copy [options] SRC DST
  lakecheck validate [options] LOCATION COUNT
  lakecheck generate [options] LOCATION ROWS
  lakecheck -h | --help | --version

Commands:
  ls          List the entries under a location, or the whole tree with -R.
  stat        Show a path's size, block size and modification time.
  cat         Print a file's contents.
  put         Write CONTENT to a location, replacing what is there.
  rm          Remove a file, or a whole tree with -R.
  copy        Copy a file, or a whole tree when SRC is a directory.
  validate    Check a saved dataset's row count against COUNT.
  generate    Save ROWS synthetic events as a dataset under LOCATION.

Arguments:
  LOCATION       file or directory location, e.g. s3://bucket/path
  SRC            copy source location
  DST            copy destination location
  CONTENT        literal content to write
  COUNT          expected row count
  ROWS           number of events to generate

Options:
  -h --help          	show this help messages and exit
  --profile TEXT     	configuration profile to apply [default: default]
  --config TEXT      	specify the path to the configuration file
  --output TYPE      	output type (json/text) [default: text]
  --format TEXT      	dataset format for validate and generate (parquet/csv/avro/text)
  --remote TEXT      	Spark Connect endpoint for validate, e.g. sc://localhost:15002
  --prop TEXT        	filesystem properties in key=value format, comma separated
                     	Ex:"s3.region=us-east-1,s3.endpoint=http://localhost:9000"
  --ledger TEXT      	database DSN recording validate, copy and generate runs
  --buckets N        	bucket count for generated events [default: 4]
  --seed N           	seed for generated events [default: 1]`

type Config struct {
	List     bool `docopt:"ls"`
	Stat     bool `docopt:"stat"`
	Cat      bool `docopt:"cat"`
	Put      bool `docopt:"put"`
	Remove   bool `docopt:"rm"`
	Copy     bool `docopt:"copy"`
	Validate bool `docopt:"validate"`
	Generate bool `docopt:"generate"`

	Recursive bool `docopt:"-R"`

	Location string `docopt:"LOCATION"`
	Src      string `docopt:"SRC"`
	Dst      string `docopt:"DST"`
	Content  string `docopt:"CONTENT"`
	Count    string `docopt:"COUNT"`
	Rows     string `docopt:"ROWS"`

	Profile string `docopt:"--profile"`
	Config  string `docopt:"--config"`
	Output  string `docopt:"--output"`
	Format  string `docopt:"--format"`
	Remote  string `docopt:"--remote"`
	Props   string `docopt:"--prop"`
	Ledger  string `docopt:"--ledger"`
	Buckets string `docopt:"--buckets"`
	Seed    string `docopt:"--seed"`
}

func main() {
	ctx := context.Background()
	args, err := docopt.ParseArgs(usage, os.Args[1:], lakecheck.Version())
	if err != nil {
		log.Fatal(err)
	}

	cfg := Config{}

	if err := args.Bind(&cfg); err != nil {
		log.Fatal(err)
	}

	fileCfg := config.ParseConfig(config.LoadConfig(cfg.Config), cfg.Profile)
	if fileCfg != nil {
		mergeConf(fileCfg, &cfg)
	}
	if cfg.Format == "" {
		cfg.Format = dataset.FormatParquet
	}

	var output Output
	switch strings.ToLower(cfg.Output) {
	case "text":
		output = textOutput{}
	case "json":
		output = jsonOutput{}
	default:
		log.Fatal("unimplemented output type")
	}

	props, err := parseProperties(cfg.Props)
	if err != nil {
		log.Fatal(err)
	}
	if fileCfg != nil {
		merged := lakecheck.Properties{}
		for k, v := range fileCfg.Properties {
			merged[k] = v
		}
		for k, v := range props {
			merged[k] = v
		}
		props = merged
	}

	switch {
	case cfg.List:
		list(output, loadFS(ctx, output, props, cfg.Location), cfg.Location, cfg.Recursive)
	case cfg.Stat:
		stat(output, loadFS(ctx, output, props, cfg.Location), cfg.Location)
	case cfg.Cat:
		catFile(output, loadFS(ctx, output, props, cfg.Location), cfg.Location)
	case cfg.Put:
		putFile(output, loadFS(ctx, output, props, cfg.Location), cfg.Location, cfg.Content)
	case cfg.Remove:
		remove(output, loadFS(ctx, output, props, cfg.Location), cfg.Location, cfg.Recursive)
	case cfg.Copy:
		copyPath(ctx, output, props, cfg)
	case cfg.Validate:
		validate(ctx, output, props, cfg)
	case cfg.Generate:
		generate(ctx, output, props, cfg)
	}
}

func loadFS(ctx context.Context, output Output, props lakecheck.Properties, location string) fsio.FS {
	fsys, err := fsio.LoadFS(ctx, props, location)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	return fsys
}

func list(output Output, fsys fsio.FS, location string, recursive bool) {
	var (
		entries []fsio.FileStatus
		err     error
	)
	if recursive {
		entries, err = fsio.CollectFiles(fsys.Files(location))
	} else {
		entries, err = fsys.List(location)
	}
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	output.Statuses(entries)
}

func stat(output Output, fsys fsio.FS, location string) {
	st, err := fsys.Stat(location)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	output.Status(st)
}

func catFile(output Output, fsys fsio.FS, location string) {
	content, err := cloudtest.New(fsys).GetFileContent(location)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	output.Text(content)
}

func putFile(output Output, fsys fsio.FS, location, content string) {
	if err := cloudtest.New(fsys).PutFileContent(location, content); err != nil {
		output.Error(err)
		os.Exit(1)
	}

	output.Text(fmt.Sprintf("Wrote %d bytes to %s", len(content), location))
}

func remove(output Output, fsys fsio.FS, location string, recursive bool) {
	var err error
	if recursive {
		err = cloudtest.New(fsys).Delete(location)
	} else {
		err = fsys.Remove(location)
	}
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	output.Text("Removed " + location)
}

func copyPath(ctx context.Context, output Output, props lakecheck.Properties, cfg Config) {
	srcFS := loadFS(ctx, output, props, cfg.Src)
	dstFS := loadFS(ctx, output, props, cfg.Dst)

	st, err := srcFS.Stat(cfg.Src)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	var rep cloudtest.CopyReport
	if st.IsDir {
		rep, err = cloudtest.CopyTree(ctx, srcFS, cfg.Src, dstFS, cfg.Dst)
	} else {
		rep, err = cloudtest.CopyFile(ctx, srcFS, cfg.Src, dstFS, cfg.Dst)
	}
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	led := openLedger(ctx, output, cfg.Ledger)
	if led != nil {
		defer led.Close()
	}
	recordRun(ctx, led, &ledger.RunRecord{
		Kind:      ledger.KindCopy,
		Path:      cfg.Dst,
		Bytes:     rep.Bytes,
		ElapsedMS: rep.Elapsed.Milliseconds(),
		Outcome:   "ok",
		Detail:    "from " + cfg.Src,
	})

	output.Report(rep)
}

func validate(ctx context.Context, output Output, props lakecheck.Properties, cfg Config) {
	expected, err := parseInt64("COUNT", cfg.Count)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	fsys := loadFS(ctx, output, props, cfg.Location)
	opts := []cloudtest.Option{cloudtest.WithProperties(props)}

	if cfg.Remote != "" {
		sess, err := sparkconn.Connect(ctx, cfg.Remote,
			sparkconn.WithConf(sparkconn.HadoopConf(cloudtest.S3AOptions(props))))
		if err != nil {
			output.Error(err)
			os.Exit(1)
		}
		defer sess.Close()
		opts = append(opts, cloudtest.WithSession(sess))
	}

	led := openLedger(ctx, output, cfg.Ledger)
	if led != nil {
		defer led.Close()
		opts = append(opts, cloudtest.WithLedger(led))
	}

	if err := cloudtest.New(fsys, opts...).ValidateRowCount(ctx, cfg.Location, cfg.Format, expected); err != nil {
		output.Error(err)
		os.Exit(1)
	}

	output.Text(fmt.Sprintf("Validated %d %s rows at %s", expected, cfg.Format, cfg.Location))
}

func generate(ctx context.Context, output Output, props lakecheck.Properties, cfg Config) {
	rows, err := parseInt64("ROWS", cfg.Rows)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}
	buckets, err := parseInt64("--buckets", cfg.Buckets)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}
	seed, err := parseInt64("--seed", cfg.Seed)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	names, data, err := datagen.EventRows(int(rows), int(buckets), seed)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	fsys := loadFS(ctx, output, props, cfg.Location)
	start := time.Now()
	err = dataset.NewLocalSession(fsys).NewDataset(names, data).
		Write().Format(cfg.Format).Save(ctx, cfg.Location)
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	led := openLedger(ctx, output, cfg.Ledger)
	if led != nil {
		defer led.Close()
	}
	recordRun(ctx, led, &ledger.RunRecord{
		Kind:      ledger.KindGenerate,
		Path:      cfg.Location,
		Format:    cfg.Format,
		Rows:      rows,
		ElapsedMS: time.Since(start).Milliseconds(),
		Outcome:   "ok",
		Detail:    fmt.Sprintf("buckets=%d seed=%d", buckets, seed),
	})

	output.Text(fmt.Sprintf("Generated %d events at %s", rows, cfg.Location))
}

func openLedger(ctx context.Context, output Output, dsn string) *ledger.Ledger {
	if dsn == "" {
		return nil
	}

	led, err := ledger.Open(ctx, lakecheck.Properties{ledger.DSNKey: dsn})
	if err != nil {
		output.Error(err)
		os.Exit(1)
	}

	return led
}

func recordRun(ctx context.Context, led *ledger.Ledger, rec *ledger.RunRecord) {
	if led == nil {
		return
	}
	if err := led.Record(ctx, rec); err != nil {
		log.Printf("run not recorded: %v", err)
	}
}

func mergeConf(fileConf *config.Profile, resConfig *Config) {
	if len(resConfig.Format) == 0 {
		resConfig.Format = fileConf.Format
	}
	if len(resConfig.Remote) == 0 {
		resConfig.Remote = fileConf.Remote
	}
	if len(resConfig.Output) == 0 {
		resConfig.Output = fileConf.Output
	}
}
