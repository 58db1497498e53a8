// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command dtkernel runs the row-wise kernels over the columns of a CSV or
// Arrow IPC file and prints the result as JSON.
//
// Examples:
//
//	$> dtkernel sum --na-rm=true scores.csv q1 q2 q3
//	{"result":[10,null,7]}
//
//	$> dtkernel having --groups matches.arrow first count keep
//	{"indices":[10,11,30],"starts":[1,3],"lens":[2,1]}
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Rahul-Devhub/data.table/compute"
	_ "github.com/Rahul-Devhub/data.table/extensions"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	arrowcompute "github.com/apache/arrow/go/v17/arrow/compute"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/docopt/docopt-go"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
	"golang.org/x/xerrors"
)

const usage = `dtkernel: row-wise sum/product and range expansion over Arrow data.
Usage:
  dtkernel -h | --help
  dtkernel sum [--na-rm=<bool>] [--format=<fmt>] <file> <column>...
  dtkernel prod [--na-rm=<bool>] [--format=<fmt>] <file> <column>...
  dtkernel seq [--clamp=<n>] [--format=<fmt>] <file> <start> <len>
  dtkernel having [--groups] [--format=<fmt>] <file> <start> <len> <keep>
Options:
  -h --help         Show this screen.
  --na-rm=<bool>    Skip missing values, TRUE or FALSE [default: false].
  --format=<fmt>    Input format, csv or ipc. Inferred from the file extension when omitted.
  --clamp=<n>       Fail when the expansion produces more than n rows.
  --groups          Also print the output position and length of each kept run.`

type config struct {
	Command string
	NaRm    bool
	Format  string
	Clamp   *int64
	Groups  bool
	File    string
	Columns []string
}

func optString(opts docopt.Opts, key string) string {
	if s, ok := opts[key].(string); ok {
		return s
	}
	return ""
}

func parseNaRm(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "TRUE", "T":
		return true, nil
	case "FALSE", "F":
		return false, nil
	}
	return false, fmt.Errorf("%w: na.rm must be TRUE or FALSE, got %q", arrow.ErrInvalid, s)
}

func parseConfig(args []string) (*config, bool, error) {
	parser := &docopt.Parser{HelpHandler: docopt.NoHelpHandler}
	opts, err := parser.ParseArgs(usage, args, "")
	if err != nil {
		return nil, false, err
	}
	// docopt returns no options when it consumed --help itself
	if len(opts) == 0 {
		return nil, true, nil
	}
	if help, _ := opts.Bool("--help"); help {
		return nil, true, nil
	}

	var cfg config
	for _, cmd := range []string{"sum", "prod", "seq", "having"} {
		if ok, _ := opts.Bool(cmd); ok {
			cfg.Command = cmd
		}
	}
	if cfg.NaRm, err = parseNaRm(optString(opts, "--na-rm")); err != nil {
		return nil, false, err
	}
	cfg.Format = optString(opts, "--format")
	if s := optString(opts, "--clamp"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false, xerrors.Errorf("invalid --clamp %q: %w", s, err)
		}
		cfg.Clamp = &n
	}
	cfg.Groups, _ = opts.Bool("--groups")
	cfg.File = optString(opts, "<file>")

	switch cfg.Command {
	case "sum", "prod":
		cfg.Columns, _ = opts["<column>"].([]string)
	case "seq":
		cfg.Columns = []string{optString(opts, "<start>"), optString(opts, "<len>")}
	case "having":
		cfg.Columns = []string{optString(opts, "<start>"), optString(opts, "<len>"), optString(opts, "<keep>")}
	}
	return &cfg, false, nil
}

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		level.Error(logger).Log("msg", "dtkernel failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger log.Logger) error {
	cfg, help, err := parseConfig(args)
	if err != nil {
		return err
	}
	if help {
		_, err := fmt.Fprintln(stdout, usage)
		return err
	}

	mem := memory.DefaultAllocator
	ctx := compute.WithAllocator(context.Background(), mem)

	tbl, err := readTable(ctx, cfg.File, cfg.Format)
	if err != nil {
		return err
	}
	defer tbl.release()

	cols := make([]arrow.Array, len(cfg.Columns))
	for i, name := range cfg.Columns {
		if cols[i], err = tbl.column(name); err != nil {
			return err
		}
	}

	level.Debug(logger).Log("msg", "running kernel", "command", cfg.Command, "file", cfg.File, "rows", tbl.rows)

	enc := json.NewEncoder(stdout)
	switch cfg.Command {
	case "sum":
		out, warnings, err := compute.Sum(ctx, compute.ReduceOptions{SkipNulls: cfg.NaRm}, cols...)
		if err != nil {
			return err
		}
		defer out.Release()
		for _, w := range warnings {
			level.Warn(logger).Log("msg", "sum", "warning", w)
		}
		return enc.Encode(struct {
			Result arrow.Array `json:"result"`
		}{out})

	case "prod":
		out, err := compute.Product(ctx, compute.ReduceOptions{SkipNulls: cfg.NaRm}, cols...)
		if err != nil {
			return err
		}
		defer out.Release()
		return enc.Encode(struct {
			Result arrow.Array `json:"result"`
		}{out})

	case "seq":
		opts := compute.NoClamp()
		if cfg.Clamp != nil {
			opts = compute.ClampTo(*cfg.Clamp)
		}
		out, err := compute.ExpandRanges(ctx, opts, cols[0], cols[1])
		if err != nil {
			return err
		}
		defer out.Release()
		return enc.Encode(struct {
			Indices arrow.Array `json:"indices"`
		}{out})

	case "having":
		exp, err := compute.ExpandRangesHaving(ctx, cols[0], cols[1], cols[2], cfg.Groups)
		if err != nil {
			return err
		}
		defer exp.Release()
		var res struct {
			Indices arrow.Array `json:"indices"`
			Starts  arrow.Array `json:"starts,omitempty"`
			Lens    arrow.Array `json:"lens,omitempty"`
		}
		res.Indices = exp.Indices
		if exp.Groups != nil {
			res.Starts, res.Lens = exp.Groups.Starts, exp.Groups.Lens
		}
		return enc.Encode(res)
	}
	return fmt.Errorf("unknown command %q", cfg.Command)
}

// table holds the columns of an input file concatenated across record
// batches.
type table struct {
	schema *arrow.Schema
	cols   []arrow.Array
	rows   int
}

func (t *table) release() {
	for _, c := range t.cols {
		if c != nil {
			c.Release()
		}
	}
}

func (t *table) column(name string) (arrow.Array, error) {
	idx := t.schema.FieldIndices(name)
	if len(idx) == 0 {
		return nil, xerrors.Errorf("no column named %q in input", name)
	}
	return t.cols[idx[0]], nil
}

func inferFormat(path, format string) (string, error) {
	if format != "" {
		format = strings.ToLower(format)
	} else {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = "csv"
		case ".arrow", ".ipc", ".feather":
			format = "ipc"
		}
	}
	switch format {
	case "csv", "ipc":
		return format, nil
	}
	return "", xerrors.Errorf("cannot determine input format of %q; pass --format=csv or --format=ipc", path)
}

func readTable(ctx context.Context, path, format string) (*table, error) {
	format, err := inferFormat(path, format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("could not open input: %w", err)
	}
	defer f.Close()

	mem := compute.GetAllocator(ctx)
	var recs []arrow.Record
	defer func() {
		for _, r := range recs {
			r.Release()
		}
	}()

	var schema *arrow.Schema
	switch format {
	case "csv":
		rdr := csv.NewInferringReader(f, csv.WithHeader(true), csv.WithAllocator(mem),
			csv.WithChunk(-1), csv.WithNullReader(true, "", "NA"))
		defer rdr.Release()
		for rdr.Next() {
			rec := rdr.Record()
			rec.Retain()
			recs = append(recs, rec)
		}
		if err := rdr.Err(); err != nil {
			return nil, xerrors.Errorf("could not read csv %q: %w", path, err)
		}
		schema = rdr.Schema()
	case "ipc":
		rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
		if err != nil {
			return nil, xerrors.Errorf("could not open ipc file %q: %w", path, err)
		}
		defer rdr.Close()
		for i := 0; i < rdr.NumRecords(); i++ {
			rec, err := rdr.Record(i)
			if err != nil {
				return nil, xerrors.Errorf("could not read record %d of %q: %w", i, path, err)
			}
			rec.Retain()
			recs = append(recs, rec)
		}
		schema = rdr.Schema()
	}
	if schema == nil {
		return nil, xerrors.Errorf("no data in %q", path)
	}

	tbl := &table{schema: schema, cols: make([]arrow.Array, schema.NumFields())}
	for i := range tbl.cols {
		chunks := make([]arrow.Array, len(recs))
		for j, r := range recs {
			chunks[j] = r.Column(i)
		}
		col, err := concatColumn(mem, schema.Field(i).Type, chunks)
		if err != nil {
			tbl.release()
			return nil, err
		}
		if format == "csv" && col.DataType().ID() == arrow.INT64 {
			// CSV carries no 64-bit integer identity; inferred integers are
			// plain integers.
			narrowed, err := arrowcompute.CastArray(ctx, col, arrowcompute.SafeCastOptions(arrow.PrimitiveTypes.Int32))
			col.Release()
			if err != nil {
				tbl.release()
				return nil, xerrors.Errorf("column %q does not fit in int32: %w", schema.Field(i).Name, err)
			}
			col = narrowed
		}
		tbl.cols[i] = col
		tbl.rows = col.Len()
	}
	return tbl, nil
}

func concatColumn(mem memory.Allocator, dt arrow.DataType, chunks []arrow.Array) (arrow.Array, error) {
	if len(chunks) == 0 {
		return array.MakeArrayOfNull(mem, dt, 0), nil
	}
	return array.Concatenate(chunks, mem)
}
