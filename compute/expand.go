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

package compute

import (
	"context"
	"fmt"

	"github.com/Rahul-Devhub/data.table/compute/internal/kernels"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// GroupInfo locates each kept run inside an expansion.
type GroupInfo struct {
	// Starts holds the 1-based position of each kept run in the output.
	Starts *array.Int32
	// Lens holds the length of each kept run.
	Lens *array.Int32
}

func (g *GroupInfo) Release() {
	g.Starts.Release()
	g.Lens.Release()
}

// Expansion is the result of ExpandRangesHaving.
type Expansion struct {
	Indices *array.Int32
	// Groups is nil unless requested and at least one row was filtered out.
	Groups *GroupInfo
}

func (e *Expansion) Release() {
	e.Indices.Release()
	if e.Groups != nil {
		e.Groups.Release()
	}
}

func rangeArgs(starts, lens arrow.Array) (x, l []int32, err error) {
	if starts.DataType().ID() != arrow.INT32 {
		return nil, nil, fmt.Errorf("%w: x must be an integer vector, got %s", arrow.ErrInvalid, starts.DataType())
	}
	if lens.DataType().ID() != arrow.INT32 {
		return nil, nil, fmt.Errorf("%w: len must be an integer vector, got %s", arrow.ErrInvalid, lens.DataType())
	}
	if starts.Len() != lens.Len() {
		return nil, nil, fmt.Errorf("%w: x and len must be the same length", arrow.ErrInvalid)
	}
	if starts.NullN() > 0 || lens.NullN() > 0 {
		return nil, nil, fmt.Errorf("%w: x and len must not contain nulls", arrow.ErrInvalid)
	}

	x, l = starts.(*array.Int32).Int32Values(), lens.(*array.Int32).Int32Values()
	for i, v := range l {
		if v < 0 {
			return nil, nil, fmt.Errorf("%w: len must be non-negative, found %d at position %d", arrow.ErrInvalid, v, i+1)
		}
	}
	return x, l, nil
}

func errPhysicalLimit() error {
	return fmt.Errorf("%w: join results in more than 2^31 rows (internal vecseq reached physical limit). Very likely misspecified join. "+
		"Check for duplicate key values in i each of which join to the same group in x over and over again. "+
		"If that's ok, try by=.EACHI to run j for each group to avoid the large allocation",
		ErrJoinTooLarge)
}

// newInt32Array allocates an int32 array of length n and lets fill write its
// values directly into the buffer.
func newInt32Array(mem memory.Allocator, n int, fill func([]int32)) *array.Int32 {
	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()
	buf.Resize(n * arrow.Int32SizeBytes)
	if n > 0 {
		fill(arrow.Int32Traits.CastFromBytes(buf.Bytes()))
	}

	data := array.NewData(arrow.PrimitiveTypes.Int32, n, []*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.NewInt32Data(data)
}

// ExpandRanges returns, for every i in order, the run starts[i],
// starts[i]+1, ..., starts[i]+lens[i]-1, concatenated. starts and lens are
// int32 arrays of equal length without nulls, and lens must not be negative.
//
// The call fails with ErrJoinTooLarge when the total does not fit in an int32
// or exceeds opts.Clamp.
func ExpandRanges(ctx context.Context, opts ExpandOptions, starts, lens arrow.Array) (*array.Int32, error) {
	x, l, err := rangeArgs(starts, lens)
	if err != nil {
		return nil, err
	}

	total, _, ok := kernels.RangeTotal(l, nil)
	if !ok {
		return nil, errPhysicalLimit()
	}

	if opts.Clamped {
		if opts.Clamp < 0 {
			return nil, fmt.Errorf("%w: clamp must be positive", arrow.ErrInvalid)
		}
		if int64(total) > opts.Clamp {
			return nil, fmt.Errorf("%w: join results in %d rows; more than %d = nrow(x)+nrow(i). "+
				"Check for duplicate key values in i each of which join to the same group in x over and over again. "+
				"If that's ok, try by=.EACHI to run j for each group to avoid the large allocation. "+
				"If you are sure you wish to proceed, rerun with allow.cartesian=TRUE",
				ErrJoinTooLarge, total, opts.Clamp)
		}
	}

	return newInt32Array(GetAllocator(ctx), int(total), func(out []int32) {
		kernels.ExpandRanges(out, x, l, nil, nil, nil)
	}), nil
}

// ExpandRangesHaving is ExpandRanges restricted to the rows where keep is
// true; null keep slots drop their row. When wantGroups is set and at least
// one row was dropped, the result also carries the 1-based output position
// and length of each kept run so the caller can split the indices back into
// groups. If every row is kept those runs coincide with the input and Groups
// is left nil. An expansion with no rows has no Groups either.
func ExpandRangesHaving(ctx context.Context, starts, lens, keep arrow.Array, wantGroups bool) (*Expansion, error) {
	x, l, err := rangeArgs(starts, lens)
	if err != nil {
		return nil, err
	}
	if keep.DataType().ID() != arrow.BOOL {
		return nil, fmt.Errorf("%w: having must be a logical vector, got %s", arrow.ErrInvalid, keep.DataType())
	}
	if keep.Len() != starts.Len() {
		return nil, fmt.Errorf("%w: x and having must be the same length", arrow.ErrInvalid)
	}

	having := keep.(*array.Boolean)
	mask := kernels.Mask(func(i int) bool { return having.IsValid(i) && having.Value(i) })

	total, kept, ok := kernels.RangeTotal(l, mask)
	if !ok {
		return nil, errPhysicalLimit()
	}

	mem := GetAllocator(ctx)
	if total == 0 {
		return &Expansion{Indices: newInt32Array(mem, 0, nil)}, nil
	}

	if !wantGroups || kept == len(l) {
		return &Expansion{Indices: newInt32Array(mem, int(total), func(out []int32) {
			kernels.ExpandRanges(out, x, l, mask, nil, nil)
		})}, nil
	}

	offsets, sizes := make([]int32, kept), make([]int32, kept)
	indices := newInt32Array(mem, int(total), func(out []int32) {
		kernels.ExpandRanges(out, x, l, mask, offsets, sizes)
	})
	return &Expansion{
		Indices: indices,
		Groups: &GroupInfo{
			Starts: newInt32Array(mem, kept, func(out []int32) { copy(out, offsets) }),
			Lens:   newInt32Array(mem, kept, func(out []int32) { copy(out, sizes) }),
		},
	}, nil
}
