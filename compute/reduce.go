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
	"github.com/Rahul-Devhub/data.table/internal/debug"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// operandList resolves the operands of a reduction. A single struct array
// stands for the list of its fields, the way a whole group's columns are
// passed at once.
func operandList(columns []arrow.Array) ([]arrow.Array, error) {
	if len(columns) == 1 {
		if st, ok := columns[0].(*array.Struct); ok {
			fields := make([]arrow.Array, st.NumField())
			for i := range fields {
				fields[i] = st.Field(i)
			}
			columns = fields
		}
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: empty input", arrow.ErrInvalid)
	}
	return columns, nil
}

// duplicate returns a copy of arr owned by the caller.
func duplicate(mem memory.Allocator, arr arrow.Array) (arrow.Array, error) {
	return array.Concatenate([]arrow.Array{arr}, mem)
}

// Sum returns the elementwise sum of columns.
//
// The output is int32 when every operand is boolean or int32, float64 when
// any operand is float64, and complex128 when any operand is complex. All
// operands must share one length n, except that length-1 operands are
// recycled against it; a length-1 first operand adopts the length of the first
// longer operand that follows. A single operand is returned as a copy without
// further checks.
//
// With opts.SkipNulls unset, a missing value at a row makes the row missing
// and an int32 overflow makes the row missing and yields one warning wrapping
// ErrIntegerOverflow. With opts.SkipNulls set, missing values are ignored, a
// row with no present values stays missing, and an int32 overflow fails the
// call with ErrIntegerOverflow.
func Sum(ctx context.Context, opts ReduceOptions, columns ...arrow.Array) (out arrow.Array, warnings []error, err error) {
	mem := GetAllocator(ctx)
	if columns, err = operandList(columns); err != nil {
		return nil, nil, err
	}
	if len(columns) == 1 {
		out, err = duplicate(mem, columns[0])
		return out, nil, err
	}

	var (
		ops  = make([]kernels.Operand, len(columns))
		kind = kernels.KindInteger
		n    = -1
	)
	for j, col := range columns {
		if ops[j], err = kernels.NewOperand("sum", col); err != nil {
			return nil, nil, err
		}
		kind = kind.Promote(ops[j].Kind)

		nj := col.Len()
		switch {
		case n < 0:
			n = nj
		case n == 1 && nj > 1:
			n = nj
		case nj != 1 && nj != n:
			return nil, nil, fmt.Errorf("%w: inconsistent input lengths -- first found %d, but %d element has length %d. Only singletons will be recycled",
				arrow.ErrInvalid, n, j+1, nj)
		}
	}

	debug.Log(func() string {
		return fmt.Sprintf("sum: %d operands, length %d, output %s, skip nulls %t", len(ops), n, kind, opts.SkipNulls)
	})

	out, overflowed, err := kernels.SumExec(mem, kind, n, ops, opts.SkipNulls)
	if err != nil {
		return nil, nil, err
	}
	if overflowed {
		warnings = append(warnings, fmt.Errorf("%w: inputs have exceeded .Machine$integer.max=%d in absolute value; returning NA. Please cast to numeric first to avoid this",
			ErrIntegerOverflow, kernels.MaxInt))
	}
	return out, warnings, nil
}

// Product returns the elementwise product of columns.
//
// Operands must be boolean, int32 or float64 and all of exactly the same
// length; nothing is recycled. The output is float64 when any operand is
// float64 and int32 otherwise. Missing values follow the same rules as Sum.
// Integer products are not checked for overflow and wrap around.
func Product(ctx context.Context, opts ReduceOptions, columns ...arrow.Array) (arrow.Array, error) {
	mem := GetAllocator(ctx)
	columns, err := operandList(columns)
	if err != nil {
		return nil, err
	}
	if len(columns) == 1 {
		return duplicate(mem, columns[0])
	}

	var (
		ops  = make([]kernels.Operand, len(columns))
		kind = kernels.KindInteger
		n    = -1
	)
	for j, col := range columns {
		if ops[j], err = kernels.NewOperand("product", col); err != nil {
			return nil, err
		}
		if ops[j].Kind == kernels.KindComplex {
			return nil, fmt.Errorf("%w: only numeric inputs are supported for product, got %s",
				arrow.ErrInvalid, col.DataType())
		}
		kind = kind.Promote(ops[j].Kind)

		switch nj := col.Len(); {
		case n < 0:
			n = nj
		case nj != n:
			return nil, fmt.Errorf("%w: inconsistent input lengths -- first found %d, but %d element has length %d",
				arrow.ErrInvalid, n, j+1, nj)
		}
	}

	debug.Log(func() string {
		return fmt.Sprintf("product: %d operands, length %d, output %s, skip nulls %t", len(ops), n, kind, opts.SkipNulls)
	})

	return kernels.ProdExec(mem, kind, n, ops, opts.SkipNulls)
}
