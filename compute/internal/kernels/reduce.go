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

package kernels

import (
	"fmt"

	"github.com/Rahul-Devhub/data.table/internal/debug"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// SumExec reduces ops, all of length n or 1, into a column of kind out by
// elementwise addition. With skipNulls unset an integer overflow makes the
// affected slots missing and is reported through overflowed; with skipNulls
// set it fails with ErrIntegerOverflow.
func SumExec(mem memory.Allocator, out Kind, n int, ops []Operand, skipNulls bool) (result arrow.Array, overflowed bool, err error) {
	switch out {
	case KindInteger:
		acc := newIntAccumulator(n)
		if skipNulls {
			for _, op := range ops {
				if !acc.sumSkip(op) {
					return nil, false, fmt.Errorf("%w: inputs have exceeded .Machine$integer.max=%d in absolute value; please cast to numeric first and try again",
						ErrIntegerOverflow, MaxInt)
				}
			}
		} else {
			acc.load(ops[0])
			for _, op := range ops[1:] {
				if acc.sum(op) {
					overflowed = true
				}
			}
		}
		return acc.finish(mem), overflowed, nil

	case KindReal:
		acc := newRealAccumulator(n)
		if skipNulls {
			for _, op := range ops {
				acc.sumSkip(op)
			}
		} else {
			acc.load(ops[0])
			for _, op := range ops[1:] {
				acc.sum(op)
			}
		}
		return acc.finish(mem), false, nil

	case KindComplex:
		acc := newComplexAccumulator(n)
		if skipNulls {
			for _, op := range ops {
				acc.sumSkip(op)
			}
		} else {
			acc.load(ops[0])
			for _, op := range ops[1:] {
				acc.sum(op)
			}
		}
		return acc.finish(mem), false, nil
	}

	debug.Assert(false, "sum output kind should have been promoted by now")
	return nil, false, fmt.Errorf("%w: unexpected sum output kind %s", ErrInternal, out)
}

// ProdExec reduces ops, all of length n, into a column of kind out by
// elementwise multiplication. Integer products are not overflow checked.
func ProdExec(mem memory.Allocator, out Kind, n int, ops []Operand, skipNulls bool) (arrow.Array, error) {
	switch out {
	case KindInteger:
		acc := newIntAccumulator(n)
		prodInto(acc, ops, skipNulls)
		return acc.finish(mem), nil
	case KindReal:
		acc := newRealAccumulator(n)
		prodInto(acc, ops, skipNulls)
		return acc.finish(mem), nil
	}

	debug.Assert(false, "product output kind must be integer or real")
	return nil, fmt.Errorf("%w: unexpected product output kind %s", ErrInternal, out)
}

func prodInto[T int32 | float64](acc *accumulator[T], ops []Operand, skipNulls bool) {
	if skipNulls {
		for _, op := range ops {
			acc.prodSkip(op)
		}
		return
	}

	acc.load(ops[0])
	for _, op := range ops[1:] {
		acc.prod(op)
	}
}
