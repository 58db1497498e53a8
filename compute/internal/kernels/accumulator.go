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
	"errors"
	"fmt"
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/exp/constraints"
)

// MaxInt is the largest magnitude an integer sum may reach. The range is
// symmetric: math.MinInt32 is never produced by a sum.
const MaxInt = math.MaxInt32

var (
	ErrIntegerOverflow = fmt.Errorf("%w: integer overflow", arrow.ErrInvalid)
	ErrJoinTooLarge    = fmt.Errorf("%w: join result too large", arrow.ErrInvalid)
	ErrInternal        = errors.New("internal error")
)

// CheckedAddInt32 adds a and b, reporting false when the result leaves
// [-MaxInt, MaxInt].
func CheckedAddInt32(a, b int32) (int32, bool) {
	out, ok := overflow.Add32(a, b)
	if !ok || out == math.MinInt32 {
		return 0, false
	}
	return out, true
}

func addFloat64(a, b float64) (float64, bool) { return a + b, true }

func mul[T constraints.Signed | constraints.Float](a, b T) T { return a * b }

// accumulator is the call-local output buffer of an integer or real
// reduction. A slot is missing when it is invalid or holds NaN.
type accumulator[T int32 | float64] struct {
	vals  []T
	valid []bool

	get func(Operand, int) (T, bool)
	add func(a, b T) (T, bool)
}

func newIntAccumulator(n int) *accumulator[int32] {
	return &accumulator[int32]{
		vals: make([]int32, n), valid: make([]bool, n),
		get: Operand.Int, add: CheckedAddInt32,
	}
}

func newRealAccumulator(n int) *accumulator[float64] {
	return &accumulator[float64]{
		vals: make([]float64, n), valid: make([]bool, n),
		get: Operand.Real, add: addFloat64,
	}
}

func (a *accumulator[T]) missing(i int) bool {
	// v != v only holds for NaN
	return !a.valid[i] || a.vals[i] != a.vals[i]
}

func (a *accumulator[T]) load(op Operand) {
	for i := range a.vals {
		a.vals[i], a.valid[i] = a.get(op, i)
	}
}

// sum adds op into every present slot; a missing operand value makes the slot
// missing. It reports whether any slot overflowed, which also makes the slot
// missing.
func (a *accumulator[T]) sum(op Operand) (overflowed bool) {
	for i := range a.vals {
		if a.missing(i) {
			continue
		}
		v, ok := a.get(op, i)
		if !ok {
			a.valid[i] = false
			continue
		}
		if a.vals[i], ok = a.add(a.vals[i], v); !ok {
			a.valid[i] = false
			overflowed = true
		}
	}
	return
}

// sumSkip adds the present values of op, filling missing slots. It returns
// false at the first overflow.
func (a *accumulator[T]) sumSkip(op Operand) bool {
	for i := range a.vals {
		v, ok := a.get(op, i)
		if !ok {
			continue
		}
		if a.missing(i) {
			a.vals[i], a.valid[i] = v, true
			continue
		}
		if a.vals[i], ok = a.add(a.vals[i], v); !ok {
			return false
		}
	}
	return true
}

func (a *accumulator[T]) prod(op Operand) {
	for i := range a.vals {
		if a.missing(i) {
			continue
		}
		v, ok := a.get(op, i)
		if !ok {
			a.valid[i] = false
			continue
		}
		a.vals[i] = mul(a.vals[i], v)
	}
}

func (a *accumulator[T]) prodSkip(op Operand) {
	for i := range a.vals {
		v, ok := a.get(op, i)
		if !ok {
			continue
		}
		if a.missing(i) {
			a.vals[i], a.valid[i] = v, true
			continue
		}
		a.vals[i] = mul(a.vals[i], v)
	}
}

func validity(valid []bool) []bool {
	for _, ok := range valid {
		if !ok {
			return valid
		}
	}
	return nil
}

func (a *accumulator[T]) finish(mem memory.Allocator) arrow.Array {
	switch vals := any(a.vals).(type) {
	case []int32:
		bldr := array.NewInt32Builder(mem)
		defer bldr.Release()
		bldr.AppendValues(vals, validity(a.valid))
		return bldr.NewArray()
	case []float64:
		bldr := array.NewFloat64Builder(mem)
		defer bldr.Release()
		bldr.AppendValues(vals, validity(a.valid))
		return bldr.NewArray()
	}
	panic("unreachable")
}
