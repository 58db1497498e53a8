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
	"math"

	"github.com/Rahul-Devhub/data.table/extensions"
	"github.com/Rahul-Devhub/data.table/internal/debug"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// Kind is the closed set of scalar kinds the reduction kernels accept.
type Kind int8

const (
	KindLogical Kind = iota
	KindInteger
	KindReal
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindLogical:
		return "logical"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindComplex:
		return "complex"
	}
	return fmt.Sprintf("Kind(%d)", int8(k))
}

// Promote returns the output kind of a sum over an accumulated kind k and an
// operand of kind o: integer-like < real < complex. Logical operands
// accumulate as integers.
func (k Kind) Promote(o Kind) Kind {
	switch {
	case k == KindComplex || o == KindComplex:
		return KindComplex
	case k == KindReal || o == KindReal:
		return KindReal
	default:
		return KindInteger
	}
}

// Classify maps an array type onto a Kind. fn names the calling function in
// the error for rejected types.
func Classify(fn string, arr arrow.Array) (Kind, error) {
	switch dt := arr.DataType(); dt.ID() {
	case arrow.BOOL:
		return KindLogical, nil
	case arrow.INT32:
		return KindInteger, nil
	case arrow.FLOAT64:
		return KindReal, nil
	case arrow.DICTIONARY:
		return 0, fmt.Errorf("%w: %s not meaningful for factors", arrow.ErrInvalid, fn)
	case arrow.INT64:
		return 0, fmt.Errorf("%w: integer64 input not supported", arrow.ErrNotImplemented)
	case arrow.EXTENSION:
		if _, ok := dt.(*extensions.ComplexType); ok {
			return KindComplex, nil
		}
	}
	return 0, fmt.Errorf("%w: only numeric inputs are supported for %s, got %s",
		arrow.ErrInvalid, fn, arr.DataType())
}

// Operand is a read-only typed view over one input column. Singleton
// operands are recycled: every output position reads slot 0.
type Operand struct {
	Kind Kind

	arr   arrow.Array
	bools *array.Boolean
	ints  *array.Int32
	reals *array.Float64
	cplx  *extensions.ComplexArray
}

// NewOperand classifies arr and wraps it for reading.
func NewOperand(fn string, arr arrow.Array) (Operand, error) {
	kind, err := Classify(fn, arr)
	if err != nil {
		return Operand{}, err
	}

	op := Operand{Kind: kind, arr: arr}
	switch kind {
	case KindLogical:
		op.bools = arr.(*array.Boolean)
	case KindInteger:
		op.ints = arr.(*array.Int32)
	case KindReal:
		op.reals = arr.(*array.Float64)
	case KindComplex:
		op.cplx = arr.(*extensions.ComplexArray)
	}
	return op, nil
}

func (o Operand) Len() int { return o.arr.Len() }

func (o Operand) slot(i int) int {
	if o.arr.Len() == 1 {
		return 0
	}
	return i
}

// Int returns the integer value at output position i and whether it is
// present. Only valid for integer-like operands.
func (o Operand) Int(i int) (int32, bool) {
	i = o.slot(i)
	if o.arr.IsNull(i) {
		return 0, false
	}
	switch o.Kind {
	case KindLogical:
		if o.bools.Value(i) {
			return 1, true
		}
		return 0, true
	case KindInteger:
		return o.ints.Value(i), true
	}
	debug.Assert(false, "Int called on a non integer-like operand")
	return 0, false
}

// Real returns the value at output position i widened to float64. NaN reads
// as missing.
func (o Operand) Real(i int) (float64, bool) {
	switch o.Kind {
	case KindLogical, KindInteger:
		v, ok := o.Int(i)
		return float64(v), ok
	case KindReal:
		i = o.slot(i)
		if o.reals.IsNull(i) {
			return 0, false
		}
		v := o.reals.Value(i)
		return v, !math.IsNaN(v)
	}
	debug.Assert(false, "Real called on a complex operand")
	return 0, false
}

// Complex returns the parts at output position i. Integer-like and real
// operands have a zero imaginary part that is missing exactly when the real
// part is.
func (o Operand) Complex(i int) (re, im float64, reOK, imOK bool) {
	if o.Kind == KindComplex {
		return o.cplx.Parts(o.slot(i))
	}
	v, ok := o.Real(i)
	return v, 0, ok, ok
}
