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

package compute_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/Rahul-Devhub/data.table/compute"
	"github.com/Rahul-Devhub/data.table/extensions"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/suite"
)

type ReduceSuite struct {
	suite.Suite

	mem *memory.CheckedAllocator
	ctx context.Context
}

func (s *ReduceSuite) SetupTest() {
	s.mem = memory.NewCheckedAllocator(memory.DefaultAllocator)
	s.ctx = compute.WithAllocator(context.TODO(), s.mem)
}

func (s *ReduceSuite) TearDownTest() {
	s.mem.AssertSize(s.T(), 0)
}

func (s *ReduceSuite) fromJSON(dt arrow.DataType, js string) arrow.Array {
	arr, _, err := array.FromJSON(s.mem, dt, strings.NewReader(js))
	s.Require().NoError(err)
	return arr
}

func (s *ReduceSuite) ints(js string) arrow.Array {
	return s.fromJSON(arrow.PrimitiveTypes.Int32, js)
}

func (s *ReduceSuite) reals(js string) arrow.Array {
	return s.fromJSON(arrow.PrimitiveTypes.Float64, js)
}

func (s *ReduceSuite) bools(js string) arrow.Array {
	return s.fromJSON(arrow.FixedWidthTypes.Boolean, js)
}

func (s *ReduceSuite) complexes(re, im []float64, reValid, imValid []bool) arrow.Array {
	return extensions.NewComplexArrayFromParts(s.mem, re, im, reValid, imValid)
}

func (s *ReduceSuite) release(arrs ...arrow.Array) {
	for _, a := range arrs {
		a.Release()
	}
}

func (s *ReduceSuite) assertArraysEqual(expected, actual arrow.Array) {
	s.Truef(array.Equal(expected, actual), "expected: %s\ngot: %s", expected, actual)
}

func (s *ReduceSuite) assertSum(skipNulls bool, expected string, dt arrow.DataType, cols ...arrow.Array) {
	s.T().Helper()
	out, warnings, err := compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: skipNulls}, cols...)
	s.Require().NoError(err)
	defer out.Release()
	s.Empty(warnings)

	exp := s.fromJSON(dt, expected)
	defer exp.Release()
	s.assertArraysEqual(exp, out)
}

func (s *ReduceSuite) assertProduct(skipNulls bool, expected string, dt arrow.DataType, cols ...arrow.Array) {
	s.T().Helper()
	out, err := compute.Product(s.ctx, compute.ReduceOptions{SkipNulls: skipNulls}, cols...)
	s.Require().NoError(err)
	defer out.Release()

	exp := s.fromJSON(dt, expected)
	defer exp.Release()
	s.assertArraysEqual(exp, out)
}

func (s *ReduceSuite) TestSumRecycling() {
	one, four := s.ints(`[10]`), s.ints(`[1, 2, 3, 4]`)
	defer s.release(one, four)

	for _, skip := range []bool{false, true} {
		s.assertSum(skip, `[11, 12, 13, 14]`, arrow.PrimitiveTypes.Int32, one, four)
		s.assertSum(skip, `[11, 12, 13, 14]`, arrow.PrimitiveTypes.Int32, four, one)
	}
}

func (s *ReduceSuite) TestSumLeadingSingletons() {
	a, b, c := s.ints(`[1]`), s.ints(`[2]`), s.ints(`[1, 2, 3]`)
	defer s.release(a, b, c)

	s.assertSum(false, `[4, 5, 6]`, arrow.PrimitiveTypes.Int32, a, b, c)
	s.assertSum(false, `[4, 5, 6]`, arrow.PrimitiveTypes.Int32, c, a, b)
}

func (s *ReduceSuite) TestSumLengthMismatch() {
	four, one, two := s.ints(`[1, 2, 3, 4]`), s.ints(`[1]`), s.ints(`[1, 2]`)
	defer s.release(four, one, two)

	_, _, err := compute.Sum(s.ctx, compute.ReduceOptions{}, four, one, two)
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "first found 4, but 3 element has length 2")

	// a leading singleton only yields to the first longer operand
	three := s.ints(`[1, 2, 3]`)
	defer three.Release()
	_, _, err = compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: true}, one, four, three)
	s.ErrorContains(err, "first found 4, but 3 element has length 3")

	empty := s.ints(`[]`)
	defer empty.Release()
	_, _, err = compute.Sum(s.ctx, compute.ReduceOptions{}, one, empty)
	s.ErrorContains(err, "first found 1, but 2 element has length 0")
}

func (s *ReduceSuite) TestSumMissingPropagation() {
	a, b := s.ints(`[null, 2]`), s.ints(`[3, null]`)
	defer s.release(a, b)

	s.assertSum(false, `[null, null]`, arrow.PrimitiveTypes.Int32, a, b)
	s.assertSum(true, `[3, 2]`, arrow.PrimitiveTypes.Int32, a, b)
}

func (s *ReduceSuite) TestSumAllMissingRow() {
	a, b := s.ints(`[null, null]`), s.ints(`[null, null]`)
	defer s.release(a, b)

	s.assertSum(true, `[null, null]`, arrow.PrimitiveTypes.Int32, a, b)
	s.assertSum(false, `[null, null]`, arrow.PrimitiveTypes.Int32, a, b)

	r := s.reals(`[null, 1.5]`)
	defer r.Release()
	s.assertSum(true, `[null, 1.5]`, arrow.PrimitiveTypes.Float64, a, r)
}

func (s *ReduceSuite) TestSumLogical() {
	l, i := s.bools(`[true, false, null]`), s.ints(`[1, 1, 1]`)
	defer s.release(l, i)

	s.assertSum(false, `[2, 1, null]`, arrow.PrimitiveTypes.Int32, l, i)
	s.assertSum(true, `[2, 1, 1]`, arrow.PrimitiveTypes.Int32, l, i)
	s.assertSum(false, `[2, 0, null]`, arrow.PrimitiveTypes.Int32, l, l)
}

func (s *ReduceSuite) TestSumPromotesToReal() {
	i, r := s.ints(`[1, 2, null]`), s.reals(`[0.5, null, 1]`)
	defer s.release(i, r)

	s.assertSum(false, `[1.5, null, null]`, arrow.PrimitiveTypes.Float64, i, r)
	s.assertSum(false, `[1.5, null, null]`, arrow.PrimitiveTypes.Float64, r, i)
	s.assertSum(true, `[1.5, 2, 1]`, arrow.PrimitiveTypes.Float64, i, r)
}

func (s *ReduceSuite) TestSumRealNaNIsMissing() {
	bldr := array.NewFloat64Builder(s.mem)
	defer bldr.Release()
	bldr.AppendValues([]float64{1.5, math.NaN()}, nil)
	nan := bldr.NewArray()
	other := s.reals(`[1, 2]`)
	defer s.release(nan, other)

	s.assertSum(false, `[2.5, null]`, arrow.PrimitiveTypes.Float64, nan, other)
	s.assertSum(false, `[2.5, null]`, arrow.PrimitiveTypes.Float64, other, nan)
	s.assertSum(true, `[2.5, 2]`, arrow.PrimitiveTypes.Float64, nan, other)
}

func (s *ReduceSuite) TestSumPromotesToComplex() {
	i, r := s.ints(`[1, 2]`), s.reals(`[0.5, 0.25]`)
	c := s.complexes([]float64{1, 2}, []float64{3, 4}, nil, nil)
	defer s.release(i, r, c)

	orders := [][]arrow.Array{{i, r, c}, {c, r, i}, {r, c, i}}
	for _, cols := range orders {
		out, _, err := compute.Sum(s.ctx, compute.ReduceOptions{}, cols...)
		s.Require().NoError(err)
		cplx, ok := out.(*extensions.ComplexArray)
		s.Require().True(ok, "expected complex output, got %s", out.DataType())
		s.Equal(complex(2.5, 3), cplx.Value(0))
		s.Equal(complex(4.25, 4), cplx.Value(1))
		out.Release()
	}
}

func (s *ReduceSuite) TestSumComplexMissingParts() {
	// 1+NAi, NA+NAi
	a := s.complexes([]float64{1, 0}, []float64{0, 0}, []bool{true, false}, []bool{false, false})
	b := s.complexes([]float64{2, 5}, []float64{3, 6}, nil, nil)
	defer s.release(a, b)

	out, _, err := compute.Sum(s.ctx, compute.ReduceOptions{}, a, b)
	s.Require().NoError(err)
	defer out.Release()
	cplx := out.(*extensions.ComplexArray)

	re, _, reOK, imOK := cplx.Parts(0)
	s.True(reOK)
	s.False(imOK)
	s.Equal(3.0, re)
	s.True(cplx.IsNull(1))

	skipped, _, err := compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: true}, a, b)
	s.Require().NoError(err)
	defer skipped.Release()
	cplx = skipped.(*extensions.ComplexArray)
	s.Equal(complex(3, 3), cplx.Value(0))
	s.Equal(complex(5, 6), cplx.Value(1))
}

func (s *ReduceSuite) TestSumComplexWithMissingScalars() {
	c := s.complexes([]float64{1, 2, 3}, []float64{1, 2, 3}, nil, nil)
	i := s.ints(`[10, null, null]`)
	none := s.ints(`[null, null, null]`)
	defer s.release(c, i, none)

	out, _, err := compute.Sum(s.ctx, compute.ReduceOptions{}, c, i)
	s.Require().NoError(err)
	defer out.Release()
	cplx := out.(*extensions.ComplexArray)
	s.Equal(complex(11, 1), cplx.Value(0))
	s.True(cplx.IsMissing(1))
	s.True(cplx.IsNull(2))

	skipped, _, err := compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: true}, none, i)
	s.Require().NoError(err)
	defer skipped.Release()
	s.Equal(arrow.INT32, skipped.DataType().ID())

	mixed, _, err := compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: true}, none, i, c)
	s.Require().NoError(err)
	defer mixed.Release()
	cplx = mixed.(*extensions.ComplexArray)
	s.Equal(complex(11, 1), cplx.Value(0))
	s.Equal(complex(2, 2), cplx.Value(1))
	s.Equal(complex(3, 3), cplx.Value(2))
}

func (s *ReduceSuite) TestSumOverflowWarns() {
	a, b := s.ints(`[2147483647, 1, -2147483647]`), s.ints(`[1, 1, -1]`)
	defer s.release(a, b)

	out, warnings, err := compute.Sum(s.ctx, compute.ReduceOptions{}, a, b)
	s.Require().NoError(err)
	defer out.Release()

	s.Len(warnings, 1)
	s.ErrorIs(warnings[0], compute.ErrIntegerOverflow)
	s.ErrorContains(warnings[0], "2147483647")

	exp := s.ints(`[null, 2, null]`)
	defer exp.Release()
	s.assertArraysEqual(exp, out)
}

func (s *ReduceSuite) TestSumOverflowFailsWhenSkippingNulls() {
	a, b := s.ints(`[2147483647, null]`), s.ints(`[1, 1]`)
	defer s.release(a, b)

	out, warnings, err := compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: true}, a, b)
	s.Nil(out)
	s.Empty(warnings)
	s.ErrorIs(err, compute.ErrIntegerOverflow)
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "please cast to numeric first")
}

func (s *ReduceSuite) TestSumRealDoesNotOverflow() {
	a, b := s.ints(`[2147483647]`), s.reals(`[1]`)
	defer s.release(a, b)

	s.assertSum(true, `[2147483648]`, arrow.PrimitiveTypes.Float64, a, b)
}

func (s *ReduceSuite) TestSingleOperandIsCopied() {
	for _, col := range []arrow.Array{
		s.ints(`[1, null, 3]`),
		s.reals(`[1.5, null]`),
		s.fromJSON(arrow.BinaryTypes.String, `["a", "b"]`),
	} {
		for _, skip := range []bool{false, true} {
			out, warnings, err := compute.Sum(s.ctx, compute.ReduceOptions{SkipNulls: skip}, col)
			s.Require().NoError(err)
			s.Empty(warnings)
			s.assertArraysEqual(col, out)
			out.Release()

			out, err = compute.Product(s.ctx, compute.ReduceOptions{SkipNulls: skip}, col)
			s.Require().NoError(err)
			s.assertArraysEqual(col, out)
			out.Release()
		}
		col.Release()
	}
}

func (s *ReduceSuite) TestStructIsUnwrapped() {
	a, b := s.ints(`[1, null, 3]`), s.reals(`[1, 2, null]`)
	defer s.release(a, b)

	st, err := array.NewStructArray([]arrow.Array{a, b}, []string{"a", "b"})
	s.Require().NoError(err)
	defer st.Release()

	s.assertSum(false, `[2, null, null]`, arrow.PrimitiveTypes.Float64, st)
	s.assertSum(true, `[2, 2, 3]`, arrow.PrimitiveTypes.Float64, st)
	s.assertProduct(true, `[1, 2, 3]`, arrow.PrimitiveTypes.Float64, st)

	single, err := array.NewStructArray([]arrow.Array{a}, []string{"a"})
	s.Require().NoError(err)
	defer single.Release()
	s.assertSum(false, `[1, null, 3]`, arrow.PrimitiveTypes.Int32, single)
}

func (s *ReduceSuite) TestEmptyInput() {
	_, _, err := compute.Sum(s.ctx, compute.ReduceOptions{})
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "empty input")

	_, err = compute.Product(s.ctx, compute.ReduceOptions{SkipNulls: true})
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "empty input")
}

func (s *ReduceSuite) TestZeroLength() {
	ei, er, one := s.ints(`[]`), s.reals(`[]`), s.ints(`[1]`)
	defer s.release(ei, er, one)

	for _, skip := range []bool{false, true} {
		s.assertSum(skip, `[]`, arrow.PrimitiveTypes.Int32, ei, ei)
		s.assertSum(skip, `[]`, arrow.PrimitiveTypes.Float64, ei, er)
		s.assertSum(skip, `[]`, arrow.PrimitiveTypes.Int32, ei, one)
		s.assertProduct(skip, `[]`, arrow.PrimitiveTypes.Float64, er, ei)
	}
}

func (s *ReduceSuite) TestRejectedTypes() {
	indices, dict := s.fromJSON(arrow.PrimitiveTypes.Int8, `[0, 1]`), s.fromJSON(arrow.BinaryTypes.String, `["lo", "hi"]`)
	factor := array.NewDictionaryArray(&arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}, indices, dict)
	i64 := s.fromJSON(arrow.PrimitiveTypes.Int64, `[1, 2]`)
	str := s.fromJSON(arrow.BinaryTypes.String, `["a", "b"]`)
	ok := s.ints(`[1, 2]`)
	defer s.release(indices, dict, factor, i64, str, ok)

	_, _, err := compute.Sum(s.ctx, compute.ReduceOptions{}, ok, factor)
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "not meaningful for factors")

	_, _, err = compute.Sum(s.ctx, compute.ReduceOptions{}, i64, ok)
	s.ErrorIs(err, arrow.ErrNotImplemented)
	s.ErrorContains(err, "integer64 input not supported")

	_, _, err = compute.Sum(s.ctx, compute.ReduceOptions{}, ok, str)
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "only numeric inputs are supported for sum")

	_, err = compute.Product(s.ctx, compute.ReduceOptions{}, ok, factor)
	s.ErrorContains(err, "product not meaningful for factors")

	_, err = compute.Product(s.ctx, compute.ReduceOptions{}, ok, i64)
	s.ErrorIs(err, arrow.ErrNotImplemented)
}

func (s *ReduceSuite) TestProduct() {
	a, b := s.ints(`[2, 3, null]`), s.ints(`[4, null, null]`)
	defer s.release(a, b)

	s.assertProduct(false, `[8, null, null]`, arrow.PrimitiveTypes.Int32, a, b)
	s.assertProduct(true, `[8, 3, null]`, arrow.PrimitiveTypes.Int32, a, b)

	r := s.reals(`[0.5, 2, 4]`)
	defer r.Release()
	s.assertProduct(false, `[1, 6, null]`, arrow.PrimitiveTypes.Float64, a, r)
	s.assertProduct(true, `[4, 6, 4]`, arrow.PrimitiveTypes.Float64, r, a, b)

	l := s.bools(`[true, false, true]`)
	defer l.Release()
	s.assertProduct(false, `[2, 0, null]`, arrow.PrimitiveTypes.Int32, l, a)
}

func (s *ReduceSuite) TestProductRequiresEqualLengths() {
	one, two := s.ints(`[2]`), s.ints(`[1, 2]`)
	defer s.release(one, two)

	_, err := compute.Product(s.ctx, compute.ReduceOptions{}, one, two)
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "first found 1, but 2 element has length 2")

	_, err = compute.Product(s.ctx, compute.ReduceOptions{}, two, one)
	s.ErrorContains(err, "first found 2, but 2 element has length 1")
}

func (s *ReduceSuite) TestProductRejectsComplex() {
	a := s.ints(`[1]`)
	c := s.complexes([]float64{1}, []float64{1}, nil, nil)
	defer s.release(a, c)

	_, err := compute.Product(s.ctx, compute.ReduceOptions{}, a, c)
	s.ErrorIs(err, arrow.ErrInvalid)
	s.ErrorContains(err, "only numeric inputs are supported for product")
}

func (s *ReduceSuite) TestProductDoesNotCheckOverflow() {
	a := s.ints(`[65536, 3]`)
	defer a.Release()

	// 2^32 wraps to zero in int32
	s.assertProduct(false, `[0, 9]`, arrow.PrimitiveTypes.Int32, a, a)
}

func (s *ReduceSuite) TestSumIsRepeatable() {
	a, b := s.ints(`[1, null, 2147483647]`), s.ints(`[5, 6, 1]`)
	defer s.release(a, b)

	first, w1, err := compute.Sum(s.ctx, compute.ReduceOptions{}, a, b)
	s.Require().NoError(err)
	defer first.Release()
	second, w2, err := compute.Sum(s.ctx, compute.ReduceOptions{}, a, b)
	s.Require().NoError(err)
	defer second.Release()

	s.assertArraysEqual(first, second)
	s.Equal(len(w1), len(w2))

	// inputs are untouched
	exp := s.ints(`[1, null, 2147483647]`)
	defer exp.Release()
	s.assertArraysEqual(exp, a)
}

func TestReduce(t *testing.T) {
	suite.Run(t, new(ReduceSuite))
}
