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

// Package extensions holds the Arrow extension types used by the row-wise
// kernels. ComplexType stores a complex128 column as a fixed size list of two
// float64 values so that the real and imaginary parts keep independent
// validity.
package extensions

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/bitutil"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/goccy/go-json"
)

const ExtensionNameComplex = "datatable.complex128"

func init() {
	if err := arrow.RegisterExtensionType(NewComplexType()); err != nil {
		panic(err)
	}
}

// ComplexType is an extension type for complex128 values. The storage is
// fixed_size_list<item: float64>[2] where slot 0 is the real part and slot 1
// the imaginary part.
type ComplexType struct {
	arrow.ExtensionBase
}

func NewComplexType() *ComplexType {
	return &ComplexType{ExtensionBase: arrow.ExtensionBase{
		Storage: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float64)}}
}

func (*ComplexType) ArrayType() reflect.Type { return reflect.TypeOf(ComplexArray{}) }

func (c *ComplexType) Deserialize(storageType arrow.DataType, data string) (arrow.ExtensionType, error) {
	if data != ExtensionNameComplex {
		return nil, fmt.Errorf("type identifier did not match: '%s'", data)
	}
	if !arrow.TypeEqual(storageType, c.Storage) {
		return nil, fmt.Errorf("invalid storage type for ComplexType: %s", storageType)
	}
	return NewComplexType(), nil
}

func (c *ComplexType) ExtensionEquals(other arrow.ExtensionType) bool {
	return c.ExtensionName() == other.ExtensionName()
}

func (*ComplexType) ExtensionName() string { return ExtensionNameComplex }

func (*ComplexType) Serialize() string { return ExtensionNameComplex }

func (c *ComplexType) String() string { return fmt.Sprintf("complex128<storage=%s>", c.Storage) }

// ComplexArray is an array of complex128 values. A slot whose list entry is
// null has both parts missing; otherwise each part is missing when its child
// slot is null or holds NaN.
type ComplexArray struct {
	array.ExtensionArrayBase
}

// Parts returns the real and imaginary parts at i along with whether each
// part is present.
func (a *ComplexArray) Parts(i int) (re, im float64, reOK, imOK bool) {
	if a.IsNull(i) {
		return math.NaN(), math.NaN(), false, false
	}
	lst := a.Storage().(*array.FixedSizeList)
	vals := lst.ListValues().(*array.Float64)
	j := (lst.Data().Offset() + i) * 2
	re, reOK = part(vals, j)
	im, imOK = part(vals, j+1)
	return
}

func part(vals *array.Float64, j int) (float64, bool) {
	if vals.IsNull(j) {
		return math.NaN(), false
	}
	v := vals.Value(j)
	return v, !math.IsNaN(v)
}

// Value returns the value at i, with NaN standing in for a missing part.
func (a *ComplexArray) Value(i int) complex128 {
	re, im, _, _ := a.Parts(i)
	return complex(re, im)
}

// IsMissing reports whether either part at i is missing.
func (a *ComplexArray) IsMissing(i int) bool {
	_, _, reOK, imOK := a.Parts(i)
	return !reOK || !imOK
}

func formatPart(v float64, ok bool) string {
	if !ok {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (a *ComplexArray) ValueStr(i int) string {
	if a.IsNull(i) {
		return array.NullValueStr
	}
	re, im, reOK, imOK := a.Parts(i)
	return formatPart(re, reOK) + "+" + formatPart(im, imOK) + "i"
}

func (a *ComplexArray) String() string {
	var o strings.Builder
	o.WriteString("[")
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			o.WriteString(" ")
		}
		o.WriteString(a.ValueStr(i))
	}
	o.WriteString("]")
	return o.String()
}

func (a *ComplexArray) GetOneForMarshal(i int) interface{} {
	if a.IsNull(i) {
		return nil
	}
	re, im, reOK, imOK := a.Parts(i)
	out := [2]interface{}{}
	if reOK {
		out[0] = re
	}
	if imOK {
		out[1] = im
	}
	return out
}

// MarshalJSON encodes the array as a list of [re, im] pairs, with null for a
// missing slot or a missing part.
func (a *ComplexArray) MarshalJSON() ([]byte, error) {
	values := make([]interface{}, a.Len())
	for i := 0; i < a.Len(); i++ {
		values[i] = a.GetOneForMarshal(i)
	}
	return json.Marshal(values)
}

// NewComplexArrayFromParts builds a ComplexArray of len(re) values. A nil
// validity slice marks every corresponding part as present. A slot with both
// parts missing is null at the list level.
func NewComplexArrayFromParts(mem memory.Allocator, re, im []float64, reValid, imValid []bool) *ComplexArray {
	n := len(re)
	if len(im) != n || (reValid != nil && len(reValid) != n) || (imValid != nil && len(imValid) != n) {
		panic("extensions: mismatched complex part lengths")
	}

	child := array.NewFloat64Builder(mem)
	defer child.Release()
	child.Reserve(2 * n)

	valid := make([]bool, n)
	nulls := 0
	for i := 0; i < n; i++ {
		reOK := reValid == nil || reValid[i]
		imOK := imValid == nil || imValid[i]
		appendPart(child, re[i], reOK)
		appendPart(child, im[i], imOK)
		valid[i] = reOK || imOK
		if !valid[i] {
			nulls++
		}
	}

	var bitmap *memory.Buffer
	if nulls > 0 {
		bitmap = memory.NewResizableBuffer(mem)
		defer bitmap.Release()
		bitmap.Resize(int(bitutil.BytesForBits(int64(n))))
		for i, ok := range valid {
			bitutil.SetBitTo(bitmap.Bytes(), i, ok)
		}
	}

	values := child.NewFloat64Array()
	defer values.Release()

	dt := NewComplexType()
	data := array.NewData(dt.StorageType(), n, []*memory.Buffer{bitmap},
		[]arrow.ArrayData{values.Data()}, nulls, 0)
	defer data.Release()
	storage := array.NewFixedSizeListData(data)
	defer storage.Release()

	return array.NewExtensionArrayWithStorage(dt, storage).(*ComplexArray)
}

// NewComplexArray builds a ComplexArray from values. A nil valid slice marks
// every value present; NaN parts are read back as missing.
func NewComplexArray(mem memory.Allocator, values []complex128, valid []bool) *ComplexArray {
	re := make([]float64, len(values))
	im := make([]float64, len(values))
	for i, v := range values {
		re[i], im[i] = real(v), imag(v)
	}
	return NewComplexArrayFromParts(mem, re, im, valid, valid)
}

func appendPart(b *array.Float64Builder, v float64, ok bool) {
	if ok {
		b.UnsafeAppend(v)
	} else {
		b.UnsafeAppendBoolToBitmap(false)
	}
}

var (
	_ arrow.ExtensionType  = (*ComplexType)(nil)
	_ array.ExtensionArray = (*ComplexArray)(nil)
)
