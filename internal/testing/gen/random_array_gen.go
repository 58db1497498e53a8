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

// Package gen builds seeded random Arrow columns for the kernel tests.
package gen

import (
	"math"

	"github.com/Rahul-Devhub/data.table/extensions"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/bitutil"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomArrayGenerator constructs random columns. Two generators built with
// the same seed produce the same sequence of columns.
type RandomArrayGenerator struct {
	seed  uint64
	extra uint64
	mem   memory.Allocator
}

// NewRandomArrayGenerator constructs a new generator with the requested seed.
func NewRandomArrayGenerator(seed uint64, mem memory.Allocator) RandomArrayGenerator {
	return RandomArrayGenerator{seed: seed, mem: mem}
}

func (r *RandomArrayGenerator) source() rand.Source {
	r.extra++
	return rand.NewSource(r.seed + r.extra)
}

// GenerateBitmap generates a bitmap of n bits and stores it into buffer. prob
// is the probability that a given bit will be zero. The return value is the
// number of bits left unset. buffer must be zero initialized.
func (r *RandomArrayGenerator) GenerateBitmap(buffer []byte, n int64, prob float64) int64 {
	count := int64(0)

	// bernoulli distribution uses P to determine the probability of a 1
	dist := distuv.Bernoulli{P: 1 - prob, Src: r.source()}
	for i := 0; int64(i) < n; i++ {
		if dist.Rand() != 0 {
			bitutil.SetBit(buffer, i)
		} else {
			count++
		}
	}
	return count
}

// Validity returns n flags, each false with probability nullProb.
func (r *RandomArrayGenerator) Validity(n int64, nullProb float64) []bool {
	dist := distuv.Bernoulli{P: 1 - nullProb, Src: r.source()}
	out := make([]bool, n)
	for i := range out {
		out[i] = dist.Rand() != 0
	}
	return out
}

func (r *RandomArrayGenerator) validityBuffer(size int64, nullProb float64) (*memory.Buffer, int64) {
	buf := memory.NewResizableBuffer(r.mem)
	buf.Resize(int(bitutil.BytesForBits(size)))
	memory.Set(buf.Bytes(), 0)
	return buf, r.GenerateBitmap(buf.Bytes(), size, nullProb)
}

// Boolean returns size values, each true with probability prob and null with
// probability nullProb.
func (r *RandomArrayGenerator) Boolean(size int64, prob, nullProb float64) *array.Boolean {
	buffers := make([]*memory.Buffer, 2)
	var nullcount int64
	buffers[0], nullcount = r.validityBuffer(size, nullProb)
	defer buffers[0].Release()

	buffers[1] = memory.NewResizableBuffer(r.mem)
	buffers[1].Resize(int(bitutil.BytesForBits(size)))
	memory.Set(buffers[1].Bytes(), 0)
	defer buffers[1].Release()
	r.GenerateBitmap(buffers[1].Bytes(), size, 1-prob)

	data := array.NewData(arrow.FixedWidthTypes.Boolean, int(size), buffers, nil, int(nullcount), 0)
	defer data.Release()
	return array.NewBooleanData(data)
}

// Int32 returns size values drawn uniformly from [min, max], each null with
// probability nullProb.
func (r *RandomArrayGenerator) Int32(size int64, min, max int32, nullProb float64) *array.Int32 {
	validity, nullcount := r.validityBuffer(size, nullProb)
	defer validity.Release()

	values := memory.NewResizableBuffer(r.mem)
	values.Resize(int(size) * arrow.Int32SizeBytes)
	defer values.Release()

	dist := rand.New(r.source())
	out := arrow.Int32Traits.CastFromBytes(values.Bytes())
	for i := range out {
		out[i] = int32(dist.Int63n(int64(max)-int64(min)+1) + int64(min))
	}

	data := array.NewData(arrow.PrimitiveTypes.Int32, int(size), []*memory.Buffer{validity, values}, nil, int(nullcount), 0)
	defer data.Release()
	return array.NewInt32Data(data)
}

// Float64 returns size values drawn uniformly from [min, max). Each value is
// null with probability nullProb and, when present, NaN with probability
// nanProb.
func (r *RandomArrayGenerator) Float64(size int64, min, max, nullProb, nanProb float64) *array.Float64 {
	validity, nullcount := r.validityBuffer(size, nullProb)
	defer validity.Release()

	values := memory.NewResizableBuffer(r.mem)
	values.Resize(int(size) * arrow.Float64SizeBytes)
	defer values.Release()

	dist := distuv.Uniform{Min: min, Max: max, Src: r.source()}
	nan := distuv.Bernoulli{P: nanProb, Src: r.source()}
	out := arrow.Float64Traits.CastFromBytes(values.Bytes())
	for i := range out {
		out[i] = dist.Rand()
		if nanProb > 0 && nan.Rand() != 0 {
			out[i] = math.NaN()
		}
	}

	data := array.NewData(arrow.PrimitiveTypes.Float64, int(size), []*memory.Buffer{validity, values}, nil, int(nullcount), 0)
	defer data.Release()
	return array.NewFloat64Data(data)
}

// Complex returns size values with both parts drawn uniformly from
// [min, max). Each part is missing with probability nullProb, independently.
func (r *RandomArrayGenerator) Complex(size int64, min, max, nullProb float64) *extensions.ComplexArray {
	reDist := distuv.Uniform{Min: min, Max: max, Src: r.source()}
	imDist := distuv.Uniform{Min: min, Max: max, Src: r.source()}
	re, im := make([]float64, size), make([]float64, size)
	for i := range re {
		re[i], im[i] = reDist.Rand(), imDist.Rand()
	}
	return extensions.NewComplexArrayFromParts(r.mem, re, im,
		r.Validity(size, nullProb), r.Validity(size, nullProb))
}
