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
	"math"

	"github.com/Rahul-Devhub/data.table/extensions"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// complexAccumulator tracks real and imaginary missingness independently.
type complexAccumulator struct {
	re, im           []float64
	reValid, imValid []bool
}

func newComplexAccumulator(n int) *complexAccumulator {
	return &complexAccumulator{
		re: make([]float64, n), im: make([]float64, n),
		reValid: make([]bool, n), imValid: make([]bool, n),
	}
}

func (a *complexAccumulator) missingRe(i int) bool { return !a.reValid[i] || math.IsNaN(a.re[i]) }

func (a *complexAccumulator) missingIm(i int) bool { return !a.imValid[i] || math.IsNaN(a.im[i]) }

func (a *complexAccumulator) load(op Operand) {
	for i := range a.re {
		a.re[i], a.im[i], a.reValid[i], a.imValid[i] = op.Complex(i)
	}
}

func (a *complexAccumulator) sum(op Operand) {
	for i := range a.re {
		re, im, reOK, imOK := op.Complex(i)
		if op.Kind != KindComplex {
			if a.missingRe(i) && a.missingIm(i) {
				continue
			}
			if !reOK {
				a.reValid[i], a.imValid[i] = false, false
				continue
			}
			if !a.missingRe(i) {
				a.re[i] += re
			}
			continue
		}

		if !a.missingRe(i) {
			if reOK {
				a.re[i] += re
			} else {
				a.reValid[i] = false
			}
		}
		if !a.missingIm(i) {
			if imOK {
				a.im[i] += im
			} else {
				a.imValid[i] = false
			}
		}
	}
}

func (a *complexAccumulator) sumSkip(op Operand) {
	for i := range a.re {
		re, im, reOK, imOK := op.Complex(i)
		if op.Kind != KindComplex {
			if !reOK {
				continue
			}
			if a.missingRe(i) && a.missingIm(i) {
				a.re[i], a.im[i] = re, 0
				a.reValid[i], a.imValid[i] = true, true
				continue
			}
			a.addRe(i, re)
			continue
		}

		if reOK {
			a.addRe(i, re)
		}
		if imOK {
			if a.missingIm(i) {
				a.im[i], a.imValid[i] = im, true
			} else {
				a.im[i] += im
			}
		}
	}
}

func (a *complexAccumulator) addRe(i int, re float64) {
	if a.missingRe(i) {
		a.re[i], a.reValid[i] = re, true
	} else {
		a.re[i] += re
	}
}

func (a *complexAccumulator) finish(mem memory.Allocator) arrow.Array {
	return extensions.NewComplexArrayFromParts(mem, a.re, a.im, a.reValid, a.imValid)
}
