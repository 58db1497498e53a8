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

// Mask reports whether row i takes part in an expansion. A nil Mask keeps
// every row.
type Mask func(i int) bool

func (m Mask) keep(i int) bool { return m == nil || m(i) }

// RangeTotal returns the summed length of the kept runs and how many rows were
// kept. ok is false when the total does not fit in an int32.
func RangeTotal(lens []int32, mask Mask) (total int32, kept int, ok bool) {
	for i, l := range lens {
		if !mask.keep(i) {
			continue
		}
		if total, ok = CheckedAddInt32(total, l); !ok {
			return 0, 0, false
		}
		kept++
	}
	return total, kept, true
}

// ExpandRanges writes the run starts[i], starts[i]+1, ..., starts[i]+lens[i]-1
// of every kept row into out, which must hold exactly the RangeTotal. When
// offsets and sizes are non-nil they receive, per kept row, the 1-based
// position of its run in out and the run length.
func ExpandRanges(out, starts, lens []int32, mask Mask, offsets, sizes []int32) {
	var (
		k   int
		grp int
	)
	for i, l := range lens {
		if !mask.keep(i) {
			continue
		}
		if offsets != nil {
			offsets[grp] = int32(k) + 1
			sizes[grp] = l
			grp++
		}
		v := starts[i]
		for j := int32(0); j < l; j++ {
			out[k] = v
			k++
			v++
		}
	}
}
