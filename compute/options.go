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
	"math"

	"github.com/apache/arrow/go/v17/arrow/memory"
)

type ctxAllocKey struct{}

// WithAllocator returns a new context with the provided allocator embedded
// into the context. Kernel results are allocated with it.
func WithAllocator(ctx context.Context, mem memory.Allocator) context.Context {
	return context.WithValue(ctx, ctxAllocKey{}, mem)
}

// GetAllocator retrieves the allocator from the context, or returns
// memory.DefaultAllocator if there was no allocator in the provided context.
func GetAllocator(ctx context.Context) memory.Allocator {
	mem, ok := ctx.Value(ctxAllocKey{}).(memory.Allocator)
	if !ok {
		return memory.DefaultAllocator
	}
	return mem
}

// ReduceOptions configure Sum and Product.
type ReduceOptions struct {
	// SkipNulls ignores missing operand values instead of propagating them.
	// A row whose operands are all missing is still missing.
	SkipNulls bool
}

// ExpandOptions configure ExpandRanges. The zero value applies no clamp.
type ExpandOptions struct {
	// Clamp is the largest total number of rows the expansion may produce,
	// only honored when Clamped is set. It must not be negative.
	Clamp   int64
	Clamped bool
}

// NoClamp leaves the expansion bounded only by the int32 range.
func NoClamp() ExpandOptions { return ExpandOptions{} }

// ClampTo bounds the expansion at limit rows.
func ClampTo(limit int64) ExpandOptions { return ExpandOptions{Clamp: limit, Clamped: true} }

// JoinClamp returns the bound a join applies to its matched rows: the row
// counts of both sides combined, or no bound at all when the caller allows a
// cartesian result.
func JoinClamp(nrowX, nrowI int64, allowCartesian bool) ExpandOptions {
	if allowCartesian {
		return NoClamp()
	}
	limit := nrowX + nrowI
	if limit < nrowX {
		limit = math.MaxInt64
	}
	return ClampTo(limit)
}
