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

// Package compute implements the row-wise kernels a columnar join and
// group-by evaluator calls into.
//
// Sum and Product reduce several columns elementwise into one, recycling
// length-1 columns (Sum only) and either propagating or skipping missing
// values. ExpandRanges turns the (first match, match count) pairs produced by a
// binary-search join into the explicit list of matched row positions, and
// ExpandRangesHaving does the same for a filtered subset of groups while
// reporting where each kept group landed in the output.
//
// All functions are synchronous and pure: inputs are never modified or
// retained, and every returned array is newly allocated from the allocator
// carried by the context (see WithAllocator) and must be released by the
// caller.
package compute
