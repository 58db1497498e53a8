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

import "github.com/Rahul-Devhub/data.table/compute/internal/kernels"

var (
	// ErrIntegerOverflow reports an integer sum outside the int32 range. It is
	// returned as an error when nulls are skipped and as a warning otherwise.
	ErrIntegerOverflow = kernels.ErrIntegerOverflow
	// ErrJoinTooLarge reports a range expansion beyond the int32 range or the
	// requested clamp.
	ErrJoinTooLarge = kernels.ErrJoinTooLarge
	// ErrInternal reports a broken invariant inside the kernels.
	ErrInternal = kernels.ErrInternal
)
