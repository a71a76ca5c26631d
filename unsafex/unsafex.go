/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package unsafex

import "unsafe"

// sliceHeader mirrors the runtime representation of a slice.
// Kept local instead of unsafe.SliceData so the module builds with go1.18.
type sliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

// DataPtr returns the data pointer of b without touching its elements.
// Unlike &b[0] it does not panic on a zero-length slice: a nil slice yields
// nil, an empty slice with backing memory yields the start of that memory.
func DataPtr(b []byte) unsafe.Pointer {
	return (*sliceHeader)(unsafe.Pointer(&b)).Data
}

// Overlap reports whether the byte ranges of a and b share any memory.
// Zero-length slices overlap nothing.
func Overlap(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aStart := uintptr(DataPtr(a))
	aEnd := aStart + uintptr(len(a))
	bStart := uintptr(DataPtr(b))
	bEnd := bStart + uintptr(len(b))
	return aEnd > bStart && bEnd > aStart
}
