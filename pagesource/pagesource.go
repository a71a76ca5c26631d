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

// Package pagesource provides the memory back-ends an allocator draws fresh
// pages from: a portable slab over a pre-allocated arena, an anonymous-mapping
// source, and a contiguous break-style source.
package pagesource

import "errors"

// Source supplies fresh writable memory.
//
// Acquire returns at least n contiguous bytes owned by the caller until the
// source is closed. Implementations may return more than requested (for
// example after rounding up to a whole page); callers should use len() of the
// result rather than n.
type Source interface {
	Acquire(n int) ([]byte, error)
}

// ErrNoMemory is returned by a Source that cannot supply more bytes.
var ErrNoMemory = errors.New("pagesource: out of memory")

// alignUp rounds n up to the next multiple of align. align must be a power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
