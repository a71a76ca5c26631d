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

package pagesource

import (
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// Slab hands out consecutive pieces of a single pre-allocated arena.
// It never returns memory to the runtime; the arena lives as long as any
// piece acquired from it. The arena bytes are not zeroed.
type Slab struct {
	arena []byte
	off   int
}

// NewSlab creates a slab source with the given arena capacity in bytes.
// Panics if capacity is not positive.
func NewSlab(capacity int) *Slab {
	if capacity <= 0 {
		panic(fmt.Sprintf("pagesource: invalid slab capacity %d", capacity))
	}
	return &Slab{arena: dirtmake.Bytes(capacity, capacity)}
}

// NewSlabArena creates a slab source over caller-provided memory.
func NewSlabArena(arena []byte) *Slab {
	return &Slab{arena: arena}
}

// Acquire returns the next n bytes of the arena, or ErrNoMemory once the
// arena is exhausted.
func (s *Slab) Acquire(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pagesource: invalid acquire size %d", n)
	}
	if s.off+n > len(s.arena) {
		return nil, ErrNoMemory
	}
	b := s.arena[s.off : s.off+n : s.off+n]
	s.off += n
	return b, nil
}

// Remaining reports how many bytes the slab can still supply.
func (s *Slab) Remaining() int {
	return len(s.arena) - s.off
}
