//go:build !(linux || darwin)

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
	"runtime"
)

// Mapped is not supported on this platform; use Slab instead.
type Mapped struct{}

func NewMapped() *Mapped {
	return &Mapped{}
}

func (m *Mapped) Acquire(n int) ([]byte, error) {
	return nil, fmt.Errorf("pagesource: mmap not supported on %s", runtime.GOOS)
}

func (m *Mapped) Close() error {
	return nil
}

// Contig is not supported on this platform; use Slab instead.
type Contig struct{}

func NewContig(maxBytes int) (*Contig, error) {
	return nil, fmt.Errorf("pagesource: mmap not supported on %s", runtime.GOOS)
}

func (c *Contig) Acquire(n int) ([]byte, error) {
	return nil, fmt.Errorf("pagesource: mmap not supported on %s", runtime.GOOS)
}

func (c *Contig) Brk() int {
	return 0
}

func (c *Contig) Close() error {
	return nil
}
